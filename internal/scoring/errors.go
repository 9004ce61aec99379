package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/rastreador/internal/models"
)

// ErrCapacityExceeded marks entities whose fan-out was truncated.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// CapacityExceededError lists the entities that were only partially scored.
// It is a warning: the run continues with the truncated pairs.
type CapacityExceededError struct {
	Truncations []models.Truncation
}

func (e *CapacityExceededError) Error() string {
	ids := make([]string, 0, len(e.Truncations))
	for _, t := range e.Truncations {
		ids = append(ids, t.EntityID)
	}
	return fmt.Sprintf("%s: %d entities truncated (%s)", ErrCapacityExceeded, len(ids), strings.Join(ids, ", "))
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }
