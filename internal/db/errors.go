package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

// Sentinel errors for report storage.
var (
	// ErrTransactionConflict indicates concurrent writers touched the same run.
	// Callers can retry the publish.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrRunNotFound indicates the requested run was never published.
	ErrRunNotFound = errors.New("run not found")
)

// wrapQueryError maps known SurrealDB query errors onto sentinels.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}
	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) && strings.Contains(queryErr.Message, "Transaction conflict") {
		return fmt.Errorf("%w: %s", ErrTransactionConflict, queryErr.Message)
	}
	return err
}
