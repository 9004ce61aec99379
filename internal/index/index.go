// Package index groups normalized records by entity identifier.
package index

import (
	"iter"

	"github.com/raphaelgruber/rastreador/internal/models"
)

// Index maps normalized identifiers to entities. It is built once and only
// read afterwards, so it is safe for concurrent readers.
type Index struct {
	entities map[string]*models.Entity
	order    []string
}

// Stats counts entities by which datasets they appear in.
type Stats struct {
	Entities       int `json:"entities"`
	Matched        int `json:"matched"`
	DonorOnly      int `json:"donor_only"`
	ContractorOnly int `json:"contractor_only"`
	DonationEvents int `json:"donation_events"`
	ContractEvents int `json:"contract_events"`
}

// Build indexes donations then contracts in a single pass over each sequence.
// Entity ordinals follow first appearance, donations first. Names follow
// models.PreferName, so they match the aggregator's entity summaries.
func Build(donations iter.Seq[models.DonationRecord], contracts iter.Seq[models.ContractRecord]) *Index {
	idx := &Index{entities: make(map[string]*models.Entity)}
	for d := range donations {
		e := idx.entry(d.DonorID)
		e.Donations = append(e.Donations, d)
		e.Name = models.PreferName(e.Name, d.DonorName)
	}
	for c := range contracts {
		e := idx.entry(c.ContractorID)
		e.Contracts = append(e.Contracts, c)
		e.Name = models.PreferName(e.Name, c.ContractorName)
	}
	return idx
}

func (idx *Index) entry(id string) *models.Entity {
	e, ok := idx.entities[id]
	if !ok {
		e = &models.Entity{ID: id, Ordinal: len(idx.order)}
		idx.entities[id] = e
		idx.order = append(idx.order, id)
	}
	return e
}

// Get returns the entity for a normalized identifier.
func (idx *Index) Get(id string) (*models.Entity, bool) {
	e, ok := idx.entities[id]
	return e, ok
}

// Lookup normalizes a raw identifier before looking it up.
func (idx *Index) Lookup(raw string) (*models.Entity, bool) {
	return idx.Get(models.NormalizeID(raw))
}

// Len is the number of distinct entities.
func (idx *Index) Len() int { return len(idx.order) }

// IDs returns identifiers in first-seen order.
func (idx *Index) IDs() []string {
	return append([]string(nil), idx.order...)
}

// Entities yields entities in first-seen order.
func (idx *Index) Entities() iter.Seq[*models.Entity] {
	return func(yield func(*models.Entity) bool) {
		for _, id := range idx.order {
			if !yield(idx.entities[id]) {
				return
			}
		}
	}
}

// Correlatable yields only entities with both donations and contracts.
func (idx *Index) Correlatable() iter.Seq[*models.Entity] {
	return func(yield func(*models.Entity) bool) {
		for e := range idx.Entities() {
			if e.Correlatable() && !yield(e) {
				return
			}
		}
	}
}

// Stats summarizes the index.
func (idx *Index) Stats() Stats {
	s := Stats{Entities: len(idx.order)}
	for e := range idx.Entities() {
		s.DonationEvents += len(e.Donations)
		s.ContractEvents += len(e.Contracts)
		switch {
		case e.Correlatable():
			s.Matched++
		case e.HasDonations():
			s.DonorOnly++
		default:
			s.ContractorOnly++
		}
	}
	return s
}
