package graph

import (
	"time"

	"kinship-graph/backend/internal/entity"
	"kinship-graph/backend/internal/store"
)

// ============================================================================
// Graph Types
// ============================================================================

// DefaultCertainty is used when an edge is created without one
const DefaultCertainty = 100

// Edge is one direction of a relationship. Every edge created by the
// repository has exactly one sibling with the same EdgeID, swapped endpoints,
// the inverse relation type and the opposite IsPrimary flag.
type Edge struct {
	Owner        string      `json:"owner"`
	EdgeID       string      `json:"edge_id"`
	SourceID     string      `json:"source_id"`
	SourceKind   entity.Kind `json:"source_kind"`
	TargetID     string      `json:"target_id"`
	TargetKind   entity.Kind `json:"target_kind"`
	RelationType string      `json:"relation_type"`
	Language     string      `json:"language"`
	StartDate    *time.Time  `json:"start_date,omitempty"`
	EndDate      *time.Time  `json:"end_date,omitempty"`
	Certainty    int         `json:"certainty"`
	Source       string      `json:"source,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	IsPrimary    bool        `json:"is_primary"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SourceRef returns the source endpoint as a typed reference
func (e Edge) SourceRef() entity.Ref {
	return entity.New(e.SourceKind, e.SourceID)
}

// TargetRef returns the target endpoint as a typed reference
func (e Edge) TargetRef() entity.Ref {
	return entity.New(e.TargetKind, e.TargetID)
}

// rowKey is the clustering key of the edge in every table. The direction
// suffix keeps both rows of a self-referencing relationship apart.
func (e Edge) rowKey() string {
	if e.IsPrimary {
		return store.Key(e.EdgeID, "P")
	}
	return store.Key(e.EdgeID, "I")
}

// Meta carries the optional descriptive fields of a relationship
type Meta struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Certainty *int       `json:"certainty,omitempty"` // nil means DefaultCertainty
	Source    string     `json:"source,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

func (m Meta) certainty() int {
	if m.Certainty == nil {
		return DefaultCertainty
	}
	return *m.Certainty
}

func (m Meta) apply(e *Edge) {
	e.StartDate = m.StartDate
	e.EndDate = m.EndDate
	e.Certainty = m.certainty()
	e.Source = m.Source
	e.Notes = m.Notes
}
