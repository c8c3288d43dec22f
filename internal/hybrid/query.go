// Package hybrid implements the blended query planner: it runs the
// lexical, semantic, and graph indexes, normalizes each component's raw
// scores, and linearly combines them (spec.md §4.6).
package hybrid

import "github.com/agrama-dev/agrama/internal/store"

// epsilon is the hybrid weight-sum tolerance (spec.md §4.6).
const epsilon = 0.01

// Query is the hybrid search request shape.
type Query struct {
	Text          string
	Embedding     []float32
	StartingNodes []store.Path
	MaxResults    uint32
	Alpha         float32 // lexical weight
	Beta          float32 // semantic weight
	Gamma         float32 // graph weight

	// IncludeArchived includes paths the engine has marked archived
	// (spec.md §4.7 archive operation). The planner itself is archival-
	// agnostic; the engine façade applies this filter after Search
	// returns, reading archival status from the temporal store.
	IncludeArchived bool
}

// DefaultQuery returns the spec's documented default weights and result
// count, leaving Text/Embedding/StartingNodes for the caller to fill in.
func DefaultQuery() Query {
	return Query{MaxResults: 20, Alpha: 0.4, Beta: 0.4, Gamma: 0.2}
}

func (q Query) weightSum() float32 { return q.Alpha + q.Beta + q.Gamma }
