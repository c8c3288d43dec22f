package engine

import (
	"context"
	"time"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/hybrid"
	"github.com/agrama-dev/agrama/internal/store"
)

// Embed inserts or replaces path's semantic embedding. A path's embedding
// is set independently of its content via Put, matching the temporal
// store's "embeddings arrive through a separate channel" design (spec.md
// §9). The vector is staged through a pooled, 32-byte-aligned vector block
// before insertion, matching the pool subsystem's role feeding the HNSW
// index (spec.md §4.1).
func (e *Engine) Embed(path string, vec []float32) error {
	id, ok := e.store.IDOf(store.Path(path))
	if !ok {
		return apperr.Newf(apperr.NotFound, "path %q not found", path)
	}
	if len(vec) != e.cfg.VectorDim {
		return apperr.DimensionMismatch(e.cfg.VectorDim, len(vec))
	}

	vb, err := e.vblocks.Acquire()
	if err != nil {
		return err
	}
	defer e.vblocks.Release(vb)
	copy(vb.Vec, vec)

	return e.vector.Insert(id, vb.Vec)
}

// Search runs the hybrid query planner and filters out archived paths
// unless the query opts back in (spec.md §4.7). deadline is zero for no
// deadline.
func (e *Engine) Search(ctx context.Context, q hybrid.Query, deadline time.Time) ([]hybrid.Result, error) {
	results, err := e.planner.Search(ctx, q, deadline)
	if err != nil {
		return nil, err
	}
	if q.IncludeArchived {
		return results, nil
	}

	filtered := results[:0:0]
	for _, r := range results {
		if !e.store.IsArchived(r.Path) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
