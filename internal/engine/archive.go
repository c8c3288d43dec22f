package engine

import (
	"github.com/google/uuid"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/store"
)

// Archive creates a SummaryNode standing in for paths and marks each of
// them archived: they keep their content and history but are excluded from
// default Search results until a query sets IncludeArchived (spec.md §3,
// §4.7; the createSummaryNode tool per spec.md §6).
func (e *Engine) Archive(paths []string, summaryText string, originalPathIDs []uint32, generatingModel string) (store.SummaryNode, error) {
	if summaryText == "" {
		return store.SummaryNode{}, apperr.New(apperr.InvalidArgument, "summary_content must not be empty")
	}
	archivedPaths := make([]store.Path, 0, len(paths))
	for _, p := range paths {
		if _, ok := e.store.IDOf(store.Path(p)); !ok {
			return store.SummaryNode{}, apperr.Newf(apperr.NotFound, "path %q not found", p)
		}
		archivedPaths = append(archivedPaths, store.Path(p))
	}
	return e.store.CreateSummaryNode(summaryText, originalPathIDs, generatingModel, archivedPaths), nil
}

// Compact re-applies the HNSW heuristic selector to the given nodes'
// over-connected neighbor lists and returns a generated job id for the external caller to
// report status against (spec.md's triggerCompaction tool, §6). The core
// has no background job runner, so the work happens synchronously before
// this returns.
func (e *Engine) Compact(paths []string) (jobID string, err error) {
	ids := make([]uint32, 0, len(paths))
	for _, p := range paths {
		id, ok := e.store.IDOf(store.Path(p))
		if !ok {
			return "", apperr.Newf(apperr.NotFound, "path %q not found", p)
		}
		ids = append(ids, id)
	}
	e.vector.Compact(ids)
	return uuid.NewString(), nil
}
