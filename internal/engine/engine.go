// Package engine exposes the stable, synchronous façade the external tool
// server calls (spec.md §4.7): put, get, history, delete, link, unlink,
// embed, search, shortest_path, impact, update_entity_weight, archive, and
// the triggerCompaction-backed Compact. The façade owns the temporal
// store and every index; indexes hold only node ids into the store, never
// a reference back (spec.md §9).
package engine

import (
	"sync"

	"github.com/agrama-dev/agrama/internal/apperr"
	"github.com/agrama-dev/agrama/internal/config"
	"github.com/agrama-dev/agrama/internal/graphidx"
	"github.com/agrama-dev/agrama/internal/hybrid"
	"github.com/agrama-dev/agrama/internal/lexical"
	"github.com/agrama-dev/agrama/internal/logging"
	"github.com/agrama-dev/agrama/internal/pool"
	"github.com/agrama-dev/agrama/internal/snapshot"
	"github.com/agrama-dev/agrama/internal/store"
	"github.com/agrama-dev/agrama/internal/vector"
)

// Engine is one engine instance. Multiple instances may coexist in a
// process (spec.md §9 "Global mutable state" — the pool subsystem and
// every index are engine-scoped, not process-global), which is why tests
// construct a fresh Engine per case rather than sharing package state.
type Engine struct {
	cfg   config.EngineConfig
	clock Clock
	debug bool

	store   *store.Store
	lexical *lexical.Index
	vector  *vector.Index
	graph   *graphidx.Index
	planner *hybrid.Planner

	pools       *pool.Pools
	arenasSmall *pool.ArenaPool
	arenasMed   *pool.ArenaPool
	arenasLarge *pool.ArenaPool
	vblocks     *pool.VectorBlockPool

	snap *snapshot.Mirror

	mu          sync.RWMutex
	nodeWeights map[store.Path]float32
}

// New constructs an engine from cfg, wiring the temporal store's write
// events to the lexical, vector, and graph indexes in that fixed order
// (spec.md §4.2).
func New(cfg config.EngineConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.InvalidArgument, "invalid engine configuration", err)
	}

	e := &Engine{
		cfg:         cfg,
		clock:       SystemClock{},
		store:       store.New(),
		lexical:     lexical.New(),
		vector:      vector.New(cfg.VectorDim, vector.Params(cfg.HNSW)),
		graph:       graphidx.New(cfg.Graph.DijkstraFallbackMaxNodes),
		pools:       pool.New(cfg.Pool.MaxTotalMB, false),
		nodeWeights: make(map[store.Path]float32),
	}
	for _, o := range opts {
		o(e)
	}
	if e.debug {
		e.pools = pool.New(cfg.Pool.MaxTotalMB, true)
	}
	e.arenasSmall = pool.NewArenaPool(e.pools, cfg.Pool.SmallPage)
	e.arenasMed = pool.NewArenaPool(e.pools, cfg.Pool.MediumPage)
	e.arenasLarge = pool.NewArenaPool(e.pools, cfg.Pool.LargePage)
	e.vblocks = pool.NewVectorBlockPool(e.pools, cfg.VectorDim)
	e.planner = hybrid.New(e.store, e.lexical, e.vector, e.graph, cfg.Hybrid.Workers)

	e.store.Subscribe(lexical.Subscriber{Index: e.lexical})
	e.store.Subscribe(vector.Subscriber{Index: e.vector})
	e.store.Subscribe(graphidx.Subscriber{Index: e.graph})

	if cfg.Snapshot.Enabled {
		m, err := snapshot.New(cfg.Snapshot)
		if err != nil {
			logging.Log.WithError(err).Warn("snapshot mirror disabled: construction failed")
		} else {
			e.snap = m
		}
	}

	return e, nil
}

// arenaFor picks the smallest page-class arena pool that can hold n bytes
// (spec.md §4.1's small/medium/large page classes), falling back to the
// large pool for anything bigger still; Store.Put separately rejects
// content past MaxContentBytes.
func (e *Engine) arenaFor(n int) *pool.ArenaPool {
	switch {
	case n <= e.cfg.Pool.SmallPage:
		return e.arenasSmall
	case n <= e.cfg.Pool.MediumPage:
		return e.arenasMed
	default:
		return e.arenasLarge
	}
}

// withArena acquires a scoped arena sized for n bytes for the duration of
// fn and guarantees its release on every exit path, including a panic
// unwinding through fn (spec.md §9 "Scoped cleanup").
func (e *Engine) withArena(n int, fn func(a *pool.Arena) error) error {
	ap := e.arenaFor(n)
	a, err := ap.Acquire()
	if err != nil {
		return err
	}
	defer ap.Release(a)
	return fn(a)
}

// Put validates and stores content at path, returning the recorded Change.
func (e *Engine) Put(path string, content []byte) (store.Change, error) {
	var change store.Change
	err := e.withArena(len(content), func(a *pool.Arena) error {
		scratch, aerr := a.Alloc(len(content))
		if aerr != nil {
			return aerr
		}
		copy(scratch, content)

		c, perr := e.store.Put(e.clock.Now().UnixNano(), store.Path(path), scratch)
		if perr != nil {
			return perr
		}
		change = c
		return nil
	})
	if err != nil {
		return store.Change{}, err
	}
	if e.snap != nil {
		e.snap.OnPut(change)
	}
	return change, nil
}

// Get returns path's current content.
func (e *Engine) Get(path string) ([]byte, error) {
	return e.store.Get(store.Path(path))
}

// History returns up to limit Changes for path in reverse chronological
// order.
func (e *Engine) History(path string, limit int) ([]store.Change, error) {
	return e.store.History(store.Path(path), limit)
}

// Delete removes path's current content and history.
func (e *Engine) Delete(path string) error {
	if err := e.store.Delete(store.Path(path)); err != nil {
		return err
	}
	e.mu.Lock()
	delete(e.nodeWeights, store.Path(path))
	e.mu.Unlock()
	if e.snap != nil {
		e.snap.OnDelete(store.Path(path))
	}
	return nil
}

// SnapshotAsOf returns the content whose timestamp is the greatest ≤ ts.
func (e *Engine) SnapshotAsOf(path string, ts int64) ([]byte, bool, error) {
	return e.store.SnapshotAsOf(store.Path(path), ts)
}
