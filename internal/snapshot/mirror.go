// Package snapshot implements the optional Redis write-behind mirror
// (SPEC_FULL.md §3). It never gates the in-memory engine's correctness or
// latency: every write is queued and flushed by a background goroutine, and
// a Redis outage only stops the mirror from catching up, never blocks a
// caller of Engine.Put/Delete (grounded on the skills package's
// enabled-by-config, nil-safe Redis cache pattern).
package snapshot

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrama-dev/agrama/internal/config"
	"github.com/agrama-dev/agrama/internal/logging"
	"github.com/agrama-dev/agrama/internal/store"
)

// queueDepth bounds the number of pending mirror writes buffered in memory;
// once it is reached, newly enqueued events are dropped. The mirror is
// best-effort, not a durability guarantee.
const queueDepth = 4096

type op struct {
	isDelete bool
	path     store.Path
	ts       int64
	content  []byte
}

// Mirror asynchronously replicates Put/Delete events to Redis, keyed by
// cfg.KeyPrefix plus path, so an operator can rehydrate a fresh engine's
// current-content view from Redis after a crash without replaying the
// entire temporal store.
type Mirror struct {
	client redis.UniversalClient
	prefix string
	queue  chan op
	done   chan struct{}
}

// New connects to Redis per cfg and starts the background flush loop.
// Returns an error if Redis is unreachable; callers are expected to log and
// continue without a mirror rather than fail engine construction.
func New(cfg config.SnapshotConfig) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "agrama:"
	}

	m := &Mirror{
		client: client,
		prefix: prefix,
		queue:  make(chan op, queueDepth),
		done:   make(chan struct{}),
	}
	go m.run()
	return m, nil
}

func (m *Mirror) key(path store.Path) string {
	return m.prefix + string(path)
}

// OnPut enqueues a mirrored write. Non-blocking: if the queue is full, the
// event is dropped and logged rather than stalling the caller.
func (m *Mirror) OnPut(c store.Change) {
	m.enqueue(op{path: c.Path, ts: c.Timestamp, content: c.Content})
}

// OnDelete enqueues a mirrored tombstone.
func (m *Mirror) OnDelete(path store.Path) {
	m.enqueue(op{isDelete: true, path: path})
}

func (m *Mirror) enqueue(o op) {
	select {
	case m.queue <- o:
	default:
		logging.Log.WithField("path", string(o.path)).Warn("snapshot mirror queue full, dropping event")
	}
}

func (m *Mirror) run() {
	defer close(m.done)
	ctx := context.Background()
	for o := range m.queue {
		var err error
		if o.isDelete {
			err = m.client.Del(ctx, m.key(o.path)).Err()
		} else {
			err = m.client.Set(ctx, m.key(o.path), o.content, 0).Err()
		}
		if err != nil {
			logging.Log.WithError(err).WithField("path", string(o.path)).Warn("snapshot mirror write failed")
		}
	}
}

// Close stops accepting new events and waits for the queue to drain.
func (m *Mirror) Close() error {
	close(m.queue)
	<-m.done
	return m.client.Close()
}
