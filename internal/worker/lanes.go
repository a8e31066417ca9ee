package worker

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"weddingplan/internal/models"
	"weddingplan/pkg/logger"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("lanes closed")

type job struct {
	ctx context.Context
	cmd models.MirrorCommand
}

// Lanes applies mirror commands in process when no broker is configured.
// Commands for the same record always go to the same lane and run in
// publish order; different records proceed in parallel.
type Lanes struct {
	applier Applier
	lanes   []chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewLanes starts n lane goroutines, each with a buffer of size buffer.
func NewLanes(n, buffer int, applier Applier) *Lanes {
	if n <= 0 {
		n = 1
	}
	l := &Lanes{applier: applier, lanes: make([]chan job, n)}
	for i := range l.lanes {
		l.lanes[i] = make(chan job, buffer)
		l.wg.Add(1)
		go l.run(l.lanes[i])
	}
	return l
}

func (l *Lanes) run(in <-chan job) {
	defer l.wg.Done()
	for j := range in {
		if err := l.applier.Apply(j.ctx, j.cmd); err != nil {
			logger.Warn(j.ctx, "Mirror apply failed", "error", err, "action", j.cmd.Action, "key", j.cmd.Key())
		}
	}
}

// Publish queues cmd on its record's lane. The command outlives the
// caller's cancellation but keeps its logger.
func (l *Lanes) Publish(ctx context.Context, cmd models.MirrorCommand) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	lane := l.lanes[laneFor(cmd.UserID+"/"+cmd.Key(), len(l.lanes))]
	select {
	case lane <- job{ctx: context.WithoutCancel(ctx), cmd: cmd}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting commands and waits for queued ones to be applied.
func (l *Lanes) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	for _, ch := range l.lanes {
		close(ch)
	}
	l.mu.Unlock()
	l.wg.Wait()
}

func laneFor(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}
