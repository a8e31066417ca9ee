package worker

import (
	"context"
	"sync"
	"time"

	"weddingplan/internal/models"
)

// DefaultPendingTTL bounds how long a published command counts as unapplied
// when its completion is never observed here, e.g. when another instance's
// consumer owns the partition.
const DefaultPendingTTL = 30 * time.Second

// Pending tracks mirror commands published from this process until they
// are applied. A remote read that may predate one of them must not replace
// the local record it wrote. The nil *Pending tracks nothing.
type Pending struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	seq     uint64
	entries map[string]*pendingEntry
}

type pendingEntry struct {
	inFlight int
	since    time.Time
	doneSeq  uint64
	doneAt   time.Time
}

func NewPending(ttl time.Duration) *Pending {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &Pending{ttl: ttl, now: time.Now, entries: map[string]*pendingEntry{}}
}

// RecordKey names one record written from one device store.
func RecordKey(userID, device, record string) string {
	return userID + "/" + device + "/" + record
}

func commandKey(cmd models.MirrorCommand) string {
	return RecordKey(cmd.UserID, cmd.Device, cmd.Key())
}

// Begin marks cmd as published and not yet applied.
func (p *Pending) Begin(cmd models.MirrorCommand) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.prune(now)
	key := commandKey(cmd)
	e := p.entries[key]
	if e == nil {
		e = &pendingEntry{}
		p.entries[key] = e
	}
	e.inFlight++
	e.since = now
}

// Done marks cmd as applied, or given up on. Commands this process did not
// publish are ignored.
func (p *Pending) Done(cmd models.MirrorCommand) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e := p.entries[commandKey(cmd)]
	if e == nil {
		return
	}
	if e.inFlight > 0 {
		e.inFlight--
	}
	p.seq++
	e.doneSeq = p.seq
	e.doneAt = p.now()
}

// Mark returns a token to take just before a remote read. The read sees
// every command whose Done happened before the mark.
func (p *Pending) Mark() uint64 {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Dirty reports whether a remote read taken at mark may be older than the
// local copy of the record.
func (p *Pending) Dirty(key string, mark uint64) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e := p.entries[key]
	if e == nil {
		return false
	}
	if e.inFlight > 0 && p.now().Sub(e.since) < p.ttl {
		return true
	}
	return e.doneSeq > mark
}

// prune drops settled entries and ones whose completion never arrived.
// Callers hold mu.
func (p *Pending) prune(now time.Time) {
	for key, e := range p.entries {
		switch {
		case e.inFlight == 0 && now.Sub(e.doneAt) > p.ttl:
			delete(p.entries, key)
		case e.inFlight > 0 && now.Sub(e.since) > p.ttl:
			delete(p.entries, key)
		}
	}
}

// Track wraps a so every applied command is reported to p.
func (p *Pending) Track(a Applier) Applier {
	if p == nil {
		return a
	}
	return trackedApplier{applier: a, pending: p}
}

type trackedApplier struct {
	applier Applier
	pending *Pending
}

func (t trackedApplier) Apply(ctx context.Context, cmd models.MirrorCommand) error {
	defer t.pending.Done(cmd)
	return t.applier.Apply(ctx, cmd)
}
