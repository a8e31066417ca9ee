// Package mirror replicates a device's local store to the remote Postgres
// store for a signed-in user. Reads prefer the remote copy; writes land
// locally first and are pushed afterwards without blocking the caller.
// Until a pushed write is applied, reads keep the local version of that
// record.
package mirror

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"weddingplan/internal/models"
	"weddingplan/internal/store"
	"weddingplan/internal/worker"
)

// ErrUnavailable means there is no remote to talk to: either none is
// configured or the session is anonymous.
var ErrUnavailable = errors.New("remote mirror unavailable")

// Remote is the replica the mirror reads from and migrates into.
type Remote interface {
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	UpsertTask(ctx context.Context, userID string, t models.Task) error
	ListPrenupItems(ctx context.Context, userID string) ([]models.PrenupItem, error)
	UpsertPrenupItem(ctx context.Context, userID string, it models.PrenupItem) error
	GetSettings(ctx context.Context, userID string) (models.Settings, error)
	SaveSettings(ctx context.Context, userID string, s models.Settings) error
}

// Publisher delivers remote writes. Commands for one record must be
// applied in the order they were published.
type Publisher interface {
	Publish(ctx context.Context, cmd models.MirrorCommand) error
}

type Mirror struct {
	remote    Remote
	publisher Publisher
	pending   *worker.Pending
	now       func() time.Time
	reads     singleflight.Group
}

// New returns a Mirror. A nil remote disables replication. A nil publisher
// applies writes synchronously.
func New(remote Remote, publisher Publisher) *Mirror {
	m := &Mirror{remote: remote, publisher: publisher, now: time.Now}
	if remote != nil && publisher == nil {
		m.publisher = directPublisher{worker.ReplicaApplier{Replica: remote}}
	}
	return m
}

// WithClock overrides the timestamp source.
func (m *Mirror) WithClock(now func() time.Time) *Mirror {
	m.now = now
	return m
}

// WithPending makes reads keep local records whose writes p still tracks.
// The applier behind an asynchronous publisher must be wrapped with
// p.Track so applied writes are released.
func (m *Mirror) WithPending(p *worker.Pending) *Mirror {
	m.pending = p
	return m
}

func (m *Mirror) Configured() bool { return m != nil && m.remote != nil }

// Session binds the mirror to one device store and one identity. An empty
// userID is an anonymous, local-only session.
func (m *Mirror) Session(local *store.Store, userID string) *Session {
	return &Session{m: m, local: local, userID: userID}
}

type directPublisher struct {
	applier worker.Applier
}

func (p directPublisher) Publish(ctx context.Context, cmd models.MirrorCommand) error {
	return p.applier.Apply(ctx, cmd)
}
