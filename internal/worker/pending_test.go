package worker

import (
	"context"
	"testing"
	"time"

	"weddingplan/internal/models"
)

func deviceCmd(id string) models.MirrorCommand {
	cmd := taskCmd(id, "")
	cmd.Device = "phone"
	return cmd
}

func TestPendingDirtyUntilApplied(t *testing.T) {
	p := NewPending(time.Minute)
	key := RecordKey("u1", "phone", models.TaskKey("a"))

	before := p.Mark()
	p.Begin(deviceCmd("a"))
	if !p.Dirty(key, p.Mark()) {
		t.Fatal("published command should be dirty")
	}
	if p.Dirty(RecordKey("u1", "tablet", models.TaskKey("a")), before) {
		t.Error("another device's copy is not affected")
	}

	p.Done(deviceCmd("a"))
	if !p.Dirty(key, before) {
		t.Error("a read marked before the apply may be stale")
	}
	if p.Dirty(key, p.Mark()) {
		t.Error("a read marked after the apply is current")
	}
}

func TestPendingCountsOverlappingWrites(t *testing.T) {
	p := NewPending(time.Minute)
	key := RecordKey("u1", "phone", models.TaskKey("a"))
	p.Begin(deviceCmd("a"))
	p.Begin(deviceCmd("a"))
	p.Done(deviceCmd("a"))
	if !p.Dirty(key, p.Mark()) {
		t.Error("second write still in flight")
	}
	p.Done(deviceCmd("a"))
	p.Done(deviceCmd("a"))
	if p.Dirty(key, p.Mark()) {
		t.Error("all writes applied")
	}
}

func TestPendingIgnoresForeignCompletions(t *testing.T) {
	p := NewPending(time.Minute)
	mark := p.Mark()
	p.Done(deviceCmd("a"))
	if p.Dirty(RecordKey("u1", "phone", models.TaskKey("a")), mark) {
		t.Error("a command published elsewhere must not pin the local copy")
	}
}

func TestPendingExpiresLostCompletions(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	p := NewPending(30 * time.Second)
	p.now = func() time.Time { return now }
	key := RecordKey("u1", "phone", models.TaskKey("a"))

	p.Begin(deviceCmd("a"))
	now = now.Add(31 * time.Second)
	if p.Dirty(key, p.Mark()) {
		t.Error("entry should expire after the ttl")
	}
	p.Begin(deviceCmd("b"))
	if len(p.entries) != 1 {
		t.Errorf("expired entries not pruned: %d left", len(p.entries))
	}
}

func TestTrackReleasesFailedApplies(t *testing.T) {
	p := NewPending(time.Minute)
	app := p.Track(&recordingApplier{fail: true})
	cmd := deviceCmd("a")
	p.Begin(cmd)
	mark := p.Mark()
	if err := app.Apply(context.Background(), cmd); err == nil {
		t.Fatal("expected apply error")
	}
	key := RecordKey("u1", "phone", models.TaskKey("a"))
	if p.Dirty(key, p.Mark()) {
		t.Error("failed apply should release the record")
	}
	if !p.Dirty(key, mark) {
		t.Error("a read that overlapped the apply may be stale")
	}
}

func TestNilPendingTracksNothing(t *testing.T) {
	var p *Pending
	p.Begin(deviceCmd("a"))
	p.Done(deviceCmd("a"))
	if p.Dirty("any", p.Mark()) {
		t.Error("nil tracker reported dirty")
	}
	app := &recordingApplier{}
	if p.Track(app) != Applier(app) {
		t.Error("nil tracker should not wrap")
	}
}
