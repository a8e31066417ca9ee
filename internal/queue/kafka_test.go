package queue

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"weddingplan/internal/models"
)

func TestEncodeKeysByRecord(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	first := models.MirrorCommand{Action: models.ActionUpsertTask, UserID: "u1", Task: &models.Task{ID: "t1", Status: models.StatusPending}, RequestedAt: now}
	second := models.MirrorCommand{Action: models.ActionUpsertTask, UserID: "u1", Task: &models.Task{ID: "t1", Status: models.StatusCompleted}, RequestedAt: now}
	other := models.MirrorCommand{Action: models.ActionSaveSettings, UserID: "u1", Settings: &models.Settings{}, RequestedAt: now}

	m1, err := Encode(first)
	if err != nil {
		t.Fatal(err)
	}
	m2, _ := Encode(second)
	m3, _ := Encode(other)
	if string(m1.Key) != "u1/task:t1" || string(m1.Key) != string(m2.Key) {
		t.Errorf("keys = %q, %q", m1.Key, m2.Key)
	}
	if string(m3.Key) != "u1/settings:u1" {
		t.Errorf("settings key = %q", m3.Key)
	}

	partitions := []int{0, 1, 2, 3, 4, 5, 6, 7}
	b := &kafka.Hash{}
	if b.Balance(m1, partitions...) != b.Balance(m2, partitions...) {
		t.Error("writes to one record must share a partition")
	}

	back, err := Decode(m2)
	if err != nil {
		t.Fatal(err)
	}
	if back.Task == nil || back.Task.Status != models.StatusCompleted || !back.RequestedAt.Equal(now) {
		t.Errorf("decoded = %+v", back)
	}
	if _, err := Decode(kafka.Message{Value: []byte("{")}); err == nil {
		t.Error("expected decode error")
	}
}
