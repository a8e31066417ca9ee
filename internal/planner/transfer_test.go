package planner

import (
	"context"
	"encoding/json"
	"testing"

	"weddingplan/internal/mirror"
	"weddingplan/internal/models"
	"weddingplan/internal/repository"
	"weddingplan/internal/store"
)

// memRemote is a Postgres stand-in keyed by user.
type memRemote struct {
	tasks    map[string][]models.Task
	prenup   map[string][]models.PrenupItem
	settings map[string]models.Settings
}

func newMemRemote() *memRemote {
	return &memRemote{
		tasks:    map[string][]models.Task{},
		prenup:   map[string][]models.PrenupItem{},
		settings: map[string]models.Settings{},
	}
}

func (m *memRemote) ListTasks(_ context.Context, userID string) ([]models.Task, error) {
	return append([]models.Task{}, m.tasks[userID]...), nil
}

func (m *memRemote) UpsertTask(_ context.Context, userID string, t models.Task) error {
	for i, existing := range m.tasks[userID] {
		if existing.ID == t.ID {
			m.tasks[userID][i] = t
			return nil
		}
	}
	m.tasks[userID] = append(m.tasks[userID], t)
	return nil
}

func (m *memRemote) ListPrenupItems(_ context.Context, userID string) ([]models.PrenupItem, error) {
	return append([]models.PrenupItem{}, m.prenup[userID]...), nil
}

func (m *memRemote) UpsertPrenupItem(_ context.Context, userID string, it models.PrenupItem) error {
	for i, existing := range m.prenup[userID] {
		if existing.ID == it.ID {
			m.prenup[userID][i] = it
			return nil
		}
	}
	m.prenup[userID] = append(m.prenup[userID], it)
	return nil
}

func (m *memRemote) GetSettings(_ context.Context, userID string) (models.Settings, error) {
	s, ok := m.settings[userID]
	if !ok {
		return models.Settings{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *memRemote) SaveSettings(_ context.Context, userID string, s models.Settings) error {
	m.settings[userID] = s
	return nil
}

func TestImportReachesRemote(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	source := newSession(store.NewMemoryBackend())
	tasks, err := svc.EnsureTasks(ctx, source)
	if err != nil {
		t.Fatal(err)
	}
	name := "Aoi"
	if _, err := svc.UpdateSettings(ctx, source, models.SettingsPatch{Partner1Name: &name}); err != nil {
		t.Fatal(err)
	}
	bundle, err := svc.Export(ctx, source)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatal(err)
	}

	remote := newMemRemote()
	local := store.New(store.NewMemoryBackend(), "other-device")
	target := mirror.New(remote, nil).Session(local, "user-1")
	res, err := svc.Import(ctx, target, data)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Tasks || !res.Settings || res.Prenup {
		t.Errorf("result = %+v", res)
	}
	if len(remote.tasks["user-1"]) != len(tasks) {
		t.Errorf("remote has %d tasks, want %d", len(remote.tasks["user-1"]), len(tasks))
	}
	if remote.settings["user-1"].Partner1Name != "Aoi" {
		t.Errorf("remote settings = %+v", remote.settings["user-1"])
	}

	// The next remote-first read must return the imported data.
	got, err := svc.EnsureTasks(ctx, target)
	if err != nil || len(got) != len(tasks) || got[0].ID != tasks[0].ID {
		t.Errorf("read after import = %d tasks, %v", len(got), err)
	}
}

func TestResetAfterLanguageChangeRewritesRemote(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	remote := newMemRemote()
	sess := mirror.New(remote, nil).Session(store.New(store.NewMemoryBackend(), "device-1"), "user-1")

	tasks, err := svc.EnsureTasks(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.EnsurePrenup(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if tasks[0].Name != "式場探し" {
		t.Fatalf("seeded name = %q", tasks[0].Name)
	}

	en := models.LangEN
	if _, err := svc.UpdateSettings(ctx, sess, models.SettingsPatch{Language: &en}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ResetTasks(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ResetPrenup(ctx, sess); err != nil {
		t.Fatal(err)
	}

	got, err := svc.EnsureTasks(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(tasks) {
		t.Fatalf("remote has %d tasks after reset, want %d", len(got), len(tasks))
	}
	for _, task := range got {
		if task.TaskID == "venue" && (task.Name != "Find a venue" || task.Description != "Compare venues") {
			t.Errorf("venue after reset = %q / %q", task.Name, task.Description)
		}
	}
	items, err := svc.EnsurePrenup(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Label != "Assets" || items[1].Label != "Debts" {
		t.Errorf("prenup after reset = %+v", items)
	}
}
