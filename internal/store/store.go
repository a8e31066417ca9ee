// Package store is the device-local persistence of tasks, prenup items,
// settings and partner-link state. Each collection is one blob under a fixed
// key, namespaced per device.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"weddingplan/internal/models"
	"weddingplan/pkg/logger"
)

const (
	tasksKey         = "weddingplan_v1_tasks"
	prenupKey        = "weddingplan_v1_prenup"
	settingsKey      = "weddingplan_v1_settings"
	shareCodeKey     = "weddingplan_v1_share_code"
	linkedPartnerKey = "weddingplan_v1_linked_partner"
)

// Store is the local repository for one device namespace.
//
// Updates are read-modify-write of the whole collection with no locking:
// two concurrent updates in the same namespace can lose one of them. Clients
// are expected to drive a namespace from a single session.
type Store struct {
	backend   Backend
	namespace string
	now       func() time.Time
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(backend Backend, namespace string, opts ...Option) *Store {
	s := &Store{backend: backend, namespace: namespace, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Namespace() string { return s.namespace }

func (s *Store) key(name string) string { return s.namespace + ":" + name }

// load decodes the blob under name into v. Missing or unreadable data
// reports false with no error; only backend failures are errors.
func (s *Store) load(ctx context.Context, name string, v any) (bool, error) {
	b, err := s.backend.Get(ctx, s.key(name))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		logger.Debug(ctx, "Discarding unreadable local record", "namespace", s.namespace, "key", name, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.backend.Put(ctx, s.key(name), b); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Tasks returns the persisted tasks, or an empty list when none are stored.
func (s *Store) Tasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	ok, err := s.load(ctx, tasksKey, &tasks)
	if err != nil || !ok || tasks == nil {
		return []models.Task{}, err
	}
	return tasks, nil
}

func (s *Store) SaveTasks(ctx context.Context, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return s.save(ctx, tasksKey, tasks)
}

// UpdateTask merges patch into the task with the given id and stamps its
// UpdatedAt. It returns ErrNotFound, without writing, for an unknown id.
func (s *Store) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.mutateTask(ctx, id, func(t *models.Task) error {
		t.Apply(patch, s.now())
		return nil
	})
}

// ToggleSubtask flips one subtask of a task.
func (s *Store) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*models.Task, error) {
	return s.mutateTask(ctx, taskID, func(t *models.Task) error {
		if !t.ToggleSubtask(subtaskID) {
			return ErrNotFound
		}
		t.UpdatedAt = s.now()
		return nil
	})
}

func (s *Store) mutateTask(ctx context.Context, id string, fn func(*models.Task) error) (*models.Task, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		if err := fn(&tasks[i]); err != nil {
			return nil, err
		}
		if err := s.SaveTasks(ctx, tasks); err != nil {
			return nil, err
		}
		updated := tasks[i].Clone()
		return &updated, nil
	}
	return nil, ErrNotFound
}

// PrenupItems returns the persisted checklist, or an empty list.
func (s *Store) PrenupItems(ctx context.Context) ([]models.PrenupItem, error) {
	var items []models.PrenupItem
	ok, err := s.load(ctx, prenupKey, &items)
	if err != nil || !ok || items == nil {
		return []models.PrenupItem{}, err
	}
	return items, nil
}

func (s *Store) SavePrenupItems(ctx context.Context, items []models.PrenupItem) error {
	if items == nil {
		items = []models.PrenupItem{}
	}
	return s.save(ctx, prenupKey, items)
}

// UpdatePrenupItem merges patch into one item; ErrNotFound for an unknown id.
func (s *Store) UpdatePrenupItem(ctx context.Context, id string, patch models.PrenupPatch) (*models.PrenupItem, error) {
	items, err := s.PrenupItems(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID != id {
			continue
		}
		patch.Apply(&items[i])
		if err := s.SavePrenupItems(ctx, items); err != nil {
			return nil, err
		}
		updated := items[i]
		return &updated, nil
	}
	return nil, ErrNotFound
}

// Settings returns the persisted settings laid over the defaults.
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	ok, err := s.load(ctx, settingsKey, &settings)
	if err != nil || !ok {
		return models.DefaultSettings(), err
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	return s.save(ctx, settingsKey, settings)
}

func (s *Store) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	if err := patch.Validate(); err != nil {
		return models.Settings{}, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	settings.Apply(patch)
	if err := s.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// ResetSettings overwrites the settings with defaults.
func (s *Store) ResetSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	return settings, s.SaveSettings(ctx, settings)
}

// ShareCode returns the stored share code, or "" when none was generated.
func (s *Store) ShareCode(ctx context.Context) (string, error) {
	var code string
	if _, err := s.load(ctx, shareCodeKey, &code); err != nil {
		return "", err
	}
	return code, nil
}

func (s *Store) SaveShareCode(ctx context.Context, code string) error {
	return s.save(ctx, shareCodeKey, code)
}

// LinkedPartner returns nil when no partner is linked on this device.
func (s *Store) LinkedPartner(ctx context.Context) (*models.LinkedPartner, error) {
	var lp models.LinkedPartner
	ok, err := s.load(ctx, linkedPartnerKey, &lp)
	if err != nil || !ok || lp.PartnerRef == "" {
		return nil, err
	}
	return &lp, nil
}

func (s *Store) SaveLinkedPartner(ctx context.Context, lp models.LinkedPartner) error {
	return s.save(ctx, linkedPartnerKey, lp)
}

func (s *Store) ClearLinkedPartner(ctx context.Context) error {
	return s.backend.Delete(ctx, s.key(linkedPartnerKey))
}
