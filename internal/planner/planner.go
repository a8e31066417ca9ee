// Package planner is the application layer over a mirror session: it seeds
// collections from the template catalog, applies user edits and builds the
// dashboard and budget views.
package planner

import (
	"context"
	"fmt"
	"time"

	"weddingplan/internal/mirror"
	"weddingplan/internal/models"
	"weddingplan/internal/scheduler"
	"weddingplan/internal/store"
	"weddingplan/internal/templates"
	"weddingplan/pkg/logger"
)

type Service struct {
	catalog      *templates.Catalog
	expander     templates.Expander
	upcomingDays int
	now          func() time.Time
}

type Option func(*Service)

// WithClock sets the time used for stamps and date-relative views.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.expander.Now = now
	}
}

// WithIDs sets the id generator for expanded records.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.expander.NewID = newID }
}

func WithUpcomingDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.upcomingDays = days
		}
	}
}

func New(catalog *templates.Catalog, opts ...Option) *Service {
	s := &Service{catalog: catalog, upcomingDays: scheduler.DefaultUpcomingDays, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureTasks returns the session's tasks, seeding them from the catalog
// when there are none.
func (s *Service) EnsureTasks(ctx context.Context, sess *mirror.Session) ([]models.Task, error) {
	tasks, err := sess.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	if len(tasks) > 0 {
		return tasks, nil
	}
	settings, err := sess.Settings(ctx)
	if err != nil {
		return nil, err
	}
	tasks = s.expander.ExpandTasks(s.catalog.Tasks, settings.Language, templates.AnchorsFrom(settings))
	if err := sess.SaveTasks(ctx, tasks); err != nil {
		return nil, err
	}
	logger.Info(ctx, "Tasks initialized from templates", "count", len(tasks))
	return tasks, nil
}

func (s *Service) EnsurePrenup(ctx context.Context, sess *mirror.Session) ([]models.PrenupItem, error) {
	items, err := sess.PrenupItems(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}
	settings, err := sess.Settings(ctx)
	if err != nil {
		return nil, err
	}
	items = s.expander.ExpandPrenup(s.catalog.Prenup, settings.Language)
	if err := sess.SavePrenupItems(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ResetTasks replaces every task with a fresh expansion using the current
// settings. A task keeps the id of the one it replaces from the same
// template: the remote has no delete, so a new id would leave the old row
// behind as a duplicate.
func (s *Service) ResetTasks(ctx context.Context, sess *mirror.Session) ([]models.Task, error) {
	settings, err := sess.Settings(ctx)
	if err != nil {
		return nil, err
	}
	current, err := sess.Local().Tasks(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(current))
	for _, t := range current {
		ids[t.TaskID] = t.ID
	}
	fresh := s.expander.ExpandTasks(s.catalog.Tasks, settings.Language, templates.AnchorsFrom(settings))
	for i := range fresh {
		if id, ok := ids[fresh[i].TaskID]; ok {
			fresh[i].ID = id
		}
	}
	if err := sess.SaveTasks(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// ResetPrenup re-expands the checklist. Items keep their ids per template,
// as in ResetTasks.
func (s *Service) ResetPrenup(ctx context.Context, sess *mirror.Session) ([]models.PrenupItem, error) {
	settings, err := sess.Settings(ctx)
	if err != nil {
		return nil, err
	}
	current, err := sess.Local().PrenupItems(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(current))
	for _, it := range current {
		if it.TemplateID != "" {
			ids[it.TemplateID] = it.ID
		}
	}
	fresh := s.expander.ExpandPrenup(s.catalog.Prenup, settings.Language)
	for i := range fresh {
		if id, ok := ids[fresh[i].TemplateID]; ok {
			fresh[i].ID = id
		}
	}
	if err := sess.SavePrenupItems(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *Service) UpdateTask(ctx context.Context, sess *mirror.Session, id string, patch models.TaskPatch) (*models.Task, error) {
	return sess.UpdateTask(ctx, id, patch)
}

// SetStatus jumps a task straight to status.
func (s *Service) SetStatus(ctx context.Context, sess *mirror.Session, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidPatch, status)
	}
	return sess.UpdateTask(ctx, id, models.TaskPatch{Status: &status})
}

// CycleStatus advances a task one step around the status ring.
func (s *Service) CycleStatus(ctx context.Context, sess *mirror.Session, id string) (*models.Task, error) {
	tasks, err := sess.Local().Tasks(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			next := t.Status.Next()
			return sess.UpdateTask(ctx, id, models.TaskPatch{Status: &next})
		}
	}
	return nil, store.ErrNotFound
}

func (s *Service) ToggleSubtask(ctx context.Context, sess *mirror.Session, taskID, subtaskID string) (*models.Task, error) {
	return sess.ToggleSubtask(ctx, taskID, subtaskID)
}

func (s *Service) UpdatePrenupItem(ctx context.Context, sess *mirror.Session, id string, patch models.PrenupPatch) (*models.PrenupItem, error) {
	return sess.UpdatePrenupItem(ctx, id, patch)
}

func (s *Service) Settings(ctx context.Context, sess *mirror.Session) (models.Settings, error) {
	return sess.Settings(ctx)
}

func (s *Service) UpdateSettings(ctx context.Context, sess *mirror.Session, patch models.SettingsPatch) (models.Settings, error) {
	return sess.UpdateSettings(ctx, patch)
}

func (s *Service) ResetSettings(ctx context.Context, sess *mirror.Session) (models.Settings, error) {
	return sess.ResetSettings(ctx)
}

// Export bundles the device's persisted collections.
func (s *Service) Export(ctx context.Context, sess *mirror.Session) (*store.Bundle, error) {
	return sess.Local().Export(ctx)
}

// Import replaces the collections present in data and pushes them to the
// remote, which would otherwise win on the next read.
func (s *Service) Import(ctx context.Context, sess *mirror.Session, data []byte) (store.ImportResult, error) {
	res, err := sess.Local().Import(ctx, data)
	if err != nil || !sess.Remote() {
		return res, err
	}
	local := sess.Local()
	if res.Tasks {
		tasks, err := local.Tasks(ctx)
		if err != nil {
			return res, err
		}
		if err := sess.SaveTasks(ctx, tasks); err != nil {
			return res, err
		}
	}
	if res.Prenup {
		items, err := local.PrenupItems(ctx)
		if err != nil {
			return res, err
		}
		if err := sess.SavePrenupItems(ctx, items); err != nil {
			return res, err
		}
	}
	if res.Settings {
		settings, err := local.Settings(ctx)
		if err != nil {
			return res, err
		}
		if err := sess.SaveSettings(ctx, settings); err != nil {
			return res, err
		}
	}
	return res, nil
}
