package mirror

import (
	"context"
	"errors"
	"fmt"

	"weddingplan/internal/models"
	"weddingplan/internal/repository"
	"weddingplan/internal/store"
	"weddingplan/internal/worker"
	"weddingplan/pkg/logger"
)

type Session struct {
	m      *Mirror
	local  *store.Store
	userID string
}

func (s *Session) Local() *store.Store { return s.local }
func (s *Session) UserID() string      { return s.userID }

// Remote reports whether this session replicates at all.
func (s *Session) Remote() bool { return s.m.Configured() && s.userID != "" }

type snapshot[T any] struct {
	value T
	mark  uint64
}

// fetch runs one remote read per user and collection at a time; concurrent
// callers share the result. The returned mark is taken before the read
// starts.
func fetch[T any](ctx context.Context, s *Session, collection string, read func(context.Context) (T, error)) (T, uint64, error) {
	v, err, _ := s.m.reads.Do(collection+":"+s.userID, func() (any, error) {
		mark := s.m.pending.Mark()
		val, err := read(ctx)
		return snapshot[T]{value: val, mark: mark}, err
	})
	if err != nil {
		var zero T
		return zero, 0, err
	}
	snap := v.(snapshot[T])
	return snap.value, snap.mark, nil
}

// dirty reports whether the remote copy of record, read at mark, may miss
// a write this device published.
func (s *Session) dirty(record string, mark uint64) bool {
	return s.m.pending.Dirty(worker.RecordKey(s.userID, s.local.Namespace(), record), mark)
}

// keepUnsynced replaces remote records that are dirty with their local
// version and appends dirty local records the remote does not have yet.
func keepUnsynced[T any](remote, local []T, id func(T) string, dirty func(string) bool) []T {
	keep := map[string]T{}
	for _, r := range local {
		if dirty(id(r)) {
			keep[id(r)] = r
		}
	}
	if len(keep) == 0 {
		return remote
	}
	out := make([]T, 0, len(remote)+len(keep))
	for _, r := range remote {
		if l, ok := keep[id(r)]; ok {
			out = append(out, l)
			delete(keep, id(r))
			continue
		}
		out = append(out, r)
	}
	for _, l := range local {
		if _, ok := keep[id(l)]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Tasks returns the remote task list when reachable, replacing the local
// copy with it, and the local list otherwise.
func (s *Session) Tasks(ctx context.Context) ([]models.Task, error) {
	if !s.Remote() {
		return s.local.Tasks(ctx)
	}
	shared, mark, err := fetch(ctx, s, "tasks", func(ctx context.Context) ([]models.Task, error) {
		return s.m.remote.ListTasks(ctx, s.userID)
	})
	if err != nil {
		logger.Warn(ctx, "Remote tasks read failed, using local copy", "error", err)
		return s.local.Tasks(ctx)
	}
	tasks := make([]models.Task, len(shared))
	for i, t := range shared {
		tasks[i] = t.Clone()
	}
	if s.m.pending != nil {
		local, err := s.local.Tasks(ctx)
		if err != nil {
			return nil, err
		}
		tasks = keepUnsynced(tasks, local, func(t models.Task) string { return t.ID },
			func(id string) bool { return s.dirty(models.TaskKey(id), mark) })
	}
	if err := s.local.SaveTasks(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Session) PrenupItems(ctx context.Context) ([]models.PrenupItem, error) {
	if !s.Remote() {
		return s.local.PrenupItems(ctx)
	}
	shared, mark, err := fetch(ctx, s, "prenup", func(ctx context.Context) ([]models.PrenupItem, error) {
		return s.m.remote.ListPrenupItems(ctx, s.userID)
	})
	if err != nil {
		logger.Warn(ctx, "Remote prenup read failed, using local copy", "error", err)
		return s.local.PrenupItems(ctx)
	}
	items := append([]models.PrenupItem{}, shared...)
	if s.m.pending != nil {
		local, err := s.local.PrenupItems(ctx)
		if err != nil {
			return nil, err
		}
		items = keepUnsynced(items, local, func(it models.PrenupItem) string { return it.ID },
			func(id string) bool { return s.dirty(models.PrenupKey(id), mark) })
	}
	if err := s.local.SavePrenupItems(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Settings falls back to the local copy when the user has no remote
// settings yet.
func (s *Session) Settings(ctx context.Context) (models.Settings, error) {
	if !s.Remote() {
		return s.local.Settings(ctx)
	}
	settings, mark, err := fetch(ctx, s, "settings", func(ctx context.Context) (models.Settings, error) {
		return s.m.remote.GetSettings(ctx, s.userID)
	})
	if err != nil {
		logger.Debug(ctx, "Remote settings unavailable, using local copy", "error", err)
		return s.local.Settings(ctx)
	}
	if s.dirty(models.SettingsKey(s.userID), mark) {
		return s.local.Settings(ctx)
	}
	if err := s.local.SaveSettings(ctx, settings); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (s *Session) SaveTasks(ctx context.Context, tasks []models.Task) error {
	if err := s.local.SaveTasks(ctx, tasks); err != nil {
		return err
	}
	for i := range tasks {
		s.pushTask(ctx, tasks[i])
	}
	return nil
}

func (s *Session) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	t, err := s.local.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.pushTask(ctx, *t)
	return t, nil
}

func (s *Session) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*models.Task, error) {
	t, err := s.local.ToggleSubtask(ctx, taskID, subtaskID)
	if err != nil {
		return nil, err
	}
	s.pushTask(ctx, *t)
	return t, nil
}

func (s *Session) SavePrenupItems(ctx context.Context, items []models.PrenupItem) error {
	if err := s.local.SavePrenupItems(ctx, items); err != nil {
		return err
	}
	for i := range items {
		s.pushPrenup(ctx, items[i])
	}
	return nil
}

func (s *Session) UpdatePrenupItem(ctx context.Context, id string, patch models.PrenupPatch) (*models.PrenupItem, error) {
	it, err := s.local.UpdatePrenupItem(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.pushPrenup(ctx, *it)
	return it, nil
}

func (s *Session) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := s.local.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.pushSettings(ctx, settings)
	return nil
}

func (s *Session) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	settings, err := s.local.UpdateSettings(ctx, patch)
	if err != nil {
		return models.Settings{}, err
	}
	s.pushSettings(ctx, settings)
	return settings, nil
}

func (s *Session) ResetSettings(ctx context.Context) (models.Settings, error) {
	settings, err := s.local.ResetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	s.pushSettings(ctx, settings)
	return settings, nil
}

func (s *Session) pushTask(ctx context.Context, t models.Task) {
	c := t.Clone()
	s.publish(ctx, models.MirrorCommand{Action: models.ActionUpsertTask, Task: &c})
}

func (s *Session) pushPrenup(ctx context.Context, it models.PrenupItem) {
	s.publish(ctx, models.MirrorCommand{Action: models.ActionUpsertPrenup, PrenupItem: &it})
}

func (s *Session) pushSettings(ctx context.Context, settings models.Settings) {
	s.publish(ctx, models.MirrorCommand{Action: models.ActionSaveSettings, Settings: &settings})
}

// publish never fails the caller: the local write already happened.
func (s *Session) publish(ctx context.Context, cmd models.MirrorCommand) {
	if !s.Remote() {
		return
	}
	cmd.UserID = s.userID
	cmd.Device = s.local.Namespace()
	cmd.RequestedAt = s.m.now().UTC()
	_, applied := s.m.publisher.(directPublisher)
	s.m.pending.Begin(cmd)
	err := s.m.publisher.Publish(ctx, cmd)
	if applied || err != nil {
		s.m.pending.Done(cmd)
	}
	if err != nil {
		logger.Warn(ctx, "Remote write dropped", "error", err, "action", cmd.Action, "key", cmd.Key())
	}
}

// MigrationReport counts what Migrate pushed.
type MigrationReport struct {
	TasksPushed    int  `json:"tasks_pushed"`
	PrenupPushed   int  `json:"prenup_pushed"`
	SettingsPushed bool `json:"settings_pushed"`
}

// Migrate copies local records whose ids the remote does not have yet. It
// never deletes or overwrites remote records. Settings are pushed when they
// hold user input and the remote has none.
func (s *Session) Migrate(ctx context.Context) (MigrationReport, error) {
	var rep MigrationReport
	if !s.Remote() {
		return rep, ErrUnavailable
	}
	remote := s.m.remote

	tasks, err := s.local.Tasks(ctx)
	if err != nil {
		return rep, err
	}
	if len(tasks) > 0 {
		existing, err := remote.ListTasks(ctx, s.userID)
		if err != nil {
			return rep, fmt.Errorf("list remote tasks: %w", err)
		}
		have := make(map[string]bool, len(existing))
		for _, t := range existing {
			have[t.ID] = true
		}
		for _, t := range tasks {
			if have[t.ID] {
				continue
			}
			if err := remote.UpsertTask(ctx, s.userID, t); err != nil {
				return rep, fmt.Errorf("push task %s: %w", t.ID, err)
			}
			rep.TasksPushed++
		}
	}

	items, err := s.local.PrenupItems(ctx)
	if err != nil {
		return rep, err
	}
	if len(items) > 0 {
		existing, err := remote.ListPrenupItems(ctx, s.userID)
		if err != nil {
			return rep, fmt.Errorf("list remote prenup items: %w", err)
		}
		have := make(map[string]bool, len(existing))
		for _, it := range existing {
			have[it.ID] = true
		}
		for _, it := range items {
			if have[it.ID] {
				continue
			}
			if err := remote.UpsertPrenupItem(ctx, s.userID, it); err != nil {
				return rep, fmt.Errorf("push prenup item %s: %w", it.ID, err)
			}
			rep.PrenupPushed++
		}
	}

	settings, err := s.local.Settings(ctx)
	if err != nil {
		return rep, err
	}
	if !settings.IsDefault() {
		_, err := remote.GetSettings(ctx, s.userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if err := remote.SaveSettings(ctx, s.userID, settings); err != nil {
				return rep, fmt.Errorf("push settings: %w", err)
			}
			rep.SettingsPushed = true
		case err != nil:
			return rep, fmt.Errorf("read remote settings: %w", err)
		}
	}

	logger.Info(ctx, "Local data migrated", "tasks", rep.TasksPushed, "prenup", rep.PrenupPushed, "settings", rep.SettingsPushed)
	return rep, nil
}
