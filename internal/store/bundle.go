package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"weddingplan/internal/models"
)

// ErrInvalidBundle is returned when an import file cannot be used.
var ErrInvalidBundle = errors.New("invalid export file")

// Bundle is the export envelope. Each collection is the stored blob as is;
// collections that were never saved are omitted.
type Bundle struct {
	Tasks      json.RawMessage `json:"tasks,omitempty"`
	Prenup     json.RawMessage `json:"prenup,omitempty"`
	Settings   json.RawMessage `json:"settings,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
}

// Export snapshots the three collections.
func (s *Store) Export(ctx context.Context) (*Bundle, error) {
	b := &Bundle{ExportedAt: s.now().UTC()}
	for name, dst := range map[string]*json.RawMessage{
		tasksKey:    &b.Tasks,
		prenupKey:   &b.Prenup,
		settingsKey: &b.Settings,
	} {
		raw, err := s.backend.Get(ctx, s.key(name))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", name, err)
		}
		if json.Valid(raw) {
			*dst = raw
		}
	}
	return b, nil
}

// ImportResult names the collections an import replaced.
type ImportResult struct {
	Tasks    bool `json:"tasks"`
	Prenup   bool `json:"prenup"`
	Settings bool `json:"settings"`
}

// Import replaces every collection present in data. Unknown fields are
// ignored. Every present collection is decoded before anything is written,
// so a malformed file changes nothing.
func (s *Store) Import(ctx context.Context, data []byte) (ImportResult, error) {
	var res ImportResult
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	var (
		tasks    []models.Task
		prenup   []models.PrenupItem
		settings = models.DefaultSettings()
	)
	if present(b.Tasks) {
		if err := json.Unmarshal(b.Tasks, &tasks); err != nil {
			return res, fmt.Errorf("%w: tasks: %v", ErrInvalidBundle, err)
		}
		res.Tasks = true
	}
	if present(b.Prenup) {
		if err := json.Unmarshal(b.Prenup, &prenup); err != nil {
			return res, fmt.Errorf("%w: prenup: %v", ErrInvalidBundle, err)
		}
		res.Prenup = true
	}
	if present(b.Settings) {
		if err := json.Unmarshal(b.Settings, &settings); err != nil {
			return res, fmt.Errorf("%w: settings: %v", ErrInvalidBundle, err)
		}
		res.Settings = true
	}

	if res.Tasks {
		if err := s.SaveTasks(ctx, tasks); err != nil {
			return ImportResult{}, err
		}
	}
	if res.Prenup {
		if err := s.SavePrenupItems(ctx, prenup); err != nil {
			return ImportResult{}, err
		}
	}
	if res.Settings {
		if err := s.SaveSettings(ctx, settings); err != nil {
			return ImportResult{}, err
		}
	}
	return res, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
