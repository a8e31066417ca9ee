package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"weddingplan/internal/dates"
)

// TaskStatus is the progress state of a task. No state is terminal.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusSkipped    TaskStatus = "skipped"
)

// StatusCycle is the forward order used by the quick toggle; Next wraps
// around at the end.
var StatusCycle = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusSkipped}

func (s TaskStatus) Valid() bool { return slices.Contains(StatusCycle, s) }

// Next returns the status after s in StatusCycle. Unknown values restart the cycle.
func (s TaskStatus) Next() TaskStatus {
	i := slices.Index(StatusCycle, s)
	if i < 0 {
		return StatusCycle[0]
	}
	return StatusCycle[(i+1)%len(StatusCycle)]
}

// Open reports whether the task still needs doing.
func (s TaskStatus) Open() bool { return s != StatusCompleted && s != StatusSkipped }

type Subtask struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// Task is one actionable preparation item instantiated from a template.
// ID is unique per instance; TaskID names the template it came from.
type Task struct {
	ID                 string      `json:"id"`
	TaskID             string      `json:"task_id"`
	CategoryID         CategoryID  `json:"category_id"`
	PhaseID            PhaseID     `json:"phase_id"`
	Name               string      `json:"name"`
	Description        string      `json:"description"`
	Status             TaskStatus  `json:"status"`
	RecommendedTiming  string      `json:"recommended_timing"`
	MonthsBefore       int         `json:"months_before"`
	CalculatedDeadline *dates.Date `json:"calculated_deadline"`
	Subtasks           []Subtask   `json:"subtasks"`
	Notes              []string    `json:"notes"`
	BudgetEstimateMin  int64       `json:"budget_estimate_min"`
	BudgetEstimateMax  int64       `json:"budget_estimate_max"`
	ActualCost         *int64      `json:"actual_cost"`
	Memo               string      `json:"memo"`
	CompletedAt        *time.Time  `json:"completed_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// Clone returns a deep copy.
func (t Task) Clone() Task {
	c := t
	if t.CalculatedDeadline != nil {
		d := *t.CalculatedDeadline
		c.CalculatedDeadline = &d
	}
	if t.ActualCost != nil {
		v := *t.ActualCost
		c.ActualCost = &v
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	c.Subtasks = slices.Clone(t.Subtasks)
	c.Notes = slices.Clone(t.Notes)
	return c
}

// SetStatus keeps CompletedAt set exactly when the task is completed.
func (t *Task) SetStatus(s TaskStatus, now time.Time) {
	t.Status = s
	if s == StatusCompleted {
		ts := now
		t.CompletedAt = &ts
		return
	}
	t.CompletedAt = nil
}

// ToggleSubtask flips one subtask. It reports false when subtaskID is unknown.
func (t *Task) ToggleSubtask(subtaskID string) bool {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			return true
		}
	}
	return false
}

// TaskPatch is a partial update. Identity fields (ID, TaskID) are not
// representable here and so can never be changed through an update.
type TaskPatch struct {
	Status          *TaskStatus
	Subtasks        []Subtask
	ActualCost      *int64
	ClearActualCost bool
	Memo            *string
}

var ErrInvalidPatch = errors.New("invalid patch")

func (p TaskPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPatch, *p.Status)
	}
	if p.ActualCost != nil && *p.ActualCost < 0 {
		return fmt.Errorf("%w: actual_cost must not be negative", ErrInvalidPatch)
	}
	return nil
}

// Apply merges p over t and stamps UpdatedAt.
func (t *Task) Apply(p TaskPatch, now time.Time) {
	if p.Status != nil {
		t.SetStatus(*p.Status, now)
	}
	if p.Subtasks != nil {
		t.Subtasks = slices.Clone(p.Subtasks)
	}
	if p.ClearActualCost {
		t.ActualCost = nil
	} else if p.ActualCost != nil {
		v := *p.ActualCost
		t.ActualCost = &v
	}
	if p.Memo != nil {
		t.Memo = *p.Memo
	}
	t.UpdatedAt = now
}

// UnmarshalJSON reads a patch body. An explicit "actual_cost": null clears
// the cost; unknown keys, including id and task_id, are ignored.
func (p *TaskPatch) UnmarshalJSON(b []byte) error {
	var raw struct {
		Status     *TaskStatus     `json:"status"`
		Subtasks   []Subtask       `json:"subtasks"`
		ActualCost json.RawMessage `json:"actual_cost"`
		Memo       *string         `json:"memo"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = TaskPatch{Status: raw.Status, Subtasks: raw.Subtasks, Memo: raw.Memo}
	if len(raw.ActualCost) > 0 {
		if bytes.Equal(bytes.TrimSpace(raw.ActualCost), []byte("null")) {
			p.ClearActualCost = true
		} else {
			var v int64
			if err := json.Unmarshal(raw.ActualCost, &v); err != nil {
				return fmt.Errorf("actual_cost: %w", err)
			}
			p.ActualCost = &v
		}
	}
	return nil
}
