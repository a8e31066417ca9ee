package models

import (
	"encoding/json"
	"testing"
	"time"

	"weddingplan/internal/dates"
)

func TestStatusCycleVisitsEveryStateAndWraps(t *testing.T) {
	s := StatusPending
	seen := map[TaskStatus]bool{}
	for i := 0; i < len(StatusCycle); i++ {
		seen[s] = true
		s = s.Next()
	}
	if s != StatusPending {
		t.Errorf("cycle did not wrap back to pending, got %s", s)
	}
	if len(seen) != len(StatusCycle) {
		t.Errorf("cycle visited %d states, want %d", len(seen), len(StatusCycle))
	}
	if got := StatusCompleted.Next(); got != StatusSkipped {
		t.Errorf("completed.Next() = %s, want skipped", got)
	}
	if got := TaskStatus("bogus").Next(); got != StatusPending {
		t.Errorf("unknown.Next() = %s, want pending", got)
	}
}

func TestApplyKeepsCompletedAtInvariant(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	task := Task{ID: "a", Status: StatusPending}

	for _, s := range []TaskStatus{StatusCompleted, StatusSkipped, StatusCompleted, StatusInProgress, StatusPending} {
		st := s
		task.Apply(TaskPatch{Status: &st}, now)
		if (task.Status == StatusCompleted) != (task.CompletedAt != nil) {
			t.Fatalf("status %s with completed_at %v", task.Status, task.CompletedAt)
		}
	}
	if !task.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", task.UpdatedAt, now)
	}
}

func TestTaskPatchJSON(t *testing.T) {
	var p TaskPatch
	body := `{"id":"hijack","task_id":"hijack","status":"completed","actual_cost":120000,"memo":"deposit paid"}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatal(err)
	}
	if p.Status == nil || *p.Status != StatusCompleted {
		t.Errorf("status = %v", p.Status)
	}
	if p.ActualCost == nil || *p.ActualCost != 120000 || p.ClearActualCost {
		t.Errorf("actual cost = %v clear=%v", p.ActualCost, p.ClearActualCost)
	}
	if p.Memo == nil || *p.Memo != "deposit paid" {
		t.Errorf("memo = %v", p.Memo)
	}

	var clear TaskPatch
	if err := json.Unmarshal([]byte(`{"actual_cost":null}`), &clear); err != nil {
		t.Fatal(err)
	}
	if !clear.ClearActualCost || clear.ActualCost != nil {
		t.Errorf("expected clear, got %+v", clear)
	}

	var untouched TaskPatch
	if err := json.Unmarshal([]byte(`{"memo":""}`), &untouched); err != nil {
		t.Fatal(err)
	}
	if untouched.ClearActualCost || untouched.ActualCost != nil {
		t.Errorf("absent actual_cost should not change cost: %+v", untouched)
	}
}

func TestTaskPatchValidate(t *testing.T) {
	bad := TaskStatus("done")
	if err := (TaskPatch{Status: &bad}).Validate(); err == nil {
		t.Error("expected invalid status error")
	}
	neg := int64(-1)
	if err := (TaskPatch{ActualCost: &neg}).Validate(); err == nil {
		t.Error("expected negative cost error")
	}
}

func TestCloneIsDeep(t *testing.T) {
	cost := int64(10)
	orig := Task{Subtasks: []Subtask{{ID: "s1"}}, Notes: []string{"n"}, ActualCost: &cost}
	c := orig.Clone()
	c.Subtasks[0].Completed = true
	c.Notes[0] = "changed"
	*c.ActualCost = 99
	if orig.Subtasks[0].Completed || orig.Notes[0] != "n" || *orig.ActualCost != 10 {
		t.Errorf("clone shares memory with original: %+v", orig)
	}
}

func TestSettingsPatchJSON(t *testing.T) {
	var p SettingsPatch
	if err := json.Unmarshal([]byte(`{"marriage_date":"2027-04-29","ceremony_date":null,"language":"en"}`), &p); err != nil {
		t.Fatal(err)
	}
	s := DefaultSettings()
	ceremony := dates.MustParse("2027-05-01")
	s.CeremonyDate = &ceremony
	s.Apply(p)
	if s.MarriageDate == nil || s.MarriageDate.String() != "2027-04-29" {
		t.Errorf("marriage date = %v", s.MarriageDate)
	}
	if s.CeremonyDate != nil {
		t.Errorf("ceremony date should be cleared, got %v", s.CeremonyDate)
	}
	if s.Language != LangEN {
		t.Errorf("language = %s", s.Language)
	}
	if s.TotalBudget != DefaultTotalBudget {
		t.Errorf("untouched budget changed: %d", s.TotalBudget)
	}
}
