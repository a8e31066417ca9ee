package planner

import (
	"context"
	"strings"

	"weddingplan/internal/dates"
	"weddingplan/internal/mirror"
	"weddingplan/internal/models"
	"weddingplan/internal/scheduler"
)

// Filter narrows a task list. Zero fields match everything.
type Filter struct {
	Phase    models.PhaseID
	Category models.CategoryID
	Status   models.TaskStatus
	Query    string
}

// FilterTasks keeps the tasks matching every set field of f. Query is a
// case-insensitive substring match on name, description and memo.
func FilterTasks(tasks []models.Task, f Filter) []models.Task {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.Task{}
	for _, t := range tasks {
		if f.Phase != "" && t.PhaseID != f.Phase {
			continue
		}
		if f.Category != "" && t.CategoryID != f.Category {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Name), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) &&
			!strings.Contains(strings.ToLower(t.Memo), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type PhaseSummary struct {
	PhaseID  models.PhaseID `json:"phase_id"`
	Label    string         `json:"label"`
	Total    int            `json:"total"`
	Progress int            `json:"progress"`
}

type Dashboard struct {
	Today           dates.Date      `json:"today"`
	MarriageDate    *dates.Date     `json:"marriage_date"`
	DaysUntil       *int            `json:"days_until"`
	CurrentPhase    models.PhaseID  `json:"current_phase"`
	OverallProgress int             `json:"overall_progress"`
	TotalTasks      int             `json:"total_tasks"`
	CompletedTasks  int             `json:"completed_tasks"`
	Overdue         []models.Task   `json:"overdue"`
	Upcoming        []models.Task   `json:"upcoming"`
	Phases          []PhaseSummary  `json:"phases"`
	Estimate        scheduler.Range `json:"estimate"`
	Actual          int64           `json:"actual"`
}

// Dashboard summarizes progress relative to the marriage date.
func (s *Service) Dashboard(ctx context.Context, sess *mirror.Session) (*Dashboard, error) {
	tasks, err := s.EnsureTasks(ctx, sess)
	if err != nil {
		return nil, err
	}
	settings, err := sess.Settings(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()

	d := &Dashboard{
		Today:           dates.FromTime(now),
		MarriageDate:    settings.MarriageDate,
		CurrentPhase:    scheduler.CurrentPhase(settings.MarriageDate, now),
		OverallProgress: scheduler.OverallProgress(tasks),
		TotalTasks:      len(tasks),
		Overdue:         nonNil(scheduler.OverdueTasks(tasks, now)),
		Upcoming:        nonNil(scheduler.UpcomingTasks(tasks, s.upcomingDays, now)),
		Estimate:        scheduler.TotalEstimate(tasks),
		Actual:          scheduler.TotalActual(tasks),
	}
	if settings.MarriageDate != nil {
		days := scheduler.DaysUntil(*settings.MarriageDate, now)
		d.DaysUntil = &days
	}
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			d.CompletedTasks++
		}
	}
	for _, p := range models.AllPhases {
		total := 0
		for _, t := range tasks {
			if t.PhaseID == p {
				total++
			}
		}
		d.Phases = append(d.Phases, PhaseSummary{
			PhaseID:  p,
			Label:    p.Label(settings.Language),
			Total:    total,
			Progress: scheduler.PhaseProgress(tasks, p),
		})
	}
	return d, nil
}

type Budget struct {
	TotalBudget int64                      `json:"total_budget"`
	Estimate    scheduler.Range            `json:"estimate"`
	Actual      int64                      `json:"actual"`
	Remaining   int64                      `json:"remaining"`
	Formatted   map[string]string          `json:"formatted"`
	Categories  []scheduler.CategoryBudget `json:"categories"`
}

// Budget compares recorded spending with estimates and the total budget.
func (s *Service) Budget(ctx context.Context, sess *mirror.Session) (*Budget, error) {
	tasks, err := s.EnsureTasks(ctx, sess)
	if err != nil {
		return nil, err
	}
	settings, err := sess.Settings(ctx)
	if err != nil {
		return nil, err
	}
	b := &Budget{
		TotalBudget: settings.TotalBudget,
		Estimate:    scheduler.TotalEstimate(tasks),
		Actual:      scheduler.TotalActual(tasks),
		Categories:  nonNil(scheduler.BudgetBreakdown(tasks, settings.Language)),
	}
	b.Remaining = b.TotalBudget - b.Actual
	b.Formatted = map[string]string{
		"total_budget": scheduler.FormatCurrency(float64(b.TotalBudget)),
		"actual":       scheduler.FormatCurrency(float64(b.Actual)),
		"remaining":    scheduler.FormatCurrency(float64(b.Remaining)),
	}
	return b, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
