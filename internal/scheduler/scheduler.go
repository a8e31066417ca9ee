// Package scheduler derives deadlines, phases, progress and budget figures
// from task state. Every function is pure; callers pass now explicitly.
package scheduler

import (
	"math"
	"sort"
	"time"

	"weddingplan/internal/dates"
	"weddingplan/internal/models"
)

// DefaultUpcomingDays is the look-ahead window for UpcomingTasks.
const DefaultUpcomingDays = 30

// CalculateDeadline returns anchor minus monthsBefore calendar months,
// clamping to the end of a shorter target month.
func CalculateDeadline(anchor dates.Date, monthsBefore int) dates.Date {
	return anchor.AddMonths(-monthsBefore)
}

// OverallProgress is the percentage of non-skipped tasks that are completed.
func OverallProgress(tasks []models.Task) int {
	return progress(tasks, func(models.Task) bool { return true })
}

func PhaseProgress(tasks []models.Task, phase models.PhaseID) int {
	return progress(tasks, func(t models.Task) bool { return t.PhaseID == phase })
}

func CategoryProgress(tasks []models.Task, category models.CategoryID) int {
	return progress(tasks, func(t models.Task) bool { return t.CategoryID == category })
}

func progress(tasks []models.Task, match func(models.Task) bool) int {
	var eligible, completed int
	for _, t := range tasks {
		if !match(t) || t.Status == models.StatusSkipped {
			continue
		}
		eligible++
		if t.Status == models.StatusCompleted {
			completed++
		}
	}
	if eligible == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(eligible) * 100))
}

// OverdueTasks returns open tasks whose deadline is strictly before today.
func OverdueTasks(tasks []models.Task, now time.Time) []models.Task {
	today := dates.FromTime(now)
	var out []models.Task
	for _, t := range tasks {
		if t.Status.Open() && t.CalculatedDeadline != nil && t.CalculatedDeadline.Before(today) {
			out = append(out, t)
		}
	}
	return out
}

// UpcomingTasks returns open tasks due in [today, today+days), soonest first.
func UpcomingTasks(tasks []models.Task, days int, now time.Time) []models.Task {
	today := dates.FromTime(now)
	cutoff := today.AddDays(days)
	var out []models.Task
	for _, t := range tasks {
		if !t.Status.Open() || t.CalculatedDeadline == nil {
			continue
		}
		d := *t.CalculatedDeadline
		if !d.Before(today) && d.Before(cutoff) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CalculatedDeadline.Before(*out[j].CalculatedDeadline)
	})
	return out
}

// CurrentPhase maps the whole months left until anchor onto a phase.
// A nil anchor means no date has been chosen yet.
func CurrentPhase(anchor *dates.Date, now time.Time) models.PhaseID {
	if anchor == nil {
		return models.FirstPhase
	}
	today := dates.FromTime(now)
	months := today.MonthsUntil(*anchor)
	days := today.DaysUntil(*anchor)

	switch {
	case months > 12:
		return models.Phase01
	case months > 10:
		return models.Phase02
	case months > 8:
		return models.Phase03
	case months > 6:
		return models.Phase04
	case months > 4:
		return models.Phase05
	case months > 2:
		return models.Phase06
	case months > 1:
		return models.Phase07
	case days > 0:
		return models.Phase08
	case days == 0:
		return models.DayOfPhase
	default:
		return models.PostPhase
	}
}

func DaysUntil(anchor dates.Date, now time.Time) int {
	return dates.FromTime(now).DaysUntil(anchor)
}

func MonthsUntil(anchor dates.Date, now time.Time) int {
	return dates.FromTime(now).MonthsUntil(anchor)
}
