package templates

import (
	"time"

	"github.com/google/uuid"

	"weddingplan/internal/dates"
	"weddingplan/internal/models"
	"weddingplan/internal/scheduler"
)

// Anchors are the dates deadlines are counted back from.
type Anchors struct {
	Marriage *dates.Date
	Ceremony *dates.Date
}

// AnchorsFrom picks the anchors out of settings.
func AnchorsFrom(s models.Settings) Anchors {
	return Anchors{Marriage: s.MarriageDate, Ceremony: s.CeremonyDate}
}

// For returns the anchor that applies to a task in category: ceremony-day
// tasks use the ceremony date when one is set, everything else uses the
// marriage date.
func (a Anchors) For(category models.CategoryID) *dates.Date {
	if category.IsCeremony() && a.Ceremony != nil {
		return a.Ceremony
	}
	return a.Marriage
}

// Expander turns templates into live records. Zero-value fields fall back
// to uuid ids and the wall clock.
type Expander struct {
	NewID func() string
	Now   func() time.Time
}

func (e Expander) id() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func (e Expander) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// ExpandTasks creates one pending task per template, in template order.
func (e Expander) ExpandTasks(tpls []models.TaskTemplate, lang models.Language, anchors Anchors) []models.Task {
	now := e.now()
	out := make([]models.Task, 0, len(tpls))
	for _, t := range tpls {
		var deadline *dates.Date
		if anchor := anchors.For(t.CategoryID); anchor != nil && t.MonthsBefore > 0 {
			d := scheduler.CalculateDeadline(*anchor, t.MonthsBefore)
			deadline = &d
		}

		subtasks := make([]models.Subtask, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			subtasks = append(subtasks, models.Subtask{
				ID:    e.id(),
				Label: lang.Pick(st.Label, st.LabelEn),
			})
		}
		notes := t.Notes
		if lang == models.LangEN {
			notes = t.NotesEn
		}

		out = append(out, models.Task{
			ID:                 e.id(),
			TaskID:             t.TaskID,
			CategoryID:         t.CategoryID,
			PhaseID:            t.PhaseID,
			Name:               lang.Pick(t.Name, t.NameEn),
			Description:        lang.Pick(t.Description, t.DescriptionEn),
			Status:             models.StatusPending,
			RecommendedTiming:  lang.Pick(t.RecommendedTiming, t.RecommendedTimingEn),
			MonthsBefore:       t.MonthsBefore,
			CalculatedDeadline: deadline,
			Subtasks:           subtasks,
			Notes:              append([]string{}, notes...),
			BudgetEstimateMin:  t.BudgetEstimateMin,
			BudgetEstimateMax:  t.BudgetEstimateMax,
			UpdatedAt:          now,
		})
	}
	return out
}

// ExpandPrenup creates one open checklist item per template.
func (e Expander) ExpandPrenup(tpls []models.PrenupTemplate, lang models.Language) []models.PrenupItem {
	out := make([]models.PrenupItem, 0, len(tpls))
	for _, t := range tpls {
		out = append(out, models.PrenupItem{
			ID:          e.id(),
			TemplateID:  t.ID,
			SectionID:   t.SectionID,
			Label:       lang.Pick(t.Label, t.LabelEn),
			Description: lang.Pick(t.Description, t.DescriptionEn),
		})
	}
	return out
}
