package templates

import (
	"fmt"
	"testing"
	"time"

	"weddingplan/internal/dates"
	"weddingplan/internal/models"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedNow() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }

func d(s string) *dates.Date {
	v := dates.MustParse(s)
	return &v
}

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(c.Tasks) == 0 || len(c.Prenup) == 0 {
		t.Fatalf("empty catalog: %d tasks, %d prenup", len(c.Tasks), len(c.Prenup))
	}
}

func TestParseRejectsBadCatalog(t *testing.T) {
	cases := map[string]string{
		"duplicate": "tasks:\n  - {task_id: a, category_id: legal, phase_id: phase_01}\n  - {task_id: a, category_id: legal, phase_id: phase_01}\n",
		"category":  "tasks:\n  - {task_id: a, category_id: nope, phase_id: phase_01}\n",
		"budget":    "tasks:\n  - {task_id: a, category_id: legal, phase_id: phase_01, budget_estimate_min: 5, budget_estimate_max: 1}\n",
		"section":   "prenup:\n  - {id: p, section_id: nope}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestExpandTasks(t *testing.T) {
	tpls := []models.TaskTemplate{
		{
			TaskID: "venue", CategoryID: models.CategoryVenuePlanning, PhaseID: models.Phase03,
			Name: "式場", NameEn: "Venue", MonthsBefore: 10,
			Subtasks: []models.SubtaskTemplate{{Label: "見学", LabelEn: "Visit"}},
			Notes:    []string{"ja note"}, NotesEn: []string{"en note"},
			BudgetEstimateMin: 100, BudgetEstimateMax: 200,
		},
		{TaskID: "rehearsal", CategoryID: models.CategoryCeremonyDay, PhaseID: models.Phase07, MonthsBefore: 1},
		{TaskID: "dayof", CategoryID: models.CategoryCeremonyDay, PhaseID: models.Phase09, MonthsBefore: 0},
	}
	e := Expander{NewID: seqIDs(), Now: fixedNow}
	anchors := Anchors{Marriage: d("2027-04-30"), Ceremony: d("2027-06-12")}

	tasks := e.ExpandTasks(tpls, models.LangEN, anchors)
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	venue := tasks[0]
	if venue.Name != "Venue" || venue.Notes[0] != "en note" || venue.Subtasks[0].Label != "Visit" {
		t.Errorf("language not applied: %+v", venue)
	}
	if venue.TaskID != "venue" || venue.ID == "venue" || venue.ID == "" {
		t.Errorf("ids: id=%q task_id=%q", venue.ID, venue.TaskID)
	}
	if venue.Status != models.StatusPending || venue.CompletedAt != nil || venue.ActualCost != nil {
		t.Errorf("not a fresh task: %+v", venue)
	}
	if venue.CalculatedDeadline == nil || venue.CalculatedDeadline.String() != "2026-06-30" {
		t.Errorf("venue deadline = %v", venue.CalculatedDeadline)
	}
	if venue.Subtasks[0].Completed {
		t.Error("subtask should start incomplete")
	}
	if got := tasks[1].CalculatedDeadline; got == nil || got.String() != "2027-05-12" {
		t.Errorf("ceremony task should use the ceremony anchor, got %v", got)
	}
	if tasks[2].CalculatedDeadline != nil {
		t.Errorf("months_before=0 should have no deadline, got %v", tasks[2].CalculatedDeadline)
	}

	seen := map[string]bool{}
	for _, task := range tasks {
		for _, id := range append([]string{task.ID}, subtaskIDs(task)...) {
			if seen[id] {
				t.Errorf("duplicate id %s", id)
			}
			seen[id] = true
		}
	}

	tasks[0].Notes[0] = "mutated"
	if tpls[0].NotesEn[0] != "en note" {
		t.Error("expanded notes share storage with the template")
	}
}

func TestCeremonyTaskFallsBackToMarriageDate(t *testing.T) {
	tpls := []models.TaskTemplate{{TaskID: "r", CategoryID: models.CategoryCeremonyDay, PhaseID: models.Phase07, MonthsBefore: 2}}
	tasks := Expander{Now: fixedNow}.ExpandTasks(tpls, models.LangJA, Anchors{Marriage: d("2027-03-31")})
	if got := tasks[0].CalculatedDeadline; got == nil || got.String() != "2027-01-31" {
		t.Errorf("deadline = %v", got)
	}

	none := Expander{Now: fixedNow}.ExpandTasks(tpls, models.LangJA, Anchors{})
	if none[0].CalculatedDeadline != nil {
		t.Errorf("no anchors should mean no deadline, got %v", none[0].CalculatedDeadline)
	}
}

func TestExpandPrenup(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	items := Expander{NewID: seqIDs()}.ExpandPrenup(c.Prenup, models.LangJA)
	if len(items) != len(c.Prenup) {
		t.Fatalf("got %d items", len(items))
	}
	for i, item := range items {
		if item.Completed || item.Notes != "" {
			t.Errorf("item %d not fresh: %+v", i, item)
		}
		if item.Label != c.Prenup[i].Label || item.SectionID != c.Prenup[i].SectionID {
			t.Errorf("item %d does not follow template order", i)
		}
	}
}

func subtaskIDs(t models.Task) []string {
	var out []string
	for _, st := range t.Subtasks {
		out = append(out, st.ID)
	}
	return out
}
