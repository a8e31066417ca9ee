package scheduler

import (
	"math"
	"sort"

	"weddingplan/internal/models"
)

type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func TotalEstimate(tasks []models.Task) Range {
	var r Range
	for _, t := range tasks {
		r.Min += t.BudgetEstimateMin
		r.Max += t.BudgetEstimateMax
	}
	return r
}

// TotalActual sums recorded costs; tasks without one contribute nothing.
func TotalActual(tasks []models.Task) int64 {
	var sum int64
	for _, t := range tasks {
		if t.ActualCost != nil {
			sum += *t.ActualCost
		}
	}
	return sum
}

type CategoryBudget struct {
	CategoryID  models.CategoryID `json:"category_id"`
	Label       string            `json:"label"`
	EstimateMin int64             `json:"estimate_min"`
	EstimateMax int64             `json:"estimate_max"`
	EstimateAvg int64             `json:"estimate_avg"`
	Actual      int64             `json:"actual"`
}

func CategoryBudgetFor(tasks []models.Task, category models.CategoryID, lang models.Language) CategoryBudget {
	b := CategoryBudget{CategoryID: category, Label: category.Label(lang)}
	for _, t := range tasks {
		if t.CategoryID == category {
			b.add(t)
		}
	}
	b.EstimateAvg = Midpoint(b.EstimateMin, b.EstimateMax)
	return b
}

func (b *CategoryBudget) add(t models.Task) {
	b.EstimateMin += t.BudgetEstimateMin
	b.EstimateMax += t.BudgetEstimateMax
	if t.ActualCost != nil {
		b.Actual += *t.ActualCost
	}
}

// BudgetBreakdown groups tasks by category, largest estimate midpoint first.
// Each category's midpoint is rounded on its own (half up), so the sum of
// EstimateAvg may differ from the rounded true total by up to 0.5 per
// category. Ties keep first-appearance order.
func BudgetBreakdown(tasks []models.Task, lang models.Language) []CategoryBudget {
	index := map[models.CategoryID]int{}
	var out []CategoryBudget
	for _, t := range tasks {
		i, ok := index[t.CategoryID]
		if !ok {
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, CategoryBudget{CategoryID: t.CategoryID, Label: t.CategoryID.Label(lang)})
		}
		out[i].add(t)
	}
	for i := range out {
		out[i].EstimateAvg = Midpoint(out[i].EstimateMin, out[i].EstimateMax)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EstimateAvg > out[j].EstimateAvg })
	return out
}

// Midpoint is (min+max)/2 rounded half away from zero.
func Midpoint(lo, hi int64) int64 {
	return int64(math.Round(float64(lo+hi) / 2))
}
