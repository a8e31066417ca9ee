package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"weddingplan/internal/dates"
	"weddingplan/internal/models"
	"weddingplan/pkg/logger"
)

const listTasksSQL = `SELECT id, task_id, category_id, phase_id, name, description, status,
	recommended_timing, months_before, calculated_deadline::text, subtasks, notes,
	budget_estimate_min, budget_estimate_max, actual_cost, memo, completed_at, updated_at
	FROM weddingplan_tasks WHERE user_id = $1
	ORDER BY phase_id, months_before DESC, task_id, id`

// ListTasks returns all of the user's tasks in phase order.
func (r *Repository) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, listTasksSQL, userID)
	if err != nil {
		logger.Error(ctx, "Repository ListTasks failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var (
			t           models.Task
			deadline    dates.NullDate
			subtasks    []byte
			notes       []byte
			actualCost  sql.NullInt64
			completedAt sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.TaskID, &t.CategoryID, &t.PhaseID, &t.Name, &t.Description, &t.Status,
			&t.RecommendedTiming, &t.MonthsBefore, &deadline, &subtasks, &notes,
			&t.BudgetEstimateMin, &t.BudgetEstimateMax, &actualCost, &t.Memo, &completedAt, &t.UpdatedAt); err != nil {
			logger.Error(ctx, "Repository scan task failed", "error", err)
			return nil, err
		}
		t.CalculatedDeadline = deadline.Ptr()
		if err := json.Unmarshal(subtasks, &t.Subtasks); err != nil {
			return nil, fmt.Errorf("task %s subtasks: %w", t.ID, err)
		}
		if err := json.Unmarshal(notes, &t.Notes); err != nil {
			return nil, fmt.Errorf("task %s notes: %w", t.ID, err)
		}
		if actualCost.Valid {
			v := actualCost.Int64
			t.ActualCost = &v
		}
		if completedAt.Valid {
			ts := completedAt.Time
			t.CompletedAt = &ts
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

const upsertTaskSQL = `INSERT INTO weddingplan_tasks (id, user_id, task_id, category_id, phase_id, name, description,
	status, recommended_timing, months_before, calculated_deadline, subtasks, notes,
	budget_estimate_min, budget_estimate_max, actual_cost, memo, completed_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	ON CONFLICT (id) DO UPDATE SET
		task_id = EXCLUDED.task_id, category_id = EXCLUDED.category_id, phase_id = EXCLUDED.phase_id,
		name = EXCLUDED.name, description = EXCLUDED.description, status = EXCLUDED.status,
		recommended_timing = EXCLUDED.recommended_timing, months_before = EXCLUDED.months_before,
		calculated_deadline = EXCLUDED.calculated_deadline, subtasks = EXCLUDED.subtasks, notes = EXCLUDED.notes,
		budget_estimate_min = EXCLUDED.budget_estimate_min, budget_estimate_max = EXCLUDED.budget_estimate_max,
		actual_cost = EXCLUDED.actual_cost, memo = EXCLUDED.memo,
		completed_at = EXCLUDED.completed_at, updated_at = EXCLUDED.updated_at
	WHERE weddingplan_tasks.user_id = EXCLUDED.user_id`

// UpsertTask inserts the task or overwrites the whole row, so a reset in
// another language replaces the template text too. A row owned by another
// user is left untouched.
func (r *Repository) UpsertTask(ctx context.Context, userID string, t models.Task) error {
	subtasks, err := jsonArray(t.Subtasks)
	if err != nil {
		return err
	}
	notes, err := jsonArray(t.Notes)
	if err != nil {
		return err
	}
	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx, upsertTaskSQL,
		t.ID, userID, t.TaskID, string(t.CategoryID), string(t.PhaseID), t.Name, t.Description,
		string(t.Status), t.RecommendedTiming, t.MonthsBefore, dates.Nullable(t.CalculatedDeadline), subtasks, notes,
		t.BudgetEstimateMin, t.BudgetEstimateMax, nullInt64(t.ActualCost), t.Memo, nullTime(t.CompletedAt), updatedAt)
	if err != nil {
		logger.Error(ctx, "Repository UpsertTask failed", "error", err, "id", t.ID)
		return err
	}
	return nil
}

// jsonArray encodes a slice for a JSONB column, writing [] for nil.
func jsonArray[T any](v []T) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
