package repository

import (
	"context"

	"weddingplan/internal/models"
	"weddingplan/pkg/logger"
)

const listPrenupSQL = `SELECT id, template_id, section_id, label, description, completed, notes
	FROM weddingplan_prenup_items WHERE user_id = $1
	ORDER BY array_position(ARRAY['assets','debts','income','property','other'], section_id), id`

func (r *Repository) ListPrenupItems(ctx context.Context, userID string) ([]models.PrenupItem, error) {
	rows, err := r.db.QueryContext(ctx, listPrenupSQL, userID)
	if err != nil {
		logger.Error(ctx, "Repository ListPrenupItems failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	items := []models.PrenupItem{}
	for rows.Next() {
		var it models.PrenupItem
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.SectionID, &it.Label, &it.Description, &it.Completed, &it.Notes); err != nil {
			logger.Error(ctx, "Repository scan prenup item failed", "error", err)
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const upsertPrenupSQL = `INSERT INTO weddingplan_prenup_items (id, user_id, template_id, section_id, label, description,
	completed, notes, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	ON CONFLICT (id) DO UPDATE SET
		template_id = EXCLUDED.template_id, section_id = EXCLUDED.section_id, label = EXCLUDED.label,
		description = EXCLUDED.description, completed = EXCLUDED.completed, notes = EXCLUDED.notes,
		updated_at = now()
	WHERE weddingplan_prenup_items.user_id = EXCLUDED.user_id`

// UpsertPrenupItem inserts the item or overwrites the whole row.
func (r *Repository) UpsertPrenupItem(ctx context.Context, userID string, it models.PrenupItem) error {
	_, err := r.db.ExecContext(ctx, upsertPrenupSQL,
		it.ID, userID, it.TemplateID, string(it.SectionID), it.Label, it.Description, it.Completed, it.Notes)
	if err != nil {
		logger.Error(ctx, "Repository UpsertPrenupItem failed", "error", err, "id", it.ID)
		return err
	}
	return nil
}
