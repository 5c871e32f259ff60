package repository

import (
	"context"
	"time"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

func (r *Repository) GetShiftTemplateByID(id int64) (*domain.ShiftTemplate, error) {
	query := `
		SELECT group_id, name, start_time, end_time, color, created_at, version
		FROM shift_templates WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	template := &domain.ShiftTemplate{
		ID: id,
	}

	dst := []any{&template.GroupID, &template.Name, &template.StartTime, &template.EndTime, &template.Color, &template.CreatedAt, &template.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return template, nil
}

func (r *Repository) GetShiftTemplatesByGroup(groupID int64) ([]*domain.ShiftTemplate, error) {
	query := `
		SELECT id, name, start_time, end_time, color, created_at, version
		FROM shift_templates WHERE group_id = $1
		ORDER BY start_time, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.ShiftTemplate, 0)
	for rows.Next() {
		template := &domain.ShiftTemplate{
			GroupID: groupID,
		}
		dst := []any{&template.ID, &template.Name, &template.StartTime, &template.EndTime, &template.Color, &template.CreatedAt, &template.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) CreateShiftTemplate(template *domain.ShiftTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shift_templates (group_id, name, start_time, end_time, color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{template.GroupID, template.Name, template.StartTime, template.EndTime, template.Color}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&template.ID, &template.CreatedAt, &template.Version); err != nil {
		return err
	}

	return nil
}
