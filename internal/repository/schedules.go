package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
	"github.com/crewshift-dev/crewshift/backend/internal/workflow"
)

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	query := `
		SELECT company_id, group_id, manager_id, week_start_date, week_end_date, status, created_at, version
		FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	schedule := &domain.Schedule{
		ID: id,
	}

	dst := []any{&schedule.CompanyID, &schedule.GroupID, &schedule.ManagerID, &schedule.WeekStart, &schedule.WeekEnd, &schedule.Status, &schedule.CreatedAt, &schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (r *Repository) GetScheduleByGroupAndWeek(groupID int64, weekStart time.Time) (*domain.Schedule, error) {
	query := `
		SELECT id, company_id, manager_id, week_start_date, week_end_date, status, created_at, version
		FROM schedules WHERE group_id = $1 AND week_start_date = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	schedule := &domain.Schedule{
		GroupID: groupID,
	}

	dst := []any{&schedule.ID, &schedule.CompanyID, &schedule.ManagerID, &schedule.WeekStart, &schedule.WeekEnd, &schedule.Status, &schedule.CreatedAt, &schedule.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, groupID, weekStart).Scan(dst...); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (r *Repository) CreateSchedule(schedule *domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO schedules (company_id, group_id, manager_id, week_start_date, week_end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{schedule.CompanyID, schedule.GroupID, schedule.ManagerID, schedule.WeekStart, schedule.WeekEnd, schedule.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.Version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "schedules_group_id_week_start_date_key" {
			return workflow.ErrScheduleExists
		}
		return err
	}

	return nil
}

// CreateScheduleWithShifts inserts a schedule and its copied shifts as one
// transaction; copy-from-last-week must not leave a half-filled week behind.
func (r *Repository) CreateScheduleWithShifts(schedule *domain.Schedule, shifts []*domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO schedules (company_id, group_id, manager_id, week_start_date, week_end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{schedule.CompanyID, schedule.GroupID, schedule.ManagerID, schedule.WeekStart, schedule.WeekEnd, schedule.Status}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.Version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "schedules_group_id_week_start_date_key" {
			return workflow.ErrScheduleExists
		}
		return err
	}

	for _, shift := range shifts {
		query := `
			INSERT INTO shifts (
				schedule_id, group_id, assigned_to, date, start_time, end_time,
				shift_template_id, is_manually_adjusted, created_by, modified_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, version
		`

		shift.ScheduleID = schedule.ID
		args := []any{
			shift.ScheduleID,
			shift.GroupID,
			shift.AssignedTo,
			shift.Date,
			shift.StartTime,
			shift.EndTime,
			shift.ShiftTemplateID,
			shift.IsManuallyAdjusted,
			shift.CreatedBy,
			shift.ModifiedBy,
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// SetScheduleStatus flips the status only when the row still holds the
// expected one; the affected-row count reports whether this call won.
func (r *Repository) SetScheduleStatus(id int64, expected, next domain.ScheduleStatus) (bool, error) {
	query := `
		UPDATE schedules
		SET status = $1, version = version + 1
		WHERE id = $2 AND status = $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, next, id, expected)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
