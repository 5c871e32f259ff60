package repository

import (
	"context"
	"time"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `
		SELECT
			schedule_id, group_id, assigned_to, date, start_time, end_time,
			shift_template_id, is_manually_adjusted, extra_hours, extra_hours_notes,
			notes, created_by, modified_by, created_at, version
		FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.Shift{
		ID: id,
	}

	dst := []any{
		&shift.ScheduleID,
		&shift.GroupID,
		&shift.AssignedTo,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.ShiftTemplateID,
		&shift.IsManuallyAdjusted,
		&shift.ExtraHours,
		&shift.ExtraHoursNotes,
		&shift.Notes,
		&shift.CreatedBy,
		&shift.ModifiedBy,
		&shift.CreatedAt,
		&shift.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

func (r *Repository) GetShiftsByScheduleID(scheduleID int64) ([]*domain.Shift, error) {
	query := `
		SELECT
			id, group_id, assigned_to, date, start_time, end_time,
			shift_template_id, is_manually_adjusted, extra_hours, extra_hours_notes,
			notes, created_by, modified_by, created_at, version
		FROM shifts WHERE schedule_id = $1
		ORDER BY date, start_time, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{
			ScheduleID: scheduleID,
		}
		dst := []any{
			&shift.ID,
			&shift.GroupID,
			&shift.AssignedTo,
			&shift.Date,
			&shift.StartTime,
			&shift.EndTime,
			&shift.ShiftTemplateID,
			&shift.IsManuallyAdjusted,
			&shift.ExtraHours,
			&shift.ExtraHoursNotes,
			&shift.Notes,
			&shift.CreatedBy,
			&shift.ModifiedBy,
			&shift.CreatedAt,
			&shift.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetShiftsForUserWeek(userID int64, weekStart, weekEnd time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT
			s.id, s.schedule_id, s.group_id, s.date, s.start_time, s.end_time,
			s.shift_template_id, s.is_manually_adjusted, s.extra_hours, s.extra_hours_notes,
			s.notes, s.created_by, s.modified_by, s.created_at, s.version
		FROM shifts s
		JOIN schedules sc ON sc.id = s.schedule_id
		WHERE s.assigned_to = $1 AND s.date BETWEEN $2 AND $3 AND sc.status = $4
		ORDER BY s.date, s.start_time, s.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID, weekStart, weekEnd, domain.ScheduleStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{
			AssignedTo: userID,
		}
		dst := []any{
			&shift.ID,
			&shift.ScheduleID,
			&shift.GroupID,
			&shift.Date,
			&shift.StartTime,
			&shift.EndTime,
			&shift.ShiftTemplateID,
			&shift.IsManuallyAdjusted,
			&shift.ExtraHours,
			&shift.ExtraHoursNotes,
			&shift.Notes,
			&shift.CreatedBy,
			&shift.ModifiedBy,
			&shift.CreatedAt,
			&shift.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) CreateShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shifts (
			schedule_id, group_id, assigned_to, date, start_time, end_time,
			shift_template_id, is_manually_adjusted, created_by, modified_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`

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
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

// ApplyTemplateToShift resets the time range to the template's current one
// and clears the manual-adjustment flag. Other columns stay untouched.
func (r *Repository) ApplyTemplateToShift(shiftID int64, template *domain.ShiftTemplate, modifiedBy int64) error {
	query := `
		UPDATE shifts
		SET
			start_time = $1,
			end_time = $2,
			shift_template_id = $3,
			is_manually_adjusted = FALSE,
			modified_by = $4,
			version = version + 1
		WHERE id = $5
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{template.StartTime, template.EndTime, template.ID, modifiedBy, shiftID}
	if _, err := r.dbpool.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) SetShiftNote(shiftID int64, note string, modifiedBy int64) error {
	query := `
		UPDATE shifts
		SET notes = $1, modified_by = $2, version = version + 1
		WHERE id = $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, note, modifiedBy, shiftID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) SetShiftExtraHours(shiftID int64, hours *float64, notes string, modifiedBy int64) error {
	query := `
		UPDATE shifts
		SET extra_hours = $1, extra_hours_notes = $2, modified_by = $3, version = version + 1
		WHERE id = $4
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, hours, notes, modifiedBy, shiftID); err != nil {
		return err
	}

	return nil
}

// RecordShiftModifier stamps the last modifier without touching anything
// else, so a following DELETE can be attributed.
func (r *Repository) RecordShiftModifier(shiftID, modifiedBy int64) error {
	query := `
		UPDATE shifts
		SET modified_by = $1, version = version + 1
		WHERE id = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, modifiedBy, shiftID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteShift(id int64) error {
	query := `
		DELETE FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
