package workflow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
	"github.com/crewshift-dev/crewshift/backend/internal/views"
)

// ScheduleStore is the slice of the repository the schedule lifecycle needs.
type ScheduleStore interface {
	GetGroupByID(id int64) (*domain.Group, error)
	IsGroupMember(groupID, userID int64) (bool, error)

	GetScheduleByID(id int64) (*domain.Schedule, error)
	GetScheduleByGroupAndWeek(groupID int64, weekStart time.Time) (*domain.Schedule, error)
	CreateSchedule(schedule *domain.Schedule) error
	CreateScheduleWithShifts(schedule *domain.Schedule, shifts []*domain.Shift) error
	SetScheduleStatus(id int64, expected, next domain.ScheduleStatus) (bool, error)

	GetShiftByID(id int64) (*domain.Shift, error)
	GetShiftsByScheduleID(scheduleID int64) ([]*domain.Shift, error)
	CreateShift(shift *domain.Shift) error
	ApplyTemplateToShift(shiftID int64, template *domain.ShiftTemplate, modifiedBy int64) error
	SetShiftNote(shiftID int64, note string, modifiedBy int64) error
	SetShiftExtraHours(shiftID int64, hours *float64, notes string, modifiedBy int64) error
	RecordShiftModifier(shiftID, modifiedBy int64) error
	DeleteShift(shiftID int64) error
	CancelActiveSwapsForShift(shiftID int64) error

	GetShiftTemplateByID(id int64) (*domain.ShiftTemplate, error)
}

// ScheduleService owns the draft -> published lifecycle of weekly schedules
// and every manager-side shift mutation attached to it.
type ScheduleService struct {
	store ScheduleStore
	views views.Invalidator
}

func NewScheduleService(store ScheduleStore, inv views.Invalidator) *ScheduleService {
	return &ScheduleService{
		store: store,
		views: inv,
	}
}

// managedGroup loads a group and verifies the actor manages it. Missing rows
// and foreign groups both come back as ErrNotFound.
func (s *ScheduleService) managedGroup(actor Actor, groupID int64) (*domain.Group, error) {
	group, err := s.store.GetGroupByID(groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !canManageGroup(actor, group) {
		return nil, ErrNotFound
	}
	return group, nil
}

// managedShift loads a shift and verifies the actor manages its group.
func (s *ScheduleService) managedShift(actor Actor, shiftID int64) (*domain.Shift, error) {
	shift, err := s.store.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.managedGroup(actor, shift.GroupID); err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *ScheduleService) Create(ctx context.Context, actor Actor, groupID int64, weekStart time.Time) (*domain.Schedule, error) {
	group, err := s.managedGroup(actor, groupID)
	if err != nil {
		return nil, err
	}

	schedule := &domain.Schedule{
		CompanyID: group.CompanyID,
		GroupID:   group.ID,
		ManagerID: group.ManagerID,
		WeekStart: weekStart,
		WeekEnd:   domain.WeekEndFor(weekStart),
		Status:    domain.ScheduleStatusDraft,
	}

	// One schedule per (group, week); the store turns the unique violation
	// into ErrScheduleExists.
	if err := s.store.CreateSchedule(schedule); err != nil {
		return nil, err
	}

	err = s.views.Invalidate(ctx, group.CompanyID,
		views.TopicManagerSchedule, views.TopicManagerDashboard, views.TopicGroupDetail)
	if err != nil {
		return nil, err
	}

	return schedule, nil
}

func (s *ScheduleService) CopyFromLastWeek(ctx context.Context, actor Actor, groupID int64, weekStart time.Time) (*domain.Schedule, error) {
	group, err := s.managedGroup(actor, groupID)
	if err != nil {
		return nil, err
	}

	previous, err := s.store.GetScheduleByGroupAndWeek(groupID, weekStart.AddDate(0, 0, -7))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreviousWeekNotFound
		}
		return nil, err
	}

	previousShifts, err := s.store.GetShiftsByScheduleID(previous.ID)
	if err != nil {
		return nil, err
	}

	schedule := &domain.Schedule{
		CompanyID: group.CompanyID,
		GroupID:   group.ID,
		ManagerID: group.ManagerID,
		WeekStart: weekStart,
		WeekEnd:   domain.WeekEndFor(weekStart),
		Status:    domain.ScheduleStatusDraft,
	}

	shifts := make([]*domain.Shift, len(previousShifts))
	for i, shift := range previousShifts {
		shifts[i] = shift.CopyForward(7, actor.UserID)
	}

	if err := s.store.CreateScheduleWithShifts(schedule, shifts); err != nil {
		return nil, err
	}

	err = s.views.Invalidate(ctx, group.CompanyID,
		views.TopicManagerSchedule, views.TopicEmployeeSchedule,
		views.TopicManagerDashboard, views.TopicGroupDetail)
	if err != nil {
		return nil, err
	}

	return schedule, nil
}

func (s *ScheduleService) Publish(ctx context.Context, actor Actor, scheduleID int64) error {
	schedule, err := s.store.GetScheduleByID(scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.managedGroup(actor, schedule.GroupID); err != nil {
		return err
	}

	if schedule.Status != domain.ScheduleStatusDraft {
		return ErrScheduleNotDraft
	}

	// The conditional update decides: a concurrent publish that got there
	// first makes this one fail the same way as the read-time check.
	ok, err := s.store.SetScheduleStatus(scheduleID, domain.ScheduleStatusDraft, domain.ScheduleStatusPublished)
	if err != nil {
		return err
	}
	if !ok {
		return ErrScheduleNotDraft
	}

	return s.views.Invalidate(ctx, schedule.CompanyID,
		views.TopicManagerSchedule, views.TopicEmployeeSchedule, views.TopicEmployeeTeam,
		views.TopicManagerDashboard, views.TopicGroupDetail)
}

func (s *ScheduleService) AddShift(ctx context.Context, actor Actor, scheduleID, userID int64, date time.Time, templateID int64) (*domain.Shift, error) {
	schedule, err := s.store.GetScheduleByID(scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.managedGroup(actor, schedule.GroupID); err != nil {
		return nil, err
	}

	isMember, err := s.store.IsGroupMember(schedule.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotFound
	}

	template, err := s.store.GetShiftTemplateByID(templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if template.GroupID != schedule.GroupID {
		return nil, ErrNotFound
	}

	shift := &domain.Shift{
		ScheduleID:      schedule.ID,
		GroupID:         schedule.GroupID,
		AssignedTo:      userID,
		Date:            date,
		StartTime:       template.StartTime,
		EndTime:         template.EndTime,
		ShiftTemplateID: &template.ID,
		CreatedBy:       actor.UserID,
		ModifiedBy:      actor.UserID,
	}

	if err := s.store.CreateShift(shift); err != nil {
		return nil, err
	}

	if err := s.invalidateShiftViews(ctx, schedule.CompanyID); err != nil {
		return nil, err
	}

	return shift, nil
}

// UpdateShift reverts a shift to a template: the time range is reset to the
// template's current one and the manual-adjustment flag is cleared. Nothing
// else on the row is touched.
func (s *ScheduleService) UpdateShift(ctx context.Context, actor Actor, shiftID, templateID int64) error {
	shift, err := s.managedShift(actor, shiftID)
	if err != nil {
		return err
	}

	template, err := s.store.GetShiftTemplateByID(templateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if template.GroupID != shift.GroupID {
		return ErrNotFound
	}

	if err := s.store.ApplyTemplateToShift(shift.ID, template, actor.UserID); err != nil {
		return err
	}

	return s.invalidateShiftViews(ctx, actor.CompanyID)
}

func (s *ScheduleService) RemoveShift(ctx context.Context, actor Actor, shiftID int64) error {
	shift, err := s.managedShift(actor, shiftID)
	if err != nil {
		return err
	}

	// Attribute the removal before the row disappears, so audit triggers see
	// who did it.
	if err := s.store.RecordShiftModifier(shift.ID, actor.UserID); err != nil {
		return err
	}

	// A shift that no longer exists cannot be handed off.
	if err := s.store.CancelActiveSwapsForShift(shift.ID); err != nil {
		return err
	}

	if err := s.store.DeleteShift(shift.ID); err != nil {
		return err
	}

	return s.invalidateShiftViews(ctx, actor.CompanyID)
}

func (s *ScheduleService) AddNote(ctx context.Context, actor Actor, shiftID int64, note string) error {
	shift, err := s.managedShift(actor, shiftID)
	if err != nil {
		return err
	}

	if err := s.store.SetShiftNote(shift.ID, note, actor.UserID); err != nil {
		return err
	}

	return s.invalidateShiftViews(ctx, actor.CompanyID)
}

func (s *ScheduleService) SetExtraHours(ctx context.Context, actor Actor, shiftID int64, hours *float64, notes string) error {
	shift, err := s.managedShift(actor, shiftID)
	if err != nil {
		return err
	}

	if err := s.store.SetShiftExtraHours(shift.ID, hours, notes, actor.UserID); err != nil {
		return err
	}

	return s.invalidateShiftViews(ctx, actor.CompanyID)
}

func (s *ScheduleService) invalidateShiftViews(ctx context.Context, companyID int64) error {
	return s.views.Invalidate(ctx, companyID,
		views.TopicManagerSchedule, views.TopicEmployeeSchedule, views.TopicEmployeeTeam)
}
