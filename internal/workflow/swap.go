package workflow

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
	"github.com/crewshift-dev/crewshift/backend/internal/views"
)

// SwapStore is the slice of the repository the swap engine needs. The two
// conditional updates (SetSwapStatus, ClaimSwap) report whether any row was
// affected; that row count is the engine's only concurrency primitive.
type SwapStore interface {
	GetShiftByID(id int64) (*domain.Shift, error)
	GetScheduleByID(id int64) (*domain.Schedule, error)
	GetGroupByID(id int64) (*domain.Group, error)
	GetUserByID(id int64) (*domain.User, error)
	IsGroupMember(groupID, userID int64) (bool, error)

	GetSwapByID(id int64) (*domain.ShiftSwap, error)
	GetActiveSwapByShiftID(shiftID int64) (*domain.ShiftSwap, error)
	CreateSwap(swap *domain.ShiftSwap) error
	SetSwapStatus(id int64, expected, next domain.SwapStatus) (bool, error)
	ClaimSwap(id, claimantID int64) (bool, error)
	ApproveSwapAndReassignShift(swapID, shiftID, newAssignee, approvedBy int64, respondedAt time.Time) (bool, error)
	RejectSwapByManager(swapID, managerID int64, notes string, respondedAt time.Time) (bool, error)
}

// SwapService is the state machine moving a shift between owners: direct
// hand-off or public claim, then manager resolution.
type SwapService struct {
	store SwapStore
	views views.Invalidator

	// now is swapped out in tests to pin deadline math.
	now func() time.Time
}

func NewSwapService(store SwapStore, inv views.Invalidator) *SwapService {
	return &SwapService{
		store: store,
		views: inv,
		now:   time.Now,
	}
}

func (s *SwapService) Create(ctx context.Context, actor Actor, shiftID int64, swapType domain.SwapType, toUserID *int64) (*domain.ShiftSwap, error) {
	shift, err := s.store.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Only the current assignee may offer the shift. Anyone else is told the
	// shift does not exist.
	if shift.AssignedTo != actor.UserID {
		return nil, ErrNotFound
	}

	group, err := s.store.GetGroupByID(shift.GroupID)
	if err != nil {
		return nil, err
	}
	if group.CompanyID != actor.CompanyID {
		return nil, ErrNotFound
	}

	// Draft schedules are not employee-visible, so their shifts cannot be
	// offered yet.
	schedule, err := s.store.GetScheduleByID(shift.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.ScheduleStatusPublished {
		return nil, ErrNotFound
	}

	deadline, err := domain.SwapDeadline(shift.Date, shift.StartTime)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(deadline) {
		return nil, ErrDeadlineExpired
	}

	// Single-active-swap invariant, checked before insert. The check and the
	// insert are not one atomic unit, so two concurrent creates can slip
	// through; the claim path stays safe regardless.
	_, err = s.store.GetActiveSwapByShiftID(shift.ID)
	switch {
	case err == nil:
		return nil, ErrSwapExists
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, err
	}

	swap := &domain.ShiftSwap{
		ShiftID:     &shift.ID,
		CompanyID:   group.CompanyID,
		FromUserID:  actor.UserID,
		Type:        swapType,
		Status:      domain.SwapStatusPendingEmployee,
		Deadline:    deadline,
		RequestedAt: s.now(),
	}

	switch swapType {
	case domain.SwapTypeDirect:
		if toUserID == nil || *toUserID == actor.UserID {
			return nil, ErrNotFound
		}
		recipient, err := s.store.GetUserByID(*toUserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if !recipient.IsActive || recipient.CompanyID != actor.CompanyID {
			return nil, ErrNotFound
		}
		isMember, err := s.store.IsGroupMember(shift.GroupID, recipient.ID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrNotFound
		}
		swap.ToUserID = &recipient.ID
	case domain.SwapTypePublic:
		// Posted to the group board; no named recipient.
	default:
		return nil, ErrNotFound
	}

	if err := s.store.CreateSwap(swap); err != nil {
		return nil, err
	}

	if err := s.invalidateSwapViews(ctx, swap.CompanyID); err != nil {
		return nil, err
	}

	return swap, nil
}

// recipientSwap loads a swap addressed to the actor, for accept/decline.
func (s *SwapService) recipientSwap(actor Actor, swapID int64) (*domain.ShiftSwap, error) {
	swap, err := s.store.GetSwapByID(swapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if swap.CompanyID != actor.CompanyID {
		return nil, ErrNotFound
	}
	if swap.Type != domain.SwapTypeDirect || swap.ToUserID == nil || *swap.ToUserID != actor.UserID {
		return nil, ErrNotFound
	}
	// A request past its deadline reads as expired on every surface, so the
	// recipient cannot act on it either.
	if swap.EffectiveStatus(s.now()) == domain.SwapStatusExpired {
		return nil, ErrSwapNotPending
	}
	return swap, nil
}

func (s *SwapService) Accept(ctx context.Context, actor Actor, swapID int64) error {
	swap, err := s.recipientSwap(actor, swapID)
	if err != nil {
		return err
	}

	ok, err := s.store.SetSwapStatus(swap.ID, domain.SwapStatusPendingEmployee, domain.SwapStatusAcceptedByEmployee)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSwapNotPending
	}

	return s.invalidateSwapViews(ctx, swap.CompanyID)
}

func (s *SwapService) Decline(ctx context.Context, actor Actor, swapID int64) error {
	swap, err := s.recipientSwap(actor, swapID)
	if err != nil {
		return err
	}

	ok, err := s.store.SetSwapStatus(swap.ID, domain.SwapStatusPendingEmployee, domain.SwapStatusRejectedByEmployee)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSwapNotPending
	}

	return s.invalidateSwapViews(ctx, swap.CompanyID)
}

func (s *SwapService) Cancel(ctx context.Context, actor Actor, swapID int64) error {
	swap, err := s.store.GetSwapByID(swapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if swap.CompanyID != actor.CompanyID || swap.FromUserID != actor.UserID {
		return ErrNotFound
	}

	ok, err := s.store.SetSwapStatus(swap.ID, domain.SwapStatusPendingEmployee, domain.SwapStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSwapNotPending
	}

	return s.invalidateSwapViews(ctx, swap.CompanyID)
}

// Claim takes a public swap off the board. The read-time checks are a
// fast path only: the conditional update's affected-row count decides the
// race, and exactly one concurrent claimant wins.
func (s *SwapService) Claim(ctx context.Context, actor Actor, swapID int64) error {
	swap, err := s.store.GetSwapByID(swapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if swap.CompanyID != actor.CompanyID || swap.Type != domain.SwapTypePublic {
		return ErrNotFound
	}
	if swap.FromUserID == actor.UserID {
		return ErrNotFound
	}
	if swap.ShiftID == nil {
		return ErrSwapUnavailable
	}

	shift, err := s.store.GetShiftByID(*swap.ShiftID)
	if err != nil {
		return err
	}
	isMember, err := s.store.IsGroupMember(shift.GroupID, actor.UserID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotFound
	}

	if swap.EffectiveStatus(s.now()) != domain.SwapStatusPendingEmployee || swap.AcceptedBy != nil {
		return ErrSwapUnavailable
	}

	ok, err := s.store.ClaimSwap(swap.ID, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSwapUnavailable
	}

	return s.invalidateSwapViews(ctx, swap.CompanyID)
}

// managedSwap loads a swap and verifies the actor manages the group of the
// shift it belongs to. Used by the two manager resolutions.
func (s *SwapService) managedSwap(actor Actor, swapID int64) (*domain.ShiftSwap, *domain.Shift, error) {
	swap, err := s.store.GetSwapByID(swapID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if swap.CompanyID != actor.CompanyID {
		return nil, nil, ErrNotFound
	}
	if swap.ShiftID == nil {
		return nil, nil, ErrNotFound
	}

	shift, err := s.store.GetShiftByID(*swap.ShiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	group, err := s.store.GetGroupByID(shift.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if !canManageGroup(actor, group) {
		return nil, nil, ErrNotFound
	}

	return swap, shift, nil
}

// Approve closes the swap and reassigns the shift as one unit: if the
// reassignment cannot happen, the swap must not read as approved.
func (s *SwapService) Approve(ctx context.Context, actor Actor, swapID int64) (*domain.ShiftSwap, error) {
	swap, shift, err := s.managedSwap(actor, swapID)
	if err != nil {
		return nil, err
	}

	if swap.Status != domain.SwapStatusAcceptedByEmployee {
		return nil, ErrSwapNotAccepted
	}

	newAssignee, ok := swap.NewAssignee()
	if !ok {
		return nil, ErrSwapNoAssignee
	}

	respondedAt := s.now()
	ok, err = s.store.ApproveSwapAndReassignShift(swap.ID, shift.ID, newAssignee, actor.UserID, respondedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSwapNotAccepted
	}

	swap.Status = domain.SwapStatusApproved
	swap.ApprovedBy = &actor.UserID
	swap.ManagerRespondedAt = &respondedAt

	err = s.views.Invalidate(ctx, swap.CompanyID,
		views.TopicManagerSwaps, views.TopicEmployeeSwaps,
		views.TopicManagerSchedule, views.TopicEmployeeSchedule,
		views.TopicEmployeeTeam, views.TopicManagerDashboard)
	if err != nil {
		return nil, err
	}

	return swap, nil
}

// Reject records the manager's decision and note; the shift stays with its
// current assignee.
func (s *SwapService) Reject(ctx context.Context, actor Actor, swapID int64, note string) (*domain.ShiftSwap, error) {
	swap, _, err := s.managedSwap(actor, swapID)
	if err != nil {
		return nil, err
	}

	if swap.Status != domain.SwapStatusAcceptedByEmployee {
		return nil, ErrSwapNotAccepted
	}

	respondedAt := s.now()
	ok, err := s.store.RejectSwapByManager(swap.ID, actor.UserID, note, respondedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSwapNotAccepted
	}

	swap.Status = domain.SwapStatusRejectedByManager
	swap.ApprovedBy = &actor.UserID
	swap.ManagerNotes = note
	swap.ManagerRespondedAt = &respondedAt

	if err := s.invalidateSwapViews(ctx, swap.CompanyID); err != nil {
		return nil, err
	}

	return swap, nil
}

func (s *SwapService) invalidateSwapViews(ctx context.Context, companyID int64) error {
	return s.views.Invalidate(ctx, companyID, views.TopicEmployeeSwaps, views.TopicManagerSwaps)
}
