package workflow

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
	"github.com/crewshift-dev/crewshift/backend/internal/views"
)

// fakeStore is an in-memory stand-in for the repository. The conditional
// updates take the mutex so that concurrent callers see the same
// won-or-lost semantics the SQL row counts provide.
type fakeStore struct {
	mu sync.Mutex

	users     map[int64]*domain.User
	groups    map[int64]*domain.Group
	members   map[int64]map[int64]bool
	schedules map[int64]*domain.Schedule
	shifts    map[int64]*domain.Shift
	templates map[int64]*domain.ShiftTemplate
	swaps     map[int64]*domain.ShiftSwap

	nextSwapID int64

	// reassignErr makes the approve transaction fail before any write.
	reassignErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[int64]*domain.User),
		groups:     make(map[int64]*domain.Group),
		members:    make(map[int64]map[int64]bool),
		schedules:  make(map[int64]*domain.Schedule),
		shifts:     make(map[int64]*domain.Shift),
		templates:  make(map[int64]*domain.ShiftTemplate),
		swaps:      make(map[int64]*domain.ShiftSwap),
		nextSwapID: 1000,
	}
}

func (f *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) GetGroupByID(id int64) (*domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group, ok := f.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return group, nil
}

func (f *fakeStore) IsGroupMember(groupID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[groupID][userID], nil
}

func (f *fakeStore) GetScheduleByID(id int64) (*domain.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	schedule, ok := f.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return schedule, nil
}

func (f *fakeStore) GetShiftByID(id int64) (*domain.Shift, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	shift, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return shift, nil
}

func (f *fakeStore) GetSwapByID(id int64) (*domain.ShiftSwap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	swap, ok := f.swaps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *swap
	return &copied, nil
}

func (f *fakeStore) GetActiveSwapByShiftID(shiftID int64) (*domain.ShiftSwap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, swap := range f.swaps {
		if swap.ShiftID != nil && *swap.ShiftID == shiftID && swap.Status.IsActive() {
			copied := *swap
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) CreateSwap(swap *domain.ShiftSwap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSwapID++
	swap.ID = f.nextSwapID
	stored := *swap
	f.swaps[swap.ID] = &stored
	return nil
}

func (f *fakeStore) SetSwapStatus(id int64, expected, next domain.SwapStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	swap, ok := f.swaps[id]
	if !ok || swap.Status != expected {
		return false, nil
	}
	swap.Status = next
	return true, nil
}

func (f *fakeStore) ClaimSwap(id, claimantID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	swap, ok := f.swaps[id]
	if !ok || swap.Status != domain.SwapStatusPendingEmployee || swap.Type != domain.SwapTypePublic || swap.AcceptedBy != nil {
		return false, nil
	}
	swap.AcceptedBy = &claimantID
	swap.Status = domain.SwapStatusAcceptedByEmployee
	return true, nil
}

func (f *fakeStore) ApproveSwapAndReassignShift(swapID, shiftID, newAssignee, approvedBy int64, respondedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reassignErr != nil {
		return false, f.reassignErr
	}
	swap, ok := f.swaps[swapID]
	if !ok || swap.Status != domain.SwapStatusAcceptedByEmployee {
		return false, nil
	}
	shift, ok := f.shifts[shiftID]
	if !ok {
		return false, nil
	}
	swap.Status = domain.SwapStatusApproved
	swap.ApprovedBy = &approvedBy
	swap.ManagerRespondedAt = &respondedAt
	shift.AssignedTo = newAssignee
	shift.ModifiedBy = approvedBy
	return true, nil
}

func (f *fakeStore) RejectSwapByManager(swapID, managerID int64, notes string, respondedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	swap, ok := f.swaps[swapID]
	if !ok || swap.Status != domain.SwapStatusAcceptedByEmployee {
		return false, nil
	}
	swap.Status = domain.SwapStatusRejectedByManager
	swap.ApprovedBy = &managerID
	swap.ManagerNotes = notes
	swap.ManagerRespondedAt = &respondedAt
	return true, nil
}

// Fixed cast of the test company:
//   - user 1: owner
//   - user 2: manager of group 10
//   - user 3: employee, group member, assigned to shift 100
//   - user 4: employee, group member
//   - user 5: employee, not a group member
//   - user 6: employee of another company
//
// Shift 100 is on 2024-03-10 at 09:00, so requests close at 01:00 that day.
// The clock is pinned two days earlier.
func newSwapFixture() (*fakeStore, *SwapService) {
	store := newFakeStore()

	store.users[1] = &domain.User{ID: 1, CompanyID: 1, Role: domain.RoleOwner, IsActive: true}
	store.users[2] = &domain.User{ID: 2, CompanyID: 1, Role: domain.RoleManager, IsActive: true}
	store.users[3] = &domain.User{ID: 3, CompanyID: 1, Role: domain.RoleEmployee, IsActive: true}
	store.users[4] = &domain.User{ID: 4, CompanyID: 1, Role: domain.RoleEmployee, IsActive: true}
	store.users[5] = &domain.User{ID: 5, CompanyID: 1, Role: domain.RoleEmployee, IsActive: true}
	store.users[6] = &domain.User{ID: 6, CompanyID: 2, Role: domain.RoleEmployee, IsActive: true}

	store.groups[10] = &domain.Group{ID: 10, CompanyID: 1, ManagerID: 2}
	store.members[10] = map[int64]bool{3: true, 4: true}

	store.schedules[200] = &domain.Schedule{ID: 200, CompanyID: 1, GroupID: 10, ManagerID: 2, Status: domain.ScheduleStatusPublished}
	store.shifts[100] = &domain.Shift{
		ID:         100,
		ScheduleID: 200,
		GroupID:    10,
		AssignedTo: 3,
		Date:       time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
		StartTime:  "09:00",
		EndTime:    "17:00",
	}

	service := NewSwapService(store, views.Noop{})
	service.now = func() time.Time {
		return time.Date(2024, 3, 8, 12, 0, 0, 0, time.Local)
	}

	return store, service
}

func actorFor(user *domain.User) Actor {
	return Actor{UserID: user.ID, Role: user.Role, CompanyID: user.CompanyID}
}

func TestSwapCreateDirect(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)

	assert.Equal(t, domain.SwapStatusPendingEmployee, swap.Status)
	assert.Equal(t, int64(3), swap.FromUserID)
	require.NotNil(t, swap.ToUserID)
	assert.Equal(t, colleague, *swap.ToUserID)
	assert.True(t, swap.Deadline.Equal(time.Date(2024, 3, 10, 1, 0, 0, 0, time.Local)))
}

func TestSwapCreateOnlyAssigneeMayOffer(t *testing.T) {
	store, service := newSwapFixture()

	_, err := service.Create(context.Background(), actorFor(store.users[4]), 100, domain.SwapTypePublic, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSwapCreateDeadlinePassed(t *testing.T) {
	store, service := newSwapFixture()
	service.now = func() time.Time {
		// Exactly at the deadline counts as missed.
		return time.Date(2024, 3, 10, 1, 0, 0, 0, time.Local)
	}

	_, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	assert.ErrorIs(t, err, ErrDeadlineExpired)
}

func TestSwapCreateSecondActiveSwapRejected(t *testing.T) {
	store, service := newSwapFixture()

	_, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	assert.ErrorIs(t, err, ErrSwapExists)
}

func TestSwapCreateAllowedAfterTerminalSwap(t *testing.T) {
	store, service := newSwapFixture()

	first, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)

	require.NoError(t, service.Cancel(context.Background(), actorFor(store.users[3]), first.ID))

	_, err = service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	assert.NoError(t, err)
}

func TestSwapCreateDirectRecipientValidation(t *testing.T) {
	self := int64(3)
	missing := int64(99)
	nonMember := int64(5)
	otherCompany := int64(6)
	inactive := int64(4)

	tests := []struct {
		name     string
		toUserID *int64
		setup    func(store *fakeStore)
	}{
		{name: "no recipient given", toUserID: nil},
		{name: "recipient is the requester", toUserID: &self},
		{name: "recipient does not exist", toUserID: &missing},
		{name: "recipient outside the group", toUserID: &nonMember},
		{name: "recipient in another company", toUserID: &otherCompany},
		{
			name:     "recipient deactivated",
			toUserID: &inactive,
			setup: func(store *fakeStore) {
				store.users[4].IsActive = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, service := newSwapFixture()
			if tt.setup != nil {
				tt.setup(store)
			}

			_, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, tt.toUserID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSwapCreateDraftScheduleHidden(t *testing.T) {
	store, service := newSwapFixture()
	store.schedules[200].Status = domain.ScheduleStatusDraft

	_, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSwapAcceptAndDecline(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)

	// Someone who is not the named recipient cannot see the request.
	err = service.Accept(context.Background(), actorFor(store.users[5]), swap.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, service.Accept(context.Background(), actorFor(store.users[4]), swap.ID))
	assert.Equal(t, domain.SwapStatusAcceptedByEmployee, store.swaps[swap.ID].Status)

	// A second accept finds the request no longer pending.
	err = service.Accept(context.Background(), actorFor(store.users[4]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapNotPending)

	err = service.Decline(context.Background(), actorFor(store.users[4]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapNotPending)
}

func TestSwapCancel(t *testing.T) {
	store, service := newSwapFixture()

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)

	err = service.Cancel(context.Background(), actorFor(store.users[4]), swap.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, service.Cancel(context.Background(), actorFor(store.users[3]), swap.ID))
	assert.Equal(t, domain.SwapStatusCancelled, store.swaps[swap.ID].Status)

	err = service.Cancel(context.Background(), actorFor(store.users[3]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapNotPending)
}

func TestSwapClaimGuards(t *testing.T) {
	store, service := newSwapFixture()

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)

	// The requester cannot claim their own offer.
	err = service.Claim(context.Background(), actorFor(store.users[3]), swap.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Nor can someone outside the group.
	err = service.Claim(context.Background(), actorFor(store.users[5]), swap.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSwapClaimExpired(t *testing.T) {
	store, service := newSwapFixture()

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)

	service.now = func() time.Time {
		return swap.Deadline.Add(time.Minute)
	}

	err = service.Claim(context.Background(), actorFor(store.users[4]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapUnavailable)
	assert.Nil(t, store.swaps[swap.ID].AcceptedBy)
}

func TestSwapAcceptExpired(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)

	service.now = func() time.Time {
		return swap.Deadline.Add(time.Hour)
	}
	require.Equal(t, domain.SwapStatusExpired, swap.EffectiveStatus(service.now()))

	err = service.Accept(context.Background(), actorFor(store.users[4]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapNotPending)

	err = service.Decline(context.Background(), actorFor(store.users[4]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapNotPending)

	// The shift must not change hands through an expired request.
	_, err = service.Approve(context.Background(), actorFor(store.users[2]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapNotAccepted)
	assert.Equal(t, int64(3), store.shifts[100].AssignedTo)
	assert.Equal(t, domain.SwapStatusPendingEmployee, store.swaps[swap.ID].Status)
}

func TestSwapClaimRaceHasExactlyOneWinner(t *testing.T) {
	store, service := newSwapFixture()
	store.members[10][5] = true

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)

	claimants := []int64{4, 5}
	results := make([]error, len(claimants))

	var wg sync.WaitGroup
	for i, claimant := range claimants {
		wg.Add(1)
		go func(i int, claimant int64) {
			defer wg.Done()
			results[i] = service.Claim(context.Background(), actorFor(store.users[claimant]), swap.ID)
		}(i, claimant)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSwapUnavailable)
		}
	}
	assert.Equal(t, 1, winners)

	stored := store.swaps[swap.ID]
	require.NotNil(t, stored.AcceptedBy)
	assert.Contains(t, claimants, *stored.AcceptedBy)
	assert.Equal(t, domain.SwapStatusAcceptedByEmployee, stored.Status)
}

func TestSwapApproveDirect(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)
	require.NoError(t, service.Accept(context.Background(), actorFor(store.users[4]), swap.ID))

	approved, err := service.Approve(context.Background(), actorFor(store.users[2]), swap.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.SwapStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, int64(2), *approved.ApprovedBy)
	assert.NotNil(t, approved.ManagerRespondedAt)

	assert.Equal(t, colleague, store.shifts[100].AssignedTo)
	assert.Equal(t, int64(2), store.shifts[100].ModifiedBy)
}

func TestSwapApprovePublicGoesToClaimant(t *testing.T) {
	store, service := newSwapFixture()

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)
	require.NoError(t, service.Claim(context.Background(), actorFor(store.users[4]), swap.ID))

	_, err = service.Approve(context.Background(), actorFor(store.users[2]), swap.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(4), store.shifts[100].AssignedTo)
}

func TestSwapApproveRequiresAcceptance(t *testing.T) {
	store, service := newSwapFixture()

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypePublic, nil)
	require.NoError(t, err)

	_, err = service.Approve(context.Background(), actorFor(store.users[2]), swap.ID)
	assert.ErrorIs(t, err, ErrSwapNotAccepted)
}

func TestSwapApproveManagerOnly(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)
	require.NoError(t, service.Accept(context.Background(), actorFor(store.users[4]), swap.ID))

	// An employee cannot resolve a swap.
	_, err = service.Approve(context.Background(), actorFor(store.users[5]), swap.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// A manager of a different group cannot either.
	otherManager := &domain.User{ID: 7, CompanyID: 1, Role: domain.RoleManager, IsActive: true}
	store.users[7] = otherManager
	_, err = service.Approve(context.Background(), actorFor(otherManager), swap.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner can resolve any swap in the company.
	_, err = service.Approve(context.Background(), actorFor(store.users[1]), swap.ID)
	assert.NoError(t, err)
}

func TestSwapApproveFailureLeavesSwapUntouched(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)
	require.NoError(t, service.Accept(context.Background(), actorFor(store.users[4]), swap.ID))

	store.reassignErr = errors.New("connection reset")

	_, err = service.Approve(context.Background(), actorFor(store.users[2]), swap.ID)
	require.Error(t, err)

	// The swap must not read as approved when the shift was not reassigned.
	assert.Equal(t, domain.SwapStatusAcceptedByEmployee, store.swaps[swap.ID].Status)
	assert.Equal(t, int64(3), store.shifts[100].AssignedTo)
}

func TestSwapReject(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)
	require.NoError(t, service.Accept(context.Background(), actorFor(store.users[4]), swap.ID))

	note := "Both of you are needed on Sunday."
	rejected, err := service.Reject(context.Background(), actorFor(store.users[2]), swap.ID, note)
	require.NoError(t, err)

	assert.Equal(t, domain.SwapStatusRejectedByManager, rejected.Status)
	assert.Equal(t, note, rejected.ManagerNotes)
	assert.Equal(t, note, store.swaps[swap.ID].ManagerNotes)

	// The shift stays where it was.
	assert.Equal(t, int64(3), store.shifts[100].AssignedTo)
}

func TestSwapRejectRequiresAcceptance(t *testing.T) {
	store, service := newSwapFixture()
	colleague := int64(4)

	swap, err := service.Create(context.Background(), actorFor(store.users[3]), 100, domain.SwapTypeDirect, &colleague)
	require.NoError(t, err)

	_, err = service.Reject(context.Background(), actorFor(store.users[2]), swap.ID, "no")
	assert.ErrorIs(t, err, ErrSwapNotAccepted)
}
