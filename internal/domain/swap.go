package domain

import (
	"fmt"
	"time"
)

type SwapType string

const (
	SwapTypeDirect SwapType = "direct"
	SwapTypePublic SwapType = "public"
)

type SwapStatus string

const (
	SwapStatusPendingEmployee    SwapStatus = "pending_employee"
	SwapStatusAcceptedByEmployee SwapStatus = "accepted_by_employee"
	SwapStatusRejectedByEmployee SwapStatus = "rejected_by_employee"
	SwapStatusCancelled          SwapStatus = "cancelled"
	SwapStatusExpired            SwapStatus = "expired"
	SwapStatusApproved           SwapStatus = "approved"
	SwapStatusRejectedByManager  SwapStatus = "rejected_by_manager"
)

// IsActive reports whether the status still blocks a new swap for the same
// shift. At most one active swap may exist per shift.
func (s SwapStatus) IsActive() bool {
	return s == SwapStatusPendingEmployee || s == SwapStatusAcceptedByEmployee
}

func (s SwapStatus) IsTerminal() bool {
	return !s.IsActive()
}

// SwapDeadlineLead is how long before the shift starts that swap requests
// close.
const SwapDeadlineLead = 8 * time.Hour

// SwapDeadline computes the request deadline for a shift: shift date plus
// start time minus the lead, interpreted on the server's local wall clock.
// Shifts carry no timezone, so the naive local reading must be kept as-is.
func SwapDeadline(date time.Time, startTime string) (time.Time, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(startTime, "%d:%d", &hh, &mm); err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", startTime, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return time.Time{}, fmt.Errorf("invalid start time %q", startTime)
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, time.Local)
	return start.Add(-SwapDeadlineLead), nil
}

// ShiftSwap keeps its row after the underlying shift is deleted (ShiftID goes
// nil then), so resolved history stays queryable.
type ShiftSwap struct {
	ID                 int64      `json:"id"`
	ShiftID            *int64     `json:"shiftID"`
	CompanyID          int64      `json:"companyID"`
	FromUserID         int64      `json:"fromUserID"`
	ToUserID           *int64     `json:"toUserID"`
	AcceptedBy         *int64     `json:"acceptedBy"`
	Type               SwapType   `json:"type"`
	Status             SwapStatus `json:"status"`
	Deadline           time.Time  `json:"deadline"`
	ApprovedBy         *int64     `json:"approvedBy"`
	ManagerNotes       string     `json:"managerNotes"`
	ManagerRespondedAt *time.Time `json:"managerRespondedAt"`
	RequestedAt        time.Time  `json:"requestedAt"`
}

// EffectiveStatus is the status as presented to callers. Nothing sweeps rows
// into expired; a pending request past its deadline reads as expired instead.
func (sw *ShiftSwap) EffectiveStatus(now time.Time) SwapStatus {
	if sw.Status == SwapStatusPendingEmployee && !now.Before(sw.Deadline) {
		return SwapStatusExpired
	}
	return sw.Status
}

// NewAssignee resolves who takes over the shift once a manager approves:
// the named colleague for direct swaps, the claimant for public ones.
func (sw *ShiftSwap) NewAssignee() (int64, bool) {
	switch sw.Type {
	case SwapTypeDirect:
		if sw.ToUserID != nil {
			return *sw.ToUserID, true
		}
	case SwapTypePublic:
		if sw.AcceptedBy != nil {
			return *sw.AcceptedBy, true
		}
	}
	return 0, false
}
