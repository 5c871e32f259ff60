package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapDeadline(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		startTime string
		want      time.Time
		wantErr   bool
	}{
		{
			name:      "morning shift closes one in the morning",
			date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
			startTime: "09:00",
			want:      time.Date(2024, 3, 10, 1, 0, 0, 0, time.Local),
		},
		{
			name:      "early shift closes the evening before",
			date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
			startTime: "06:30",
			want:      time.Date(2024, 3, 9, 22, 30, 0, 0, time.Local),
		},
		{
			name:      "seconds in the start time are ignored",
			date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
			startTime: "16:10:00",
			want:      time.Date(2024, 3, 10, 8, 10, 0, 0, time.Local),
		},
		{
			name:      "garbage start time",
			date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
			startTime: "not-a-time",
			wantErr:   true,
		},
		{
			name:      "hour out of range",
			date:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local),
			startTime: "25:00",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SwapDeadline(tt.date, tt.startTime)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestSwapStatusIsActive(t *testing.T) {
	active := []SwapStatus{SwapStatusPendingEmployee, SwapStatusAcceptedByEmployee}
	terminal := []SwapStatus{
		SwapStatusRejectedByEmployee,
		SwapStatusCancelled,
		SwapStatusExpired,
		SwapStatusApproved,
		SwapStatusRejectedByManager,
	}

	for _, status := range active {
		assert.True(t, status.IsActive(), "%s should be active", status)
		assert.False(t, status.IsTerminal(), "%s should not be terminal", status)
	}
	for _, status := range terminal {
		assert.False(t, status.IsActive(), "%s should not be active", status)
		assert.True(t, status.IsTerminal(), "%s should be terminal", status)
	}
}

func TestEffectiveStatus(t *testing.T) {
	deadline := time.Date(2024, 3, 10, 1, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		status SwapStatus
		now    time.Time
		want   SwapStatus
	}{
		{
			name:   "pending before deadline stays pending",
			status: SwapStatusPendingEmployee,
			now:    deadline.Add(-time.Minute),
			want:   SwapStatusPendingEmployee,
		},
		{
			name:   "pending at the deadline reads expired",
			status: SwapStatusPendingEmployee,
			now:    deadline,
			want:   SwapStatusExpired,
		},
		{
			name:   "pending after deadline reads expired",
			status: SwapStatusPendingEmployee,
			now:    deadline.Add(time.Hour),
			want:   SwapStatusExpired,
		},
		{
			name:   "accepted is not expired by the deadline",
			status: SwapStatusAcceptedByEmployee,
			now:    deadline.Add(time.Hour),
			want:   SwapStatusAcceptedByEmployee,
		},
		{
			name:   "approved stays approved",
			status: SwapStatusApproved,
			now:    deadline.Add(time.Hour),
			want:   SwapStatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			swap := &ShiftSwap{Status: tt.status, Deadline: deadline}
			assert.Equal(t, tt.want, swap.EffectiveStatus(tt.now))
		})
	}
}

func TestNewAssignee(t *testing.T) {
	colleague := int64(7)
	claimant := int64(9)

	direct := &ShiftSwap{Type: SwapTypeDirect, ToUserID: &colleague}
	got, ok := direct.NewAssignee()
	require.True(t, ok)
	assert.Equal(t, colleague, got)

	public := &ShiftSwap{Type: SwapTypePublic, AcceptedBy: &claimant}
	got, ok = public.NewAssignee()
	require.True(t, ok)
	assert.Equal(t, claimant, got)

	unclaimed := &ShiftSwap{Type: SwapTypePublic}
	_, ok = unclaimed.NewAssignee()
	assert.False(t, ok)

	directWithoutRecipient := &ShiftSwap{Type: SwapTypeDirect}
	_, ok = directWithoutRecipient.NewAssignee()
	assert.False(t, ok)
}
