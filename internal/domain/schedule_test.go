package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekEndFor(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)
	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	assert.True(t, WeekEndFor(monday).Equal(sunday))
}

func TestShiftCopyForward(t *testing.T) {
	templateID := int64(42)
	extraHours := 1.5

	original := &Shift{
		ID:                 100,
		ScheduleID:         200,
		GroupID:            10,
		AssignedTo:         3,
		Date:               time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local),
		StartTime:          "09:00",
		EndTime:            "17:00",
		ShiftTemplateID:    &templateID,
		IsManuallyAdjusted: true,
		ExtraHours:         &extraHours,
		ExtraHoursNotes:    "covered a late delivery",
		Notes:              "bring keys",
		CreatedBy:          2,
		ModifiedBy:         2,
		Version:            3,
	}

	copied := original.CopyForward(7, 5)

	assert.Zero(t, copied.ID)
	assert.Zero(t, copied.ScheduleID)
	assert.Equal(t, original.GroupID, copied.GroupID)
	assert.Equal(t, original.AssignedTo, copied.AssignedTo)
	assert.True(t, copied.Date.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, original.StartTime, copied.StartTime)
	assert.Equal(t, original.EndTime, copied.EndTime)
	assert.Equal(t, original.ShiftTemplateID, copied.ShiftTemplateID)
	assert.Equal(t, original.IsManuallyAdjusted, copied.IsManuallyAdjusted)
	assert.Equal(t, int64(5), copied.CreatedBy)
	assert.Equal(t, int64(5), copied.ModifiedBy)

	// Per-week annotations do not travel to the next week.
	assert.Nil(t, copied.ExtraHours)
	assert.Empty(t, copied.ExtraHoursNotes)
	assert.Empty(t, copied.Notes)
}
