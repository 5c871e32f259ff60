package domain

import "time"

type ShiftTemplate struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"groupID"`
	Name      string    `json:"name"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

type Shift struct {
	ID                 int64     `json:"id"`
	ScheduleID         int64     `json:"scheduleID"`
	GroupID            int64     `json:"groupID"`
	AssignedTo         int64     `json:"assignedTo"`
	Date               time.Time `json:"date"`
	StartTime          string    `json:"startTime"`
	EndTime            string    `json:"endTime"`
	ShiftTemplateID    *int64    `json:"shiftTemplateID"`
	IsManuallyAdjusted bool      `json:"isManuallyAdjusted"`
	ExtraHours         *float64  `json:"extraHours"`
	ExtraHoursNotes    string    `json:"extraHoursNotes"`
	Notes              string    `json:"notes"`
	CreatedBy          int64     `json:"createdBy"`
	ModifiedBy         int64     `json:"modifiedBy"`
	CreatedAt          time.Time `json:"createdAt"`
	Version            int32     `json:"-"`
}

// CopyForward returns a detached copy of the shift moved by the given number
// of days, keeping the assignee, template reference and time range but not the
// per-week annotations (extra hours, notes).
func (s *Shift) CopyForward(days int, createdBy int64) *Shift {
	return &Shift{
		GroupID:            s.GroupID,
		AssignedTo:         s.AssignedTo,
		Date:               s.Date.AddDate(0, 0, days),
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		ShiftTemplateID:    s.ShiftTemplateID,
		IsManuallyAdjusted: s.IsManuallyAdjusted,
		CreatedBy:          createdBy,
		ModifiedBy:         createdBy,
	}
}
