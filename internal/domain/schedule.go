package domain

import "time"

type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
)

type Schedule struct {
	ID        int64          `json:"id"`
	CompanyID int64          `json:"companyID"`
	GroupID   int64          `json:"groupID"`
	ManagerID int64          `json:"managerID"`
	WeekStart time.Time      `json:"weekStart"`
	WeekEnd   time.Time      `json:"weekEnd"`
	Status    ScheduleStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Version   int32          `json:"-"`
}

// WeekEnd is always derived from the week start; a schedule covers 7 days.
func WeekEndFor(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}
