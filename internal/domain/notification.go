package domain

type NotificationMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type SwapRequestedNotificationData struct {
	RecipientName string `json:"recipientName"`
	RequesterName string `json:"requesterName"`
	ShiftDate     string `json:"shiftDate"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

type SwapResolvedNotificationData struct {
	RequesterName string `json:"requesterName"`
	ShiftDate     string `json:"shiftDate"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	ManagerNotes  string `json:"managerNotes"`
}

type SchedulePublishedNotificationData struct {
	ManagerName string `json:"managerName"`
	GroupName   string `json:"groupName"`
	WeekStart   string `json:"weekStart"`
}
