package domain

import "time"

type Group struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"companyID"`
	Name      string    `json:"name"`
	ManagerID int64     `json:"managerID"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
