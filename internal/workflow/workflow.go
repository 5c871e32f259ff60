package workflow

import (
	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

// Actor is the verified identity a mutation runs as. It is re-derived from
// the users table on every request; nothing here comes from the client.
type Actor struct {
	UserID    int64
	Role      domain.Role
	CompanyID int64
}

// canManageGroup is the manager-ownership rule shared by both services:
// a group is managed by its assigned manager, and by the company owner for
// any group inside the company.
func canManageGroup(actor Actor, group *domain.Group) bool {
	if group.CompanyID != actor.CompanyID {
		return false
	}
	if actor.Role == domain.RoleOwner {
		return true
	}
	return actor.Role == domain.RoleManager && group.ManagerID == actor.UserID
}
