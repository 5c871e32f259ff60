package seed

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewshift-dev/crewshift/backend/internal/config"
	"github.com/crewshift-dev/crewshift/backend/internal/domain"
	"github.com/crewshift-dev/crewshift/backend/internal/repository"
)

type seedUser struct {
	username string
	fullName string
	email    string
	role     domain.Role
}

type seedTemplate struct {
	name      string
	startTime string
	endTime   string
	color     string
}

// SeedDemoData fills an empty database with a demo company: an owner, two
// managers with a group each, a handful of employees, shift templates, a
// published schedule for last week and a draft for the current week.
func SeedDemoData(cfg *config.Config, repo *repository.Repository) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.User.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash seed password", slog.String("error", err.Error()))
		return
	}

	company := &domain.Company{Name: "Harbor Lane Coffee"}
	if err := repo.CreateCompany(company); err != nil {
		slog.Error("failed to create demo company", slog.String("error", err.Error()))
		return
	}

	users := []seedUser{
		{"demo-owner", "Dana Whitfield", "dana@harborlane.test", domain.RoleOwner},
		{"demo-manager-foh", "Marco Silva", "marco@harborlane.test", domain.RoleManager},
		{"demo-manager-kitchen", "Priya Nair", "priya@harborlane.test", domain.RoleManager},
		{"demo-emp-alice", "Alice Tran", "alice@harborlane.test", domain.RoleEmployee},
		{"demo-emp-ben", "Ben Okafor", "ben@harborlane.test", domain.RoleEmployee},
		{"demo-emp-carla", "Carla Mendes", "carla@harborlane.test", domain.RoleEmployee},
		{"demo-emp-dev", "Dev Patel", "dev@harborlane.test", domain.RoleEmployee},
		{"demo-emp-erin", "Erin Kowalski", "erin@harborlane.test", domain.RoleEmployee},
		{"demo-emp-felix", "Felix Braun", "felix@harborlane.test", domain.RoleEmployee},
	}

	created := make(map[string]*domain.User, len(users))
	for _, su := range users {
		user := &domain.User{
			CompanyID:    company.ID,
			Username:     su.username,
			PasswordHash: string(passwordHash),
			FullName:     su.fullName,
			Email:        su.email,
			Role:         su.role,
		}
		if err := repo.CreateUser(user); err != nil {
			slog.Error("failed to create demo user", slog.String("username", su.username), slog.String("error", err.Error()))
			return
		}
		created[su.username] = user
	}

	frontOfHouse := &domain.Group{
		CompanyID: company.ID,
		Name:      "Front of House",
		ManagerID: created["demo-manager-foh"].ID,
	}
	kitchen := &domain.Group{
		CompanyID: company.ID,
		Name:      "Kitchen",
		ManagerID: created["demo-manager-kitchen"].ID,
	}
	for _, group := range []*domain.Group{frontOfHouse, kitchen} {
		if err := repo.CreateGroup(group); err != nil {
			slog.Error("failed to create demo group", slog.String("name", group.Name), slog.String("error", err.Error()))
			return
		}
	}

	memberships := map[int64][]string{
		frontOfHouse.ID: {"demo-emp-alice", "demo-emp-ben", "demo-emp-carla"},
		kitchen.ID:      {"demo-emp-dev", "demo-emp-erin", "demo-emp-felix"},
	}
	for groupID, usernames := range memberships {
		for _, username := range usernames {
			if err := repo.AddGroupMember(groupID, created[username].ID); err != nil {
				slog.Error("failed to add group member", slog.String("username", username), slog.String("error", err.Error()))
				return
			}
		}
	}

	templates := map[int64][]seedTemplate{
		frontOfHouse.ID: {
			{"Opening", "06:00", "12:00", "#f59e0b"},
			{"Midday", "11:00", "17:00", "#3b82f6"},
			{"Closing", "16:00", "22:00", "#8b5cf6"},
		},
		kitchen.ID: {
			{"Prep", "05:00", "11:00", "#10b981"},
			{"Line", "10:00", "16:00", "#ef4444"},
		},
	}
	templateIDs := make(map[int64][]*domain.ShiftTemplate)
	for groupID, specs := range templates {
		for _, spec := range specs {
			template := &domain.ShiftTemplate{
				GroupID:   groupID,
				Name:      spec.name,
				StartTime: spec.startTime,
				EndTime:   spec.endTime,
				Color:     spec.color,
			}
			if err := repo.CreateShiftTemplate(template); err != nil {
				slog.Error("failed to create shift template", slog.String("name", spec.name), slog.String("error", err.Error()))
				return
			}
			templateIDs[groupID] = append(templateIDs[groupID], template)
		}
	}

	lastWeek := mondayOf(time.Now()).AddDate(0, 0, -7)

	fohMembers := []int64{
		created["demo-emp-alice"].ID,
		created["demo-emp-ben"].ID,
		created["demo-emp-carla"].ID,
	}
	if err := seedWeek(repo, company.ID, frontOfHouse, lastWeek, templateIDs[frontOfHouse.ID], fohMembers); err != nil {
		slog.Error("failed to seed front of house week", slog.String("error", err.Error()))
		return
	}

	kitchenMembers := []int64{
		created["demo-emp-dev"].ID,
		created["demo-emp-erin"].ID,
		created["demo-emp-felix"].ID,
	}
	if err := seedWeek(repo, company.ID, kitchen, lastWeek, templateIDs[kitchen.ID], kitchenMembers); err != nil {
		slog.Error("failed to seed kitchen week", slog.String("error", err.Error()))
		return
	}

	slog.Info("demo data seeded",
		slog.Int64("company_id", company.ID),
		slog.String("week_start", lastWeek.Format("2006-01-02")),
	)
}

// seedWeek creates a published schedule for the given week and a draft copy
// for the week after, rotating the members through the group's templates.
func seedWeek(repo *repository.Repository, companyID int64, group *domain.Group, weekStart time.Time, templates []*domain.ShiftTemplate, members []int64) error {
	published := &domain.Schedule{
		CompanyID: companyID,
		GroupID:   group.ID,
		ManagerID: group.ManagerID,
		WeekStart: weekStart,
		WeekEnd:   domain.WeekEndFor(weekStart),
		Status:    domain.ScheduleStatusPublished,
	}

	shifts := make([]*domain.Shift, 0, 7*len(templates))
	for day := 0; day < 7; day++ {
		for i, template := range templates {
			templateID := template.ID
			shifts = append(shifts, &domain.Shift{
				GroupID:         group.ID,
				AssignedTo:      members[(day+i)%len(members)],
				Date:            weekStart.AddDate(0, 0, day),
				StartTime:       template.StartTime,
				EndTime:         template.EndTime,
				ShiftTemplateID: &templateID,
				CreatedBy:       group.ManagerID,
				ModifiedBy:      group.ManagerID,
			})
		}
	}

	if err := repo.CreateScheduleWithShifts(published, shifts); err != nil {
		return err
	}

	draft := &domain.Schedule{
		CompanyID: companyID,
		GroupID:   group.ID,
		ManagerID: group.ManagerID,
		WeekStart: weekStart.AddDate(0, 0, 7),
		WeekEnd:   domain.WeekEndFor(weekStart.AddDate(0, 0, 7)),
		Status:    domain.ScheduleStatusDraft,
	}

	copied := make([]*domain.Shift, 0, len(shifts))
	for _, shift := range shifts {
		copied = append(copied, shift.CopyForward(7, group.ManagerID))
	}

	return repo.CreateScheduleWithShifts(draft, copied)
}

// mondayOf returns the Monday of the week containing t, at midnight local time.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
