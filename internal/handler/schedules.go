package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

const dateLayout = "2006-01-02"

// parseDate reads a calendar date in the server's local timezone. Schedule
// and shift dates are naive local dates everywhere in this system.
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, time.Local)
}

func canManageGroup(user *domain.User, group *domain.Group) bool {
	if group.CompanyID != user.CompanyID {
		return false
	}
	if user.Role == domain.RoleOwner {
		return true
	}
	return user.Role == domain.RoleManager && group.ManagerID == user.ID
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID   int64  `json:"groupID" validate:"required"`
		WeekStart string `json:"weekStart" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := parseDate(req.WeekStart)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule, err := h.schedules.Create(r.Context(), h.actor(r), req.GroupID, weekStart)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Schedule created", schedule)
}

func (h *Handler) CopyScheduleFromLastWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID   int64  `json:"groupID" validate:"required"`
		WeekStart string `json:"weekStart" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := parseDate(req.WeekStart)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule, err := h.schedules.CopyFromLastWeek(r.Context(), h.actor(r), req.GroupID, weekStart)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Schedule copied from last week", schedule)
}

func (h *Handler) PublishSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid schedule ID")
		return
	}

	if err := h.schedules.Publish(r.Context(), h.actor(r), scheduleID); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.notifySchedulePublished(r, scheduleID)

	h.successResponse(w, r, "Schedule published", nil)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	scheduleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid schedule ID")
		return
	}

	schedule, err := h.repository.GetScheduleByID(scheduleID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Schedule not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	group, err := h.repository.GetGroupByID(schedule.GroupID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !canManageGroup(user, group) {
		h.errorResponse(w, r, "Schedule not found")
		return
	}

	shifts, err := h.repository.GetShiftsByScheduleID(schedule.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Schedule loaded", map[string]any{
		"schedule": schedule,
		"shifts":   shifts,
	})
}

func (h *Handler) GetMyWeek(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	weekStart, err := parseDate(r.URL.Query().Get("weekStart"))
	if err != nil {
		h.errorResponse(w, r, "Invalid week start date")
		return
	}

	shifts, err := h.repository.GetShiftsForUserWeek(user.ID, weekStart, domain.WeekEndFor(weekStart))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Week loaded", shifts)
}

func (h *Handler) AddShift(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid schedule ID")
		return
	}

	var req struct {
		UserID     int64  `json:"userID" validate:"required"`
		Date       string `json:"date" validate:"required"`
		TemplateID int64  `json:"templateID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.schedules.AddShift(r.Context(), h.actor(r), scheduleID, req.UserID, date, req.TemplateID)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Shift added", shift)
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	shiftID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid shift ID")
		return
	}

	var req struct {
		TemplateID int64 `json:"templateID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.schedules.UpdateShift(r.Context(), h.actor(r), shiftID, req.TemplateID); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Shift updated", nil)
}

func (h *Handler) RemoveShift(w http.ResponseWriter, r *http.Request) {
	shiftID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid shift ID")
		return
	}

	if err := h.schedules.RemoveShift(r.Context(), h.actor(r), shiftID); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Shift removed", nil)
}

func (h *Handler) AddShiftNote(w http.ResponseWriter, r *http.Request) {
	shiftID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid shift ID")
		return
	}

	var req struct {
		Note string `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.schedules.AddNote(r.Context(), h.actor(r), shiftID, req.Note); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Note saved", nil)
}

func (h *Handler) SaveExtraHours(w http.ResponseWriter, r *http.Request) {
	shiftID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid shift ID")
		return
	}

	var req struct {
		Hours *float64 `json:"hours"`
		Notes string   `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.schedules.SetExtraHours(r.Context(), h.actor(r), shiftID, req.Hours, req.Notes); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Extra hours saved", nil)
}
