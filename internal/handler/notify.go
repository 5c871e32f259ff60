package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

// publishNotification hands a message to the notifier worker through the
// queue. Delivery itself is the worker's problem.
func (h *Handler) publishNotification(message domain.NotificationMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return h.mailChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// The notify helpers run after the mutation has committed, so a failure here
// is logged instead of failing the request.

func (h *Handler) notifySwapRequested(r *http.Request, swap *domain.ShiftSwap) {
	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	if swap.ToUserID == nil {
		return
	}

	recipient, err := h.repository.GetUserByID(*swap.ToUserID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	if swap.ShiftID == nil {
		return
	}
	shift, err := h.repository.GetShiftByID(*swap.ShiftID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	err = h.publishNotification(domain.NotificationMessage{
		Type: "swap_requested",
		To:   recipient.Email,
		Data: domain.SwapRequestedNotificationData{
			RecipientName: recipient.FullName,
			RequesterName: user.FullName,
			ShiftDate:     shift.Date.Format(dateLayout),
			StartTime:     shift.StartTime,
			EndTime:       shift.EndTime,
		},
	})
	if err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) notifySwapResolved(r *http.Request, swap *domain.ShiftSwap, approved bool) {
	requester, err := h.repository.GetUserByID(swap.FromUserID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	if swap.ShiftID == nil {
		return
	}
	shift, err := h.repository.GetShiftByID(*swap.ShiftID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	messageType := "swap_rejected"
	if approved {
		messageType = "swap_approved"
	}

	err = h.publishNotification(domain.NotificationMessage{
		Type: messageType,
		To:   requester.Email,
		Data: domain.SwapResolvedNotificationData{
			RequesterName: requester.FullName,
			ShiftDate:     shift.Date.Format(dateLayout),
			StartTime:     shift.StartTime,
			EndTime:       shift.EndTime,
			ManagerNotes:  swap.ManagerNotes,
		},
	})
	if err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) notifySchedulePublished(r *http.Request, scheduleID int64) {
	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	schedule, err := h.repository.GetScheduleByID(scheduleID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	group, err := h.repository.GetGroupByID(schedule.GroupID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	members, err := h.repository.GetGroupMembers(group.ID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	for _, member := range members {
		if !member.IsActive {
			continue
		}
		err := h.publishNotification(domain.NotificationMessage{
			Type: "schedule_published",
			To:   member.Email,
			Data: domain.SchedulePublishedNotificationData{
				ManagerName: user.FullName,
				GroupName:   group.Name,
				WeekStart:   schedule.WeekStart.Format(dateLayout),
			},
		})
		if err != nil {
			h.logInternalServerError(r, err)
		}
	}
}
