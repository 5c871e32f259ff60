package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crewshift-dev/crewshift/backend/internal/domain"
)

func (h *Handler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	shiftID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid shift ID")
		return
	}

	var req struct {
		Type     string `json:"type" validate:"required,oneof=direct public"`
		ToUserID *int64 `json:"toUserID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	swapType := domain.SwapType(req.Type)
	if swapType == domain.SwapTypeDirect && req.ToUserID == nil {
		h.errorResponse(w, r, "A direct swap needs a recipient")
		return
	}

	swap, err := h.swaps.Create(r.Context(), h.actor(r), shiftID, swapType, req.ToUserID)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	if swap.Type == domain.SwapTypeDirect {
		h.notifySwapRequested(r, swap)
	}

	h.successResponse(w, r, "Swap request created", swap)
}

func (h *Handler) GetMySwaps(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	swaps, err := h.repository.GetSwapsByUser(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Swap requests loaded", presentSwaps(swaps))
}

func (h *Handler) GetSwapBoard(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	swaps, err := h.repository.GetPublicSwapsForUser(user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Swap board loaded", presentSwaps(swaps))
}

func (h *Handler) GetGroupSwaps(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid group ID")
		return
	}

	group, err := h.repository.GetGroupByID(groupID)
	if err != nil {
		h.errorResponse(w, r, "Group not found")
		return
	}
	if !canManageGroup(user, group) {
		h.errorResponse(w, r, "Group not found")
		return
	}

	swaps, err := h.repository.GetSwapsByGroup(group.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Swap requests loaded", presentSwaps(swaps))
}

func (h *Handler) AcceptSwap(w http.ResponseWriter, r *http.Request) {
	swapID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid swap ID")
		return
	}

	if err := h.swaps.Accept(r.Context(), h.actor(r), swapID); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Swap request accepted", nil)
}

func (h *Handler) DeclineSwap(w http.ResponseWriter, r *http.Request) {
	swapID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid swap ID")
		return
	}

	if err := h.swaps.Decline(r.Context(), h.actor(r), swapID); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Swap request declined", nil)
}

func (h *Handler) CancelSwap(w http.ResponseWriter, r *http.Request) {
	swapID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid swap ID")
		return
	}

	if err := h.swaps.Cancel(r.Context(), h.actor(r), swapID); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Swap request cancelled", nil)
}

func (h *Handler) TakePublicShift(w http.ResponseWriter, r *http.Request) {
	swapID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid swap ID")
		return
	}

	if err := h.swaps.Claim(r.Context(), h.actor(r), swapID); err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "Shift claimed, awaiting manager approval", nil)
}

func (h *Handler) ApproveSwap(w http.ResponseWriter, r *http.Request) {
	swapID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid swap ID")
		return
	}

	swap, err := h.swaps.Approve(r.Context(), h.actor(r), swapID)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.notifySwapResolved(r, swap, true)

	h.successResponse(w, r, "Swap approved", swap)
}

func (h *Handler) RejectSwap(w http.ResponseWriter, r *http.Request) {
	swapID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "Invalid swap ID")
		return
	}

	var req struct {
		Note string `json:"note"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	swap, err := h.swaps.Reject(r.Context(), h.actor(r), swapID, req.Note)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.notifySwapResolved(r, swap, false)

	h.successResponse(w, r, "Swap rejected", swap)
}

// presentSwaps applies the lazy expiry rule: a pending request past its
// deadline is shown as expired without a write.
func presentSwaps(swaps []*domain.ShiftSwap) []*domain.ShiftSwap {
	now := time.Now()
	for _, swap := range swaps {
		swap.Status = swap.EffectiveStatus(now)
	}
	return swaps
}
