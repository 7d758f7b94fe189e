package handlers

import (
	"net/http"

	"github.com/Bekarys01/unisport-system/middleware"
	"github.com/Bekarys01/unisport-system/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListPending returns the current user's pending-invite inbox.
func (h *NotificationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	pending, err := h.notificationService.ListPendingInvites(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pending_invites": pending}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
