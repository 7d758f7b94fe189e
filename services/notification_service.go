package services

import (
	"context"
	"fmt"

	"github.com/Bekarys01/unisport-system/models"
	"github.com/Bekarys01/unisport-system/repositories"
)

// inviterPlaceholder is shown when the inviter's profile row no longer
// exists; a single missing profile must not fail the whole projection.
const inviterPlaceholder = "Former member"

// NotificationService is the read-side view over the invite ledger: "what
// invites are pending for user X, across all events?". It holds no state of
// its own and recomputes the answer on every query.
type NotificationService interface {
	ListPendingInvites(ctx context.Context, userID int) ([]*models.PendingInvite, error)
}

type notificationService struct {
	inviteRepo repositories.InviteRepository
}

func NewNotificationService(inviteRepo repositories.InviteRepository) NotificationService {
	return &notificationService{inviteRepo: inviteRepo}
}

func (s *notificationService) ListPendingInvites(ctx context.Context, userID int) ([]*models.PendingInvite, error) {
	pending, err := s.inviteRepo.ListPendingByInvitee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to project pending invites for user %d: %w", userID, err)
	}

	for _, p := range pending {
		if p.InviterName == "" || p.InviterName == " " {
			p.InviterName = inviterPlaceholder
		}
	}

	return pending, nil
}
