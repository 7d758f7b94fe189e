package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bekarys01/unisport-system/models"
)

func TestListPendingInvites(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the projected rows", func(t *testing.T) {
		invites := newFakeInviteRepo()
		invites.pending = []*models.PendingInvite{
			{
				InviteID:     7,
				EventID:      10,
				EventName:    "Spring Cup",
				Sport:        "football",
				InviterID:    1,
				InviterName:  "Aigerim Satybaldy",
				InviterEmail: "aigerim@example.edu",
				CreatedAt:    time.Now(),
			},
		}
		svc := NewNotificationService(invites)

		pending, err := svc.ListPendingInvites(ctx, 2)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Spring Cup", pending[0].EventName)
		assert.Equal(t, "Aigerim Satybaldy", pending[0].InviterName)
	})

	t.Run("fills a placeholder for a deleted inviter profile", func(t *testing.T) {
		invites := newFakeInviteRepo()
		invites.pending = []*models.PendingInvite{
			{InviteID: 7, EventID: 10, EventName: "Spring Cup", InviterName: ""},
			{InviteID: 8, EventID: 11, EventName: "Autumn Cup", InviterName: " "},
		}
		svc := NewNotificationService(invites)

		pending, err := svc.ListPendingInvites(ctx, 2)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "Former member", pending[0].InviterName)
		assert.Equal(t, "Former member", pending[1].InviterName)
	})

	t.Run("empty inbox yields an empty slice", func(t *testing.T) {
		svc := NewNotificationService(newFakeInviteRepo())

		pending, err := svc.ListPendingInvites(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}
