package models

import "time"

// Invite is a single ledger record scoped to one event. Records are created
// by the inviter, flipped to accepted by the invitee, and deleted on
// retraction or rejection. An accepted invite is never re-opened.
type Invite struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	InviterID int       `json:"inviter_id" db:"inviter_id"`
	InviteeID int       `json:"invitee_id" db:"invitee_id"`
	Accepted  bool      `json:"accepted" db:"accepted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
