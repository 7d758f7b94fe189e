package models

import "time"

// PendingInvite is a read-side inbox record: a pending invite joined with the
// inviter's profile and the event's display name. Not stored anywhere,
// recomputed from the invite ledger on each query.
type PendingInvite struct {
	InviteID     int       `json:"invite_id"`
	EventID      int       `json:"event_id"`
	EventName    string    `json:"event_name"`
	Sport        string    `json:"sport"`
	InviterID    int       `json:"inviter_id"`
	InviterName  string    `json:"inviter_name"`
	InviterEmail string    `json:"inviter_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DashboardStats is the aggregate view shown on the admin dashboard.
type DashboardStats struct {
	UsersTotal          int `json:"users_total"`
	EventsTotal         int `json:"events_total"`
	TeamsTotal          int `json:"teams_total"`
	PendingInvitesTotal int `json:"pending_invites_total"`
}
