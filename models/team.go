package models

import "time"

// Team is a committed roster entry for an event. The leader is recorded at
// commit time and is never part of Members.
type Team struct {
	ID        int       `json:"id" db:"id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	LeaderID  int       `json:"leader_id" db:"leader_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Leader  *User  `json:"leader,omitempty" db:"-"`
	Members []User `json:"members,omitempty" db:"-"`
}

// MemberIDs returns the user ids of the committed members, leader excluded.
func (t *Team) MemberIDs() []int {
	ids := make([]int, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.ID)
	}
	return ids
}
