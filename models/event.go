package models

import "time"

// ParticipationType matches the participation_type ENUM in the database.
type ParticipationType string

const (
	ParticipationPlayer ParticipationType = "player"
	ParticipationTeam   ParticipationType = "team"
)

type Event struct {
	ID                int               `json:"id" db:"id"`
	Name              string            `json:"name" db:"name"`
	Sport             string            `json:"sport" db:"sport"`
	ParticipationType ParticipationType `json:"participation_type" db:"participation_type"`

	// TeamSize is the number of players a finalized team holds, leader included.
	TeamSize    int `json:"team_size" db:"team_size"`
	TeamsNeeded int `json:"teams_needed" db:"teams_needed"`

	OrganizerID int        `json:"organizer_id" db:"organizer_id"`
	Location    *string    `json:"location,omitempty" db:"location"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	BannerKey *string `json:"-" db:"banner_key"`
	BannerURL *string `json:"banner_url,omitempty" db:"-"`

	Organizer *User  `json:"organizer,omitempty" db:"-"`
	Teams     []Team `json:"teams,omitempty" db:"-"`
}

// Capacity is the number of non-leader members a team may hold.
func (e *Event) Capacity() int {
	return e.TeamSize - 1
}
