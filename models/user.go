package models

import "time"

type UserRole string

const (
	RolePlayer    UserRole = "player"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID           int      `json:"id" db:"id"`
	FirstName    string   `json:"first_name" db:"first_name"`
	LastName     string   `json:"last_name" db:"last_name"`
	Email        string   `json:"email" db:"email"`
	PasswordHash string   `json:"-" db:"password_hash"`
	Role         UserRole `json:"role" db:"role"`

	// RegistrationNumber is the campus registration number, filled in by the
	// profile form and required before the user can join or create teams.
	RegistrationNumber *string `json:"registration_number,omitempty" db:"registration_number"`
	Faculty            *string `json:"faculty,omitempty" db:"faculty"`
	Phone              *string `json:"phone,omitempty" db:"phone"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProfileComplete reports whether the profile carries everything the
// team-formation flow requires.
func (u *User) ProfileComplete() bool {
	return u.RegistrationNumber != nil && *u.RegistrationNumber != ""
}
