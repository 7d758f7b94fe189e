package services

import "errors"

// Business errors shared across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrTeamNameRequired     = errors.New("team name is required")
	ErrTeamNameInvalid      = errors.New("team name contains disallowed characters")
	ErrEventNotTeamBased    = errors.New("event does not accept team participation")
	ErrEventInvalidTeamSize = errors.New("event team size must be at least 2")
	ErrSelfInviteForbidden  = errors.New("cannot invite yourself")
	ErrProfileIncomplete    = errors.New("registration number must be filled in first")

	// Invite state machine
	ErrInviteCapacityExceeded = errors.New("team is already full")
	ErrDuplicateInvite        = errors.New("this player is already invited")
	ErrInviteAlreadyResolved  = errors.New("invite has already been accepted")
	ErrUserAlreadyOnTeam      = errors.New("user already belongs to a team in this event")
	ErrRosterIncomplete       = errors.New("not every invited player has accepted yet")
	ErrCannotRemoveLeader     = errors.New("cannot remove the team leader")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrInviteActionForbidden  = errors.New("only the inviter or the invitee can act on this invite")
	ErrNotInvitee             = errors.New("only the invited user can accept this invite")
	ErrOrganizerRequired      = errors.New("only an organizer or admin can perform this action")
	ErrAdminRequired          = errors.New("only an admin can perform this action")

	// Entity-specific not-found errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrInviteNotFound     = errors.New("invite not found")

	// Conflicts
	ErrUserEmailConflict     = errors.New("email address is already in use")
	ErrUserRegNumberConflict = errors.New("registration number is already in use")
	ErrEventNameConflict     = errors.New("event name already exists")
)
