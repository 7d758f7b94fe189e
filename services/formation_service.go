package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Bekarys01/unisport-system/models"
	"github.com/Bekarys01/unisport-system/realtime"
	"github.com/Bekarys01/unisport-system/repositories"
)

// Team names become map keys on the client side, so the character set is
// restricted the same way the storage layer restricts document keys.
var teamNameRe = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} _-]{0,63}$`)

// RosterNotifier pushes change events to subscribed clients. Satisfied by
// *realtime.Hub.
type RosterNotifier interface {
	BroadcastToRoom(room string, message interface{})
}

// InviteEmailSender delivers the invite notification mail. Satisfied by
// *EmailService.
type InviteEmailSender interface {
	SendInviteEmail(userEmail, inviterName, eventName string) error
}

// FormationService mediates every state transition of an event's teams:
// invite, accept, reject, commit, plus the organizer-side removals.
type FormationService interface {
	CreateInvite(ctx context.Context, eventID, inviterID, inviteeID int) (*models.Invite, error)
	AcceptInvite(ctx context.Context, eventID, inviteID, accepterID int) (*models.Invite, error)
	RejectInvite(ctx context.Context, eventID, inviteID, actorID int) error
	CommitTeam(ctx context.Context, eventID, leaderID int, teamName string) (*models.Team, error)
	RemoveMember(ctx context.Context, eventID, requesterID, memberID int) error
	DeleteTeam(ctx context.Context, eventID, requesterID int, teamName string) error

	ListEventTeams(ctx context.Context, eventID int) ([]*models.Team, error)
	ListLeaderInvites(ctx context.Context, eventID, leaderID int) ([]*models.Invite, error)
}

type formationService struct {
	tx         repositories.TxRunner
	eventRepo  repositories.EventRepository
	teamRepo   repositories.TeamRepository
	inviteRepo repositories.InviteRepository
	userRepo   repositories.UserRepository
	notifier   RosterNotifier
	email      InviteEmailSender
	logger     *slog.Logger
}

func NewFormationService(
	tx repositories.TxRunner,
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	inviteRepo repositories.InviteRepository,
	userRepo repositories.UserRepository,
	notifier RosterNotifier,
	email InviteEmailSender,
	logger *slog.Logger,
) FormationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &formationService{
		tx:         tx,
		eventRepo:  eventRepo,
		teamRepo:   teamRepo,
		inviteRepo: inviteRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		email:      email,
		logger:     logger,
	}
}

func (s *formationService) CreateInvite(ctx context.Context, eventID, inviterID, inviteeID int) (*models.Invite, error) {
	if inviterID == inviteeID {
		return nil, ErrSelfInviteForbidden
	}

	inviter, err := s.userRepo.GetByID(ctx, inviterID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}
	if !inviter.ProfileComplete() {
		return nil, ErrProfileIncomplete
	}

	invitee, err := s.userRepo.GetByID(ctx, inviteeID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}

	invite := &models.Invite{
		EventID:   eventID,
		InviterID: inviterID,
		InviteeID: inviteeID,
	}
	var event *models.Event

	// The FOR UPDATE read serializes concurrent invites against the event
	// row, so two of them cannot both slip past the capacity check.
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		event, err = s.eventRepo.GetByIDForUpdate(ctx, exec, eventID)
		if err != nil {
			return mapEventRepoError(err)
		}
		if event.ParticipationType != models.ParticipationTeam {
			return ErrEventNotTeamBased
		}

		count, err := s.inviteRepo.CountByInviter(ctx, exec, eventID, inviterID)
		if err != nil {
			return err
		}
		if count >= event.Capacity() {
			return ErrInviteCapacityExceeded
		}

		if err := s.inviteRepo.Create(ctx, exec, invite); err != nil {
			if errors.Is(err, repositories.ErrInviteConflict) {
				return ErrDuplicateInvite
			}
			if errors.Is(err, repositories.ErrInviteEventInvalid) {
				return ErrEventNotFound
			}
			if errors.Is(err, repositories.ErrInviteUserInvalid) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to create invite: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(realtime.InboxRoom(inviteeID), "INVITE_CREATED", invite)

	if s.email != nil {
		inviterName := strings.TrimSpace(inviter.FirstName + " " + inviter.LastName)
		if err := s.email.SendInviteEmail(invitee.Email, inviterName, event.Name); err != nil {
			s.logger.Warn("failed to send invite email",
				slog.String("email", invitee.Email),
				slog.Int("event_id", eventID),
				slog.Any("error", err))
		}
	}
	return invite, nil
}

func (s *formationService) AcceptInvite(ctx context.Context, eventID, inviteID, accepterID int) (*models.Invite, error) {
	var invite *models.Invite

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Lock the event row first: two concurrent accepts for the same user
		// would otherwise each see the pre-state of the ledger and both pass
		// the single-team check below.
		if _, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID); err != nil {
			return mapEventRepoError(err)
		}

		var err error
		invite, err = s.inviteRepo.GetByID(ctx, exec, inviteID)
		if err != nil {
			return mapInviteRepoError(err)
		}
		if invite.EventID != eventID {
			return ErrInviteNotFound
		}
		if invite.InviteeID != accepterID {
			return ErrNotInvitee
		}
		if invite.Accepted {
			return ErrInviteAlreadyResolved
		}

		// A user may not hold an accepted invite in two teams of one event,
		// nor accept while already committed to a roster.
		accepted, err := s.inviteRepo.HasAcceptedForInvitee(ctx, exec, eventID, accepterID)
		if err != nil {
			return err
		}
		if accepted {
			return ErrUserAlreadyOnTeam
		}
		if _, err := s.teamRepo.FindByMember(ctx, exec, eventID, accepterID); err == nil {
			return ErrUserAlreadyOnTeam
		} else if !errors.Is(err, repositories.ErrTeamNotFound) {
			return err
		}

		if err := s.inviteRepo.MarkAccepted(ctx, exec, inviteID); err != nil {
			if errors.Is(err, repositories.ErrInviteAlreadyClosed) {
				return ErrInviteAlreadyResolved
			}
			return mapInviteRepoError(err)
		}
		invite.Accepted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(realtime.InboxRoom(invite.InviterID), "INVITE_ACCEPTED", invite)
	s.broadcast(realtime.EventRoom(eventID), "INVITE_ACCEPTED", invite)
	return invite, nil
}

func (s *formationService) RejectInvite(ctx context.Context, eventID, inviteID, actorID int) error {
	var invite *models.Invite
	var deletedTeam *models.Team

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Serializes the reject cascade against concurrent accepts/commits.
		if _, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID); err != nil {
			return mapEventRepoError(err)
		}

		var err error
		invite, err = s.inviteRepo.GetByID(ctx, exec, inviteID)
		if err != nil {
			return mapInviteRepoError(err)
		}
		if invite.EventID != eventID {
			return ErrInviteNotFound
		}
		if actorID != invite.InviterID && actorID != invite.InviteeID {
			return ErrInviteActionForbidden
		}

		if err := s.inviteRepo.Delete(ctx, exec, inviteID); err != nil {
			return mapInviteRepoError(err)
		}

		if !invite.Accepted {
			return nil
		}

		// The invite already contributed to a committed roster: the ledger
		// change must cascade into the roster inside the same transaction.
		// Removing an accepted member dissolves the whole team.
		team, err := s.teamRepo.FindByMember(ctx, exec, eventID, invite.InviteeID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil // accepted but never committed
			}
			return err
		}
		if team.LeaderID != invite.InviterID {
			return nil
		}
		if err := s.teamRepo.Delete(ctx, exec, team.ID); err != nil {
			return fmt.Errorf("failed to delete team %d after invite removal: %w", team.ID, err)
		}
		deletedTeam = team
		s.logger.Info("team dissolved after accepted invite removal",
			slog.Int("event_id", eventID),
			slog.Int("team_id", team.ID),
			slog.Int("invitee_id", invite.InviteeID))
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(realtime.InboxRoom(invite.InviteeID), "INVITE_REJECTED", invite)
	s.broadcast(realtime.InboxRoom(invite.InviterID), "INVITE_REJECTED", invite)
	if deletedTeam != nil {
		s.broadcast(realtime.EventRoom(eventID), "TEAM_DELETED", deletedTeam)
	}
	return nil
}

func (s *formationService) CommitTeam(ctx context.Context, eventID, leaderID int, teamName string) (*models.Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, ErrTeamNameRequired
	}
	if !teamNameRe.MatchString(teamName) {
		return nil, ErrTeamNameInvalid
	}

	var team *models.Team

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID)
		if err != nil {
			return mapEventRepoError(err)
		}
		if event.ParticipationType != models.ParticipationTeam {
			return ErrEventNotTeamBased
		}

		accepted, err := s.inviteRepo.ListByInviter(ctx, exec, eventID, leaderID, true)
		if err != nil {
			return err
		}
		if len(accepted) != event.Capacity() {
			return ErrRosterIncomplete
		}

		team = &models.Team{
			EventID:  eventID,
			Name:     teamName,
			LeaderID: leaderID,
		}
		if err := s.teamRepo.Upsert(ctx, exec, team); err != nil {
			if errors.Is(err, repositories.ErrTeamEventInvalid) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to write team %q: %w", teamName, err)
		}

		memberIDs := make([]int, 0, len(accepted))
		for _, invite := range accepted {
			memberIDs = append(memberIDs, invite.InviteeID)
		}
		if err := s.teamRepo.ReplaceMembers(ctx, exec, team.ID, memberIDs); err != nil {
			return fmt.Errorf("failed to write team %q members: %w", teamName, err)
		}

		team, err = s.teamRepo.GetByEventAndName(ctx, exec, eventID, teamName)
		if err != nil {
			return fmt.Errorf("failed to reload committed team %q: %w", teamName, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(realtime.EventRoom(eventID), "TEAM_COMMITTED", team)
	return team, nil
}

func (s *formationService) RemoveMember(ctx context.Context, eventID, requesterID, memberID int) error {
	var team *models.Team

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID)
		if err != nil {
			return mapEventRepoError(err)
		}
		if err := s.requireOrganizer(ctx, requesterID, event); err != nil {
			return err
		}

		team, err = s.teamRepo.FindByMember(ctx, exec, eventID, memberID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamMemberNotFound
			}
			return err
		}
		if team.LeaderID == memberID {
			return ErrCannotRemoveLeader
		}

		if err := s.teamRepo.RemoveMember(ctx, exec, team.ID, memberID); err != nil {
			if errors.Is(err, repositories.ErrTeamMemberNotFound) {
				return ErrTeamMemberNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(realtime.EventRoom(eventID), "MEMBER_REMOVED", map[string]int{
		"team_id": team.ID,
		"user_id": memberID,
	})
	return nil
}

func (s *formationService) DeleteTeam(ctx context.Context, eventID, requesterID int, teamName string) error {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return mapUserRepoError(err)
	}
	if requester.Role != models.RoleAdmin {
		return ErrAdminRequired
	}

	// Historical invite records stay in the ledger untouched.
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.eventRepo.GetByIDForUpdate(ctx, exec, eventID); err != nil {
			return mapEventRepoError(err)
		}
		if err := s.teamRepo.DeleteByEventAndName(ctx, exec, eventID, teamName); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return ErrTeamNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(realtime.EventRoom(eventID), "TEAM_DELETED", map[string]string{"name": teamName})
	return nil
}

func (s *formationService) ListEventTeams(ctx context.Context, eventID int) ([]*models.Team, error) {
	if _, err := s.eventRepo.GetByID(ctx, nil, eventID); err != nil {
		return nil, mapEventRepoError(err)
	}
	teams, err := s.teamRepo.ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of event %d: %w", eventID, err)
	}
	return teams, nil
}

func (s *formationService) ListLeaderInvites(ctx context.Context, eventID, leaderID int) ([]*models.Invite, error) {
	if _, err := s.eventRepo.GetByID(ctx, nil, eventID); err != nil {
		return nil, mapEventRepoError(err)
	}
	invites, err := s.inviteRepo.ListByInviter(ctx, nil, eventID, leaderID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites of leader %d: %w", leaderID, err)
	}
	return invites, nil
}

func (s *formationService) requireOrganizer(ctx context.Context, requesterID int, event *models.Event) error {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return mapUserRepoError(err)
	}
	switch {
	case requester.Role == models.RoleAdmin:
		return nil
	case requester.Role == models.RoleOrganizer && event.OrganizerID == requesterID:
		return nil
	default:
		return ErrOrganizerRequired
	}
}

func (s *formationService) broadcast(room, messageType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToRoom(room, realtime.Message{
		Type:    messageType,
		Payload: payload,
		Room:    room,
	})
}

func mapUserRepoError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func mapEventRepoError(err error) error {
	if errors.Is(err, repositories.ErrEventNotFound) {
		return ErrEventNotFound
	}
	return err
}

func mapInviteRepoError(err error) error {
	if errors.Is(err, repositories.ErrInviteNotFound) {
		return ErrInviteNotFound
	}
	return err
}
