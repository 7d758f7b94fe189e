package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Bekarys01/unisport-system/models"
	"github.com/Bekarys01/unisport-system/repositories"
	"github.com/Bekarys01/unisport-system/storage"
	"golang.org/x/sync/errgroup"
)

type CreateEventInput struct {
	Name              string                   `json:"name"`
	Sport             string                   `json:"sport"`
	ParticipationType models.ParticipationType `json:"participation_type"`
	TeamSize          int                      `json:"team_size"`
	TeamsNeeded       int                      `json:"teams_needed"`
	Location          *string                  `json:"location"`
	StartDate         time.Time                `json:"start_date"`
	EndDate           *time.Time               `json:"end_date"`
}

type EventService interface {
	CreateEvent(ctx context.Context, organizerID int, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, eventID int) (*models.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error)
	UploadBanner(ctx context.Context, eventID, requesterID int, contentType string, reader io.Reader) (*models.Event, error)
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type eventService struct {
	eventRepo  repositories.EventRepository
	teamRepo   repositories.TeamRepository
	inviteRepo repositories.InviteRepository
	userRepo   repositories.UserRepository
	uploader   storage.FileUploader
}

func NewEventService(
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	inviteRepo repositories.InviteRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) EventService {
	return &eventService{
		eventRepo:  eventRepo,
		teamRepo:   teamRepo,
		inviteRepo: inviteRepo,
		userRepo:   userRepo,
		uploader:   uploader,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID int, input CreateEventInput) (*models.Event, error) {
	organizer, err := s.userRepo.GetByID(ctx, organizerID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}
	if organizer.Role != models.RoleOrganizer && organizer.Role != models.RoleAdmin {
		return nil, ErrOrganizerRequired
	}

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Sport) == "" {
		return nil, ErrValidationFailed
	}
	switch input.ParticipationType {
	case models.ParticipationPlayer, models.ParticipationTeam:
	default:
		return nil, ErrValidationFailed
	}
	if input.ParticipationType == models.ParticipationTeam && input.TeamSize < 2 {
		return nil, ErrEventInvalidTeamSize
	}

	event := &models.Event{
		Name:              input.Name,
		Sport:             input.Sport,
		ParticipationType: input.ParticipationType,
		TeamSize:          input.TeamSize,
		TeamsNeeded:       input.TeamsNeeded,
		OrganizerID:       organizerID,
		Location:          input.Location,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNameConflict) {
			return nil, ErrEventNameConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, nil, eventID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}

	teams, err := s.teamRepo.ListByEvent(ctx, nil, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams of event %d: %w", eventID, err)
	}
	event.Teams = make([]models.Team, 0, len(teams))
	for _, t := range teams {
		event.Teams = append(event.Teams, *t)
	}

	s.fillBannerURL(event)
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.eventRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for _, event := range events {
		s.fillBannerURL(event)
	}
	return events, nil
}

func (s *eventService) UploadBanner(ctx context.Context, eventID, requesterID int, contentType string, reader io.Reader) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, nil, eventID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, mapUserRepoError(err)
	}
	if requester.Role != models.RoleAdmin && event.OrganizerID != requesterID {
		return nil, ErrForbiddenOperation
	}

	key := fmt.Sprintf("banners/event_%d", eventID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload banner for event %d: %w", eventID, err)
	}

	if err := s.eventRepo.UpdateBannerKey(ctx, eventID, &result.Key); err != nil {
		return nil, mapEventRepoError(err)
	}

	event.BannerKey = &result.Key
	s.fillBannerURL(event)
	return event, nil
}

// GetStats fans out the four count queries concurrently.
func (s *eventService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.userRepo.Count(gCtx)
		stats.UsersTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.eventRepo.Count(gCtx)
		stats.EventsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.teamRepo.Count(gCtx)
		stats.TeamsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.inviteRepo.CountPending(gCtx)
		stats.PendingInvitesTotal = n
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *eventService) fillBannerURL(event *models.Event) {
	if s.uploader == nil || event.BannerKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*event.BannerKey)
	event.BannerURL = &url
}
