package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Bekarys01/unisport-system/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrEventNameConflict     = errors.New("event name conflict")
	ErrEventOrganizerInvalid = errors.New("event organizer conflict or invalid")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)

	// GetByIDForUpdate reads the event row with a FOR UPDATE lock, so the
	// calling transaction serializes against every other roster or ledger
	// mutation of the same event. Only meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)

	List(ctx context.Context, limit, offset int) ([]*models.Event, error)
	UpdateBannerKey(ctx context.Context, id int, key *string) error
	Count(ctx context.Context) (int, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, sport, participation_type, team_size, teams_needed, organizer_id, location, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Name,
		event.Sport,
		event.ParticipationType,
		event.TeamSize,
		event.TeamsNeeded,
		event.OrganizerID,
		event.Location,
		event.StartDate,
		event.EndDate,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "events_name_key" {
					return ErrEventNameConflict
				}
			case "23503":
				if pqErr.Constraint == "events_organizer_id_fkey" {
					return ErrEventOrganizerInvalid
				}
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	query := `
		SELECT id, name, sport, participation_type, team_size, teams_needed, organizer_id, location, start_date, end_date, banner_key, created_at
		FROM events
		WHERE id = $1`
	return r.getByID(ctx, exec, query, id)
}

func (r *postgresEventRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	query := `
		SELECT id, name, sport, participation_type, team_size, teams_needed, organizer_id, location, start_date, end_date, banner_key, created_at
		FROM events
		WHERE id = $1
		FOR UPDATE`
	return r.getByID(ctx, exec, query, id)
}

func (r *postgresEventRepository) getByID(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Event, error) {
	event := &models.Event{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Sport,
		&event.ParticipationType,
		&event.TeamSize,
		&event.TeamsNeeded,
		&event.OrganizerID,
		&event.Location,
		&event.StartDate,
		&event.EndDate,
		&event.BannerKey,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	query := `
		SELECT id, name, sport, participation_type, team_size, teams_needed, organizer_id, location, start_date, end_date, banner_key, created_at
		FROM events
		ORDER BY start_date ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event := &models.Event{}
		if scanErr := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Sport,
			&event.ParticipationType,
			&event.TeamSize,
			&event.TeamsNeeded,
			&event.OrganizerID,
			&event.Location,
			&event.StartDate,
			&event.EndDate,
			&event.BannerKey,
			&event.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *postgresEventRepository) UpdateBannerKey(ctx context.Context, id int, key *string) error {
	query := `UPDATE events SET banner_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, key, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
