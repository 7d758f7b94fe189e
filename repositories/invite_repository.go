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
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteConflict      = errors.New("invite already exists for this invitee")
	ErrInviteEventInvalid  = errors.New("invite event conflict or invalid")
	ErrInviteUserInvalid   = errors.New("invite user conflict or invalid")
	ErrInviteAlreadyClosed = errors.New("invite already accepted")
)

// InviteRepository is the append-only invite ledger, scoped per event.
type InviteRepository interface {
	// Create appends a pending invite. Fills ID and CreatedAt.
	Create(ctx context.Context, exec SQLExecutor, invite *models.Invite) error

	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Invite, error)

	// ListByInviter returns the invites authored by inviterID in an event,
	// optionally filtered to accepted ones only.
	ListByInviter(ctx context.Context, exec SQLExecutor, eventID, inviterID int, acceptedOnly bool) ([]*models.Invite, error)

	// CountByInviter counts pending plus accepted invites authored by
	// inviterID in an event.
	CountByInviter(ctx context.Context, exec SQLExecutor, eventID, inviterID int) (int, error)

	// MarkAccepted flips accepted to true. Returns ErrInviteAlreadyClosed if
	// the invite was already accepted.
	MarkAccepted(ctx context.Context, exec SQLExecutor, id int) error

	Delete(ctx context.Context, exec SQLExecutor, id int) error

	// HasAcceptedForInvitee reports whether inviteeID already holds an
	// accepted invite anywhere in the event.
	HasAcceptedForInvitee(ctx context.Context, exec SQLExecutor, eventID, inviteeID int) (bool, error)

	// ListPendingByInvitee is the projection query: pending invites of a user
	// across all events, joined with the inviter profile and event name.
	// A missing inviter row yields empty name and email fields.
	ListPendingByInvitee(ctx context.Context, inviteeID int) ([]*models.PendingInvite, error)

	CountPending(ctx context.Context) (int, error)
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

func (r *postgresInviteRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresInviteRepository) Create(ctx context.Context, exec SQLExecutor, invite *models.Invite) error {
	query := `
		INSERT INTO invites (event_id, inviter_id, invitee_id, accepted)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		invite.EventID,
		invite.InviterID,
		invite.InviteeID,
	).Scan(&invite.ID, &invite.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "invites_event_id_inviter_id_invitee_id_key" {
					return ErrInviteConflict
				}
			case "23503":
				switch pqErr.Constraint {
				case "invites_event_id_fkey":
					return ErrInviteEventInvalid
				case "invites_inviter_id_fkey", "invites_invitee_id_fkey":
					return ErrInviteUserInvalid
				}
			}
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	invite.Accepted = false
	return nil
}

func (r *postgresInviteRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Invite, error) {
	query := `
		SELECT id, event_id, inviter_id, invitee_id, accepted, created_at
		FROM invites
		WHERE id = $1`

	invite := &models.Invite{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(
		&invite.ID,
		&invite.EventID,
		&invite.InviterID,
		&invite.InviteeID,
		&invite.Accepted,
		&invite.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite %d: %w", id, err)
	}
	return invite, nil
}

func (r *postgresInviteRepository) ListByInviter(ctx context.Context, exec SQLExecutor, eventID, inviterID int, acceptedOnly bool) ([]*models.Invite, error) {
	query := `
		SELECT id, event_id, inviter_id, invitee_id, accepted, created_at
		FROM invites
		WHERE event_id = $1 AND inviter_id = $2`
	if acceptedOnly {
		query += ` AND accepted = TRUE`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, eventID, inviterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]*models.Invite, 0)
	for rows.Next() {
		invite := &models.Invite{}
		if scanErr := rows.Scan(
			&invite.ID,
			&invite.EventID,
			&invite.InviterID,
			&invite.InviteeID,
			&invite.Accepted,
			&invite.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		invites = append(invites, invite)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *postgresInviteRepository) CountByInviter(ctx context.Context, exec SQLExecutor, eventID, inviterID int) (int, error) {
	query := `SELECT COUNT(*) FROM invites WHERE event_id = $1 AND inviter_id = $2`
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx, query, eventID, inviterID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invites of inviter %d in event %d: %w", inviterID, eventID, err)
	}
	return count, nil
}

func (r *postgresInviteRepository) MarkAccepted(ctx context.Context, exec SQLExecutor, id int) error {
	// accepted invites are never re-opened, so only a pending row may flip
	query := `UPDATE invites SET accepted = TRUE WHERE id = $1 AND accepted = FALSE`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing row from an already-accepted one.
		if _, getErr := r.GetByID(ctx, exec, id); getErr != nil {
			return getErr
		}
		return ErrInviteAlreadyClosed
	}
	return nil
}

func (r *postgresInviteRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM invites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}

func (r *postgresInviteRepository) HasAcceptedForInvitee(ctx context.Context, exec SQLExecutor, eventID, inviteeID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM invites WHERE event_id = $1 AND invitee_id = $2 AND accepted = TRUE)`
	var exists bool
	err := r.getExecutor(exec).QueryRowContext(ctx, query, eventID, inviteeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check accepted invites of user %d in event %d: %w", inviteeID, eventID, err)
	}
	return exists, nil
}

func (r *postgresInviteRepository) ListPendingByInvitee(ctx context.Context, inviteeID int) ([]*models.PendingInvite, error) {
	// LEFT JOIN on the inviter: the projection must survive a deleted profile.
	query := `
		SELECT i.id, i.event_id, e.name, e.sport, i.inviter_id,
		       COALESCE(u.first_name || ' ' || u.last_name, ''), COALESCE(u.email, ''),
		       i.created_at
		FROM invites i
		JOIN events e ON e.id = i.event_id
		LEFT JOIN users u ON u.id = i.inviter_id
		WHERE i.invitee_id = $1 AND i.accepted = FALSE
		ORDER BY i.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, inviteeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make([]*models.PendingInvite, 0)
	for rows.Next() {
		p := &models.PendingInvite{}
		if scanErr := rows.Scan(
			&p.InviteID,
			&p.EventID,
			&p.EventName,
			&p.Sport,
			&p.InviterID,
			&p.InviterName,
			&p.InviterEmail,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		pending = append(pending, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *postgresInviteRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invites WHERE accepted = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending invites: %w", err)
	}
	return count, nil
}
