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
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamMemberNotFound = errors.New("team member not found")
	ErrTeamEventInvalid   = errors.New("team event conflict or invalid")
	ErrTeamUserInvalid    = errors.New("team user conflict or invalid")
)

// TeamRepository is the roster store: one row per committed team plus one row
// per member. Methods take a SQLExecutor so the formation service can run
// them inside its own transaction.
type TeamRepository interface {
	// Upsert writes the team row keyed by (event_id, name), overwriting the
	// leader on conflict. Fills ID and CreatedAt.
	Upsert(ctx context.Context, exec SQLExecutor, team *models.Team) error

	// ReplaceMembers rewrites the member rows of a team to exactly memberIDs.
	ReplaceMembers(ctx context.Context, exec SQLExecutor, teamID int, memberIDs []int) error

	GetByEventAndName(ctx context.Context, exec SQLExecutor, eventID int, name string) (*models.Team, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Team, error)

	// FindByMember returns the team of an event on which userID is a leader
	// or a committed member, or ErrTeamNotFound.
	FindByMember(ctx context.Context, exec SQLExecutor, eventID, userID int) (*models.Team, error)

	RemoveMember(ctx context.Context, exec SQLExecutor, teamID, userID int) error
	Delete(ctx context.Context, exec SQLExecutor, teamID int) error
	DeleteByEventAndName(ctx context.Context, exec SQLExecutor, eventID int, name string) error
	Count(ctx context.Context) (int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Upsert(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (event_id, name, leader_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, name)
		DO UPDATE SET leader_id = EXCLUDED.leader_id
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		team.EventID,
		team.Name,
		team.LeaderID,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "teams_event_id_fkey":
				return ErrTeamEventInvalid
			case "teams_leader_id_fkey":
				return ErrTeamUserInvalid
			}
		}
		return fmt.Errorf("failed to upsert team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) ReplaceMembers(ctx context.Context, exec SQLExecutor, teamID int, memberIDs []int) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM team_members WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to clear team %d members: %w", teamID, err)
	}

	query := `INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)`
	for _, userID := range memberIDs {
		if _, err := executor.ExecContext(ctx, query, teamID, userID); err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				if pqErr.Constraint == "team_members_user_id_fkey" {
					return ErrTeamUserInvalid
				}
			}
			return fmt.Errorf("failed to add member %d to team %d: %w", userID, teamID, err)
		}
	}
	return nil
}

func (r *postgresTeamRepository) GetByEventAndName(ctx context.Context, exec SQLExecutor, eventID int, name string) (*models.Team, error) {
	query := `
		SELECT id, event_id, name, leader_id, created_at
		FROM teams
		WHERE event_id = $1 AND name = $2`

	team := &models.Team{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, eventID, name).Scan(
		&team.ID,
		&team.EventID,
		&team.Name,
		&team.LeaderID,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %q of event %d: %w", name, eventID, err)
	}

	if err := r.loadMembers(ctx, exec, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Team, error) {
	query := `
		SELECT id, event_id, name, leader_id, created_at
		FROM teams
		WHERE event_id = $1
		ORDER BY name ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := rows.Scan(&team.ID, &team.EventID, &team.Name, &team.LeaderID, &team.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, team := range teams {
		if err := r.loadMembers(ctx, exec, team); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (r *postgresTeamRepository) FindByMember(ctx context.Context, exec SQLExecutor, eventID, userID int) (*models.Team, error) {
	query := `
		SELECT t.id, t.event_id, t.name, t.leader_id, t.created_at
		FROM teams t
		LEFT JOIN team_members tm ON tm.team_id = t.id
		WHERE t.event_id = $1 AND (t.leader_id = $2 OR tm.user_id = $2)
		LIMIT 1`

	team := &models.Team{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, eventID, userID).Scan(
		&team.ID,
		&team.EventID,
		&team.Name,
		&team.LeaderID,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team of user %d in event %d: %w", userID, eventID, err)
	}

	if err := r.loadMembers(ctx, exec, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) RemoveMember(ctx context.Context, exec SQLExecutor, teamID, userID int) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, teamID int) error {
	// team_members rows go away via ON DELETE CASCADE
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) DeleteByEventAndName(ctx context.Context, exec SQLExecutor, eventID int, name string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM teams WHERE event_id = $1 AND name = $2`, eventID, name)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (r *postgresTeamRepository) loadMembers(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.role, u.created_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = $1
		ORDER BY u.id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, team.ID)
	if err != nil {
		return fmt.Errorf("failed to load members of team %d: %w", team.ID, err)
	}
	defer rows.Close()

	members := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if scanErr := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Role, &user.CreatedAt); scanErr != nil {
			return scanErr
		}
		members = append(members, user)
	}
	if err = rows.Err(); err != nil {
		return err
	}

	team.Members = members
	return nil
}
