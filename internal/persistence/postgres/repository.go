package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rubemlrm/jogging-tracker/internal/domain"
	"github.com/Rubemlrm/jogging-tracker/internal/events"
	"github.com/Rubemlrm/jogging-tracker/internal/observability"
	"github.com/Rubemlrm/jogging-tracker/internal/persistence"
)

const uniqueViolation = "23505"

// Repository provides Postgres-backed persistence for users, activities, weather,
// credentials and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*Repository)(nil)

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectActivity = `SELECT a.activity_id, a.owner_id, u.username, a.activity_date, a.distance, w.title, a.created_at, a.updated_at
    FROM activities a
    JOIN users u ON u.user_id = a.owner_id
    LEFT JOIN weather w ON w.weather_id = a.weather_id`

const selectUser = `SELECT user_id, username, email, first_name, last_name, password_hash, is_staff, is_manager, date_joined FROM users`

// CreateActivity persists the activity and its activity.created event in one transaction.
func (r *Repository) CreateActivity(ctx context.Context, a domain.Activity) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO activities (activity_id, owner_id, activity_date, distance, weather_id, created_at, updated_at)
            VALUES ($1, $2, $3, $4, (SELECT weather_id FROM weather WHERE title = $5), $6, $7)`
		if _, err := tx.Exec(ctx, stmt, a.ID, a.OwnerID, a.Date, a.Distance, a.Weather, a.CreatedAt, a.UpdatedAt); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, activityEvent(events.TypeActivityCreated, a))
	})
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(a.UpdatedAt)
	return nil
}

// GetActivity fetches an activity inside the scope.
func (r *Repository) GetActivity(ctx context.Context, id string, scope domain.ActivityScope) (*domain.Activity, error) {
	where, args := activityWhere(scope, []any{id}, "a.activity_id = $1")
	row := r.pool.QueryRow(ctx, selectActivity+where, args...)
	a, err := scanActivity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListActivities returns a page of activities inside the scope, newest dates first.
func (r *Repository) ListActivities(ctx context.Context, scope domain.ActivityScope, page domain.Page) ([]domain.Activity, int, error) {
	where, args := activityWhere(scope, nil)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := persistence.Window(page)
	query := fmt.Sprintf("%s%s ORDER BY a.activity_date DESC, a.activity_id DESC LIMIT $%d OFFSET $%d",
		selectActivity, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	results, err := collectActivities(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// ListActivitiesByOwner returns every activity of one owner in date order.
func (r *Repository) ListActivitiesByOwner(ctx context.Context, ownerID string) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx, selectActivity+` WHERE a.owner_id = $1 ORDER BY a.activity_date, a.activity_id`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectActivities(rows, 0)
}

// UpdateActivity rewrites the activity and records activity.updated.
func (r *Repository) UpdateActivity(ctx context.Context, a domain.Activity) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		const stmt = `UPDATE activities
            SET owner_id = $2, activity_date = $3, distance = $4,
                weather_id = (SELECT weather_id FROM weather WHERE title = $5), updated_at = $6
            WHERE activity_id = $1`
		tag, err := tx.Exec(ctx, stmt, a.ID, a.OwnerID, a.Date, a.Distance, a.Weather, a.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return insertOutbox(ctx, tx, activityEvent(events.TypeActivityUpdated, a))
	})
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(a.UpdatedAt)
	return nil
}

// DeleteActivity removes the activity and records activity.deleted.
func (r *Repository) DeleteActivity(ctx context.Context, a domain.Activity) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM activities WHERE activity_id = $1`, a.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return insertOutbox(ctx, tx, outboxEvent{
			aggregateType: "activity",
			aggregateID:   a.ID,
			eventType:     events.TypeActivityDeleted,
			topic:         events.ActivityTopic,
			partitionKey:  a.OwnerID,
			payload: events.ActivityDeleted{
				ActivityID: a.ID,
				OwnerID:    a.OwnerID,
				OccurredAt: time.Now().UTC(),
			},
		})
	})
}

// CreateUser inserts a user; a duplicate username yields domain.ErrUsernameTaken.
func (r *Repository) CreateUser(ctx context.Context, u domain.User) error {
	const stmt = `INSERT INTO users (user_id, username, email, first_name, last_name, password_hash, is_staff, is_manager, date_joined)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, stmt, u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff, u.IsManager, u.DateJoined)
	return mapUserError(err)
}

// GetUserByID fetches a user regardless of scope.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, selectUser+` WHERE user_id = $1`, id)
}

// GetUserByUsername fetches a user inside the scope.
func (r *Repository) GetUserByUsername(ctx context.Context, username string, scope domain.UserScope) (*domain.User, error) {
	where, args := userWhere(scope, []any{username}, "username = $1")
	return r.getUser(ctx, selectUser+where, args...)
}

// ListUsers returns a page of users inside the scope, most recently joined first.
func (r *Repository) ListUsers(ctx context.Context, scope domain.UserScope, page domain.Page) ([]domain.User, int, error) {
	where, args := userWhere(scope, nil)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := persistence.Window(page)
	query := fmt.Sprintf("%s%s ORDER BY date_joined DESC, username LIMIT $%d OFFSET $%d",
		selectUser, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := make([]domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// UpdateUser rewrites the user row.
func (r *Repository) UpdateUser(ctx context.Context, u domain.User) error {
	const stmt = `UPDATE users
        SET username = $2, email = $3, first_name = $4, last_name = $5, password_hash = $6, is_staff = $7, is_manager = $8
        WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, stmt, u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff, u.IsManager)
	if err != nil {
		return mapUserError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteUser removes the user; activities and sessions cascade.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var username string
		err := tx.QueryRow(ctx, `DELETE FROM users WHERE user_id = $1 RETURNING username`, id).Scan(&username)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return insertOutbox(ctx, tx, outboxEvent{
			aggregateType: "user",
			aggregateID:   id,
			eventType:     events.TypeUserDeleted,
			topic:         events.UserTopic,
			partitionKey:  id,
			payload:       events.UserDeleted{UserID: id, Username: username, OccurredAt: time.Now().UTC()},
		})
	})
}

// GetWeather fetches a weather row by title.
func (r *Repository) GetWeather(ctx context.Context, title string) (*domain.Weather, error) {
	var w domain.Weather
	err := r.pool.QueryRow(ctx, `SELECT weather_id, title, description FROM weather WHERE title = $1`, title).
		Scan(&w.ID, &w.Title, &w.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWeather returns a page of weather rows ordered by title.
func (r *Repository) ListWeather(ctx context.Context, page domain.Page) ([]domain.Weather, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM weather`).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := persistence.Window(page)
	rows, err := r.pool.Query(ctx, `SELECT weather_id, title, description FROM weather ORDER BY title LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := make([]domain.Weather, 0, limit)
	for rows.Next() {
		var w domain.Weather
		if err := rows.Scan(&w.ID, &w.Title, &w.Description); err != nil {
			return nil, 0, err
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// CreateSession stores a login session.
func (r *Repository) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sessions (session_id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

// GetSession fetches a session by id.
func (r *Repository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	err := r.pool.QueryRow(ctx, `SELECT session_id, user_id, created_at, expires_at FROM sessions WHERE session_id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session and reports whether it existed.
func (r *Repository) DeleteSession(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RevokeToken blacklists a token id and reports whether it was newly revoked.
func (r *Repository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `INSERT INTO revoked_tokens (token_id, expires_at) VALUES ($1, $2) ON CONFLICT (token_id) DO NOTHING`,
		tokenID, expiresAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsTokenRevoked reports whether the token id has been blacklisted.
func (r *Repository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, tokenID).Scan(&revoked)
	return revoked, err
}

// PurgeExpired drops sessions and revoked tokens whose expiry has passed.
func (r *Repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		sessions, err := tx.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
		if err != nil {
			return err
		}
		tokens, err := tx.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now)
		if err != nil {
			return err
		}
		purged = sessions.RowsAffected() + tokens.RowsAffected()
		return nil
	})
	return purged, err
}

func (r *Repository) inTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) getUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// activityWhere builds a WHERE clause from fixed conditions plus the scope.
func activityWhere(scope domain.ActivityScope, args []any, conds ...string) (string, []any) {
	if !scope.All {
		args = append(args, scope.OwnerIDs)
		conds = append(conds, fmt.Sprintf("a.owner_id = ANY($%d)", len(args)))
	}
	return joinWhere(conds), args
}

func userWhere(scope domain.UserScope, args []any, conds ...string) (string, []any) {
	if !scope.All {
		args = append(args, scope.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	return joinWhere(conds), args
}

func joinWhere(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(&a.ID, &a.OwnerID, &a.Owner, &a.Date, &a.Distance, &a.Weather, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func collectActivities(rows pgx.Rows, capacity int) ([]domain.Activity, error) {
	defer rows.Close()
	results := make([]domain.Activity, 0, capacity)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsStaff, &u.IsManager, &u.DateJoined)
	return u, err
}

func mapUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrUsernameTaken
	}
	return err
}

type outboxEvent struct {
	aggregateType string
	aggregateID   string
	eventType     string
	topic         string
	partitionKey  string
	payload       any
}

func activityEvent(eventType string, a domain.Activity) outboxEvent {
	return outboxEvent{
		aggregateType: "activity",
		aggregateID:   a.ID,
		eventType:     eventType,
		topic:         events.ActivityTopic,
		partitionKey:  a.OwnerID,
		payload: events.ActivityRecorded{
			ActivityID: a.ID,
			OwnerID:    a.OwnerID,
			Date:       a.Date.Format(domain.DateLayout),
			Distance:   a.Distance,
			Weather:    a.Weather,
			OccurredAt: a.UpdatedAt,
			Version:    events.PayloadVersion,
		},
	}
}

func insertOutbox(ctx context.Context, tx pgx.Tx, ev outboxEvent) error {
	body, err := json.Marshal(ev.payload)
	if err != nil {
		return err
	}
	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = tx.Exec(ctx, stmt, ev.aggregateType, ev.aggregateID, ev.eventType, ev.topic, ev.partitionKey, body)
	return err
}
