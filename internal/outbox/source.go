package outbox

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// claimTimeout lets another relay pick up rows whose claimer died mid-delivery.
const claimTimeout = time.Minute

// PostgresSource reads the outbox table written by the Postgres repository.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource constructs a PostgresSource.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Claim locks up to limit unpublished rows and stamps claimed_at.
func (s *PostgresSource) Claim(ctx context.Context, limit int) (messages []Message, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const query = `SELECT event_id, aggregate_type, aggregate_id, event_type, topic, partition_key, payload, created_at
        FROM outbox
        WHERE published_at IS NULL AND (claimed_at IS NULL OR claimed_at < NOW() - $2::interval)
        ORDER BY event_id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, limit, claimTimeout)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Topic, &msg.PartitionKey, &msg.Payload, &msg.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		messages = append(messages, msg)
		ids = append(ids, msg.EventID)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		_ = tx.Rollback(ctx)
		return nil, nil
	}
	if _, err = tx.Exec(ctx, `UPDATE outbox SET claimed_at = NOW(), attempts = attempts + 1 WHERE event_id = ANY($1)`, ids); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkPublished stamps published_at on delivered rows.
func (s *PostgresSource) MarkPublished(ctx context.Context, ids []int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET published_at = NOW(), last_error = NULL WHERE event_id = ANY($1)`, ids)
	return err
}

// Release clears the claim so the rows are retried on the next poll.
func (s *PostgresSource) Release(ctx context.Context, ids []int64, reason string) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET claimed_at = NULL, last_error = $2 WHERE event_id = ANY($1)`, ids, reason)
	return err
}
