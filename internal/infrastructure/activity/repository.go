package activity

import (
	"context"
	"encoding/json"
	"fmt"

	domain "ebridge-portal/internal/domain/entity/activity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository appends activity events to activity_log.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

// Redelivered events carry the id of the first attempt, so a conflict means the row is
// already stored.
const insertEventQuery = `
	INSERT INTO activity_log (id, user_id, event_type, event_data, occurred_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING`

// AddEvents stores events in one pipelined batch; the batch commits or fails as a whole.
func (r *Repository) AddEvents(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows, err := eventRows(events)
	if err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertEventQuery, row...)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert %d activity events: %w", len(events), err)
	}
	return nil
}

func eventRows(events []domain.Event) ([][]interface{}, error) {
	rows := make([][]interface{}, 0, len(events))
	for i := range events {
		if events[i].ID == uuid.Nil {
			events[i].ID = uuid.New()
		}
		data, err := marshalProperties(events[i].Properties)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", events[i].ID, err)
		}
		rows = append(rows, []interface{}{
			events[i].ID,
			events[i].UserID,
			string(events[i].Kind),
			data,
			events[i].OccurredAt.UTC(),
		})
	}
	return rows, nil
}

func marshalProperties(props map[string]any) ([]byte, error) {
	if len(props) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(props)
}
