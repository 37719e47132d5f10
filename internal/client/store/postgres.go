package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"keypulse/internal/client/models"
	"keypulse/pkg/platform/sentinel"
)

// Postgres persists client records one row per client, with the
// token history and ping log as JSONB columns. Keeping the histories
// inside the row preserves the single read-modify-write round trip per
// mutation; the partial indexes below keep identity lookups cheap.
//
// The store is pure I/O; lock checks and cutoff calculations belong to
// the service layer.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const clientColumns = `id, client_name, start_date, end_date, cin, short_key, token_history, ping_log, locked, created_at, updated_at`

func (s *Postgres) FindByIdentity(ctx context.Context, clientName, cin string) (*models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE lower(client_name) = lower($1) AND lower(cin) = lower($2)
	`, clientColumns)
	return scanClient(s.pool.QueryRow(ctx, query, clientName, cin))
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)
	return scanClient(s.pool.QueryRow(ctx, query, id))
}

func (s *Postgres) FindAll(ctx context.Context, filter Filter) ([]*models.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients`, clientColumns)
	args := []any{}
	if filter.Locked != nil {
		query += ` WHERE locked = $1`
		args = append(args, *filter.Locked)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find all clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find all clients: %w", err)
	}
	return clients, nil
}

func (s *Postgres) Insert(ctx context.Context, client *models.Client) error {
	tokenHistory, pingLog, err := encodeHistories(client)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO clients (id, client_name, start_date, end_date, cin, short_key, token_history, ping_log, locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.pool.Exec(ctx, query,
		client.ID,
		client.ClientName,
		client.StartDate,
		client.EndDate,
		client.CIN,
		client.ShortKey,
		tokenHistory,
		pingLog,
		client.Locked,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrAlreadyUsed
	}
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, client *models.Client) error {
	tokenHistory, pingLog, err := encodeHistories(client)
	if err != nil {
		return err
	}
	query := `
		UPDATE clients
		SET token_history = $2, ping_log = $3, locked = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		client.ID,
		tokenHistory,
		pingLog,
		client.Locked,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func encodeHistories(client *models.Client) (tokenHistory, pingLog []byte, err error) {
	tokenHistory, err = json.Marshal(client.TokenHistory)
	if err != nil {
		return nil, nil, fmt.Errorf("encode token history: %w", err)
	}
	pingLog, err = json.Marshal(client.PingLog)
	if err != nil {
		return nil, nil, fmt.Errorf("encode ping log: %w", err)
	}
	return tokenHistory, pingLog, nil
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var (
		c            models.Client
		tokenHistory []byte
		pingLog      []byte
	)
	err := row.Scan(
		&c.ID,
		&c.ClientName,
		&c.StartDate,
		&c.EndDate,
		&c.CIN,
		&c.ShortKey,
		&tokenHistory,
		&pingLog,
		&c.Locked,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	if err := json.Unmarshal(tokenHistory, &c.TokenHistory); err != nil {
		return nil, fmt.Errorf("decode token history: %w", err)
	}
	if err := json.Unmarshal(pingLog, &c.PingLog); err != nil {
		return nil, fmt.Errorf("decode ping log: %w", err)
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == "23505"
}
