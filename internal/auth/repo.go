package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Client struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `json:"revoked"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateClient(ctx context.Context, c Client) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO clients (id, user_agent)
		VALUES (?, ?)
	`, c.ID, c.UserAgent)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *Repo) GetClient(ctx context.Context, id string) (*Client, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_agent, created_at, revoked
		FROM clients
		WHERE id = ?
	`, id)

	var (
		c  Client
		ua sql.NullString
	)
	if err := row.Scan(&c.ID, &ua, &c.CreatedAt, &c.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	c.UserAgent = ua.String
	return &c, nil
}

// Revoke reports false when the client does not exist.
func (r *Repo) Revoke(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE clients SET revoked = 1
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("revoke client: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) ListClients(ctx context.Context, limit int) ([]Client, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_agent, created_at, revoked
		FROM clients
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := []Client{}
	for rows.Next() {
		var (
			c  Client
			ua sql.NullString
		)
		if err := rows.Scan(&c.ID, &ua, &c.CreatedAt, &c.Revoked); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.UserAgent = ua.String
		out = append(out, c)
	}
	return out, rows.Err()
}
