package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arbeit/talentportal/internal/domain"
)

// ClientRepository implements domain.ClientRepository using PostgreSQL
type ClientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *sql.DB, logger *slog.Logger) *ClientRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientRepository{db: db, logger: logger}
}

const clientColumns = `client_id, company_name, status, created_at, created_by, updated_at`

func scanClient(row rowScanner) (*domain.Client, error) {
	c := &domain.Client{}
	if err := row.Scan(&c.ClientID, &c.CompanyName, &c.Status, &c.CreatedAt, &c.CreatedBy, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// Create creates a new client
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (client_id, company_name, status, created_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		client.ClientID, client.CompanyName, client.Status, client.CreatedAt, client.CreatedBy, client.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client %s: %w", client.CompanyName, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE client_id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// GetByName retrieves a client by company name, ignoring case
func (r *ClientRepository) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE LOWER(company_name) = LOWER($1)`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get client by name: %w", err)
	}
	return c, nil
}

// Update updates an existing client
func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET company_name = $1, status = $2, updated_at = $3
		WHERE client_id = $4
	`
	res, err := r.db.ExecContext(ctx, query, client.CompanyName, client.Status, client.UpdatedAt, client.ClientID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client %s: %w", client.CompanyName, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %s: %w", client.ClientID, domain.ErrNotFound)
	}
	return nil
}

// List returns clients oldest first, optionally filtered by company name
func (r *ClientRepository) List(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	var p placeholders
	query := `SELECT ` + clientColumns + ` FROM clients`
	if filter.Search != "" {
		query += ` WHERE company_name ILIKE ` + p.add("%"+escapeLike(filter.Search)+"%")
	}
	query += ` ORDER BY created_at, client_id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + p.add(filter.Limit)
	}
	if filter.Skip > 0 {
		query += ` OFFSET ` + p.add(filter.Skip)
	}

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	out := []*domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
