package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
)

// CandidateAccountRepository implements domain.CandidateAccountRepository
// using PostgreSQL
type CandidateAccountRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCandidateAccountRepository(db *sql.DB, logger *slog.Logger) *CandidateAccountRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CandidateAccountRepository{db: db, logger: logger}
}

const candidateAccountColumns = `account_id, email, name, phone, linkedin_url, current_company, experience_years,
	password_hash, must_change_password, status, created_at, created_by, updated_at, last_login_at`

func scanCandidateAccount(row rowScanner) (*domain.CandidateAccount, error) {
	a := &domain.CandidateAccount{}
	var years sql.NullInt64
	var lastLogin sql.NullTime
	err := row.Scan(&a.AccountID, &a.Email, &a.Name, &a.Phone, &a.LinkedInURL, &a.CurrentCompany, &years,
		&a.PasswordHash, &a.MustChangePassword, &a.Status, &a.CreatedAt, &a.CreatedBy, &a.UpdatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	if years.Valid {
		n := int(years.Int64)
		a.ExperienceYears = &n
	}
	if lastLogin.Valid {
		a.LastLoginAt = &lastLogin.Time
	}
	return a, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

// Create inserts a new portal account
func (r *CandidateAccountRepository) Create(ctx context.Context, a *domain.CandidateAccount) error {
	query := `
		INSERT INTO candidate_accounts (` + candidateAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.AccountID, a.Email, a.Name, a.Phone, a.LinkedInURL, a.CurrentCompany, nullInt(a.ExperienceYears),
		a.PasswordHash, a.MustChangePassword, a.Status, a.CreatedAt, a.CreatedBy, a.UpdatedAt, nullTime(a.LastLoginAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("candidate account %s: %w", a.Email, domain.ErrDuplicate)
		}
		r.logger.Error("failed to create candidate account",
			slog.String("account_id", a.AccountID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create candidate account: %w", err)
	}
	return nil
}

func (r *CandidateAccountRepository) getOne(ctx context.Context, where, key string) (*domain.CandidateAccount, error) {
	query := `SELECT ` + candidateAccountColumns + ` FROM candidate_accounts WHERE ` + where
	a, err := scanCandidateAccount(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("candidate account %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get candidate account: %w", err)
	}
	return a, nil
}

// GetByID retrieves an account by ID
func (r *CandidateAccountRepository) GetByID(ctx context.Context, id string) (*domain.CandidateAccount, error) {
	return r.getOne(ctx, `account_id = $1`, id)
}

// GetByEmail retrieves an account by email, ignoring case
func (r *CandidateAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.CandidateAccount, error) {
	return r.getOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

// Update rewrites the mutable columns of an account
func (r *CandidateAccountRepository) Update(ctx context.Context, a *domain.CandidateAccount) error {
	query := `
		UPDATE candidate_accounts
		SET name = $1, phone = $2, linkedin_url = $3, current_company = $4, experience_years = $5,
			password_hash = $6, must_change_password = $7, status = $8, updated_at = $9, last_login_at = $10
		WHERE account_id = $11
	`
	res, err := r.db.ExecContext(ctx, query,
		a.Name, a.Phone, a.LinkedInURL, a.CurrentCompany, nullInt(a.ExperienceYears),
		a.PasswordHash, a.MustChangePassword, a.Status, a.UpdatedAt, nullTime(a.LastLoginAt),
		a.AccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("candidate account %s: %w", a.AccountID, domain.ErrNotFound)
	}
	return nil
}

// List returns accounts newest first
func (r *CandidateAccountRepository) List(ctx context.Context, filter domain.CandidateAccountFilter) ([]*domain.CandidateAccount, error) {
	var p placeholders
	query := `SELECT ` + candidateAccountColumns + ` FROM candidate_accounts WHERE TRUE`
	if filter.Status != "" {
		query += ` AND status = ` + p.add(filter.Status)
	}
	if filter.Search != "" {
		like := p.add("%" + escapeLike(filter.Search) + "%")
		query += ` AND (name ILIKE ` + like + ` OR email ILIKE ` + like + `)`
	}
	query += ` ORDER BY created_at DESC, account_id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + p.add(filter.Limit)
	}
	if filter.Skip > 0 {
		query += ` OFFSET ` + p.add(filter.Skip)
	}

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate accounts: %w", err)
	}
	defer rows.Close()

	out := []*domain.CandidateAccount{}
	for rows.Next() {
		a, err := scanCandidateAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
