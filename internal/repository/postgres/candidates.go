package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/arbeit/talentportal/internal/domain"
)

// CandidateRepository implements domain.CandidateRepository using PostgreSQL
type CandidateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCandidateRepository(db *sql.DB, logger *slog.Logger) *CandidateRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CandidateRepository{db: db, logger: logger}
}

const candidateColumns = `candidate_id, job_id, name, current_position, email, phone, linkedin, skills,
	experience, education, summary, cv_file_url, cv_text_original, cv_text_redacted, status, ai_story,
	created_at, created_by, updated_at`

func scanCandidate(row rowScanner) (*domain.Candidate, error) {
	c := &domain.Candidate{}
	var skills pq.StringArray
	var experience, education, story []byte
	var cvURL sql.NullString
	err := row.Scan(
		&c.CandidateID, &c.JobID, &c.Name, &c.CurrentRole, &c.Email, &c.Phone, &c.LinkedIn, &skills,
		&experience, &education, &c.Summary, &cvURL, &c.CVTextOriginal, &c.CVTextRedacted, &c.Status, &story,
		&c.CreatedAt, &c.CreatedBy, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Skills = []string(skills)
	if c.Skills == nil {
		c.Skills = []string{}
	}
	c.CVFileURL = cvURL.String
	if err := decodeJSON(experience, &c.Experience); err != nil {
		return nil, err
	}
	if err := decodeJSON(education, &c.Education); err != nil {
		return nil, err
	}
	if len(story) > 0 {
		c.AIStory = &domain.CandidateStory{}
		if err := decodeJSON(story, c.AIStory); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// candidateArgs binds every mutable column; the caller appends the audit
// columns it needs.
func candidateArgs(c *domain.Candidate) ([]any, error) {
	experience, err := jsonValue(nonNil(c.Experience))
	if err != nil {
		return nil, err
	}
	education, err := jsonValue(nonNil(c.Education))
	if err != nil {
		return nil, err
	}
	var story any
	if c.AIStory != nil {
		if story, err = jsonValue(c.AIStory); err != nil {
			return nil, err
		}
	}
	return []any{
		c.CandidateID, c.JobID, c.Name, c.CurrentRole, c.Email, c.Phone, c.LinkedIn, pq.Array(nonNil(c.Skills)),
		experience, education, c.Summary, nullString(c.CVFileURL), c.CVTextOriginal, c.CVTextRedacted, c.Status, story,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	args, err := candidateArgs(c)
	if err != nil {
		return err
	}
	args = append(args, c.CreatedAt, c.CreatedBy, c.UpdatedAt)
	query := `INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("candidate %s: %w", c.CandidateID, domain.ErrDuplicate)
		}
		r.logger.Error("failed to create candidate", slog.String("candidate_id", c.CandidateID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE candidate_id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("candidate %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

func (r *CandidateRepository) Update(ctx context.Context, c *domain.Candidate) error {
	args, err := candidateArgs(c)
	if err != nil {
		return err
	}
	args = append(args, c.UpdatedAt)
	query := `
		UPDATE candidates
		SET job_id = $2, name = $3, current_position = $4, email = $5, phone = $6, linkedin = $7, skills = $8,
			experience = $9, education = $10, summary = $11, cv_file_url = $12, cv_text_original = $13,
			cv_text_redacted = $14, status = $15, ai_story = $16, updated_at = $17
		WHERE candidate_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("candidate %s: %w", c.CandidateID, domain.ErrNotFound)
	}
	return nil
}

// ListByJob returns the job's candidates newest first
func (r *CandidateRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE job_id = $1 ORDER BY created_at DESC, candidate_id`
	rows, err := r.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	out := []*domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CandidateRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE candidate_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check candidate: %w", err)
	}
	return exists, nil
}
