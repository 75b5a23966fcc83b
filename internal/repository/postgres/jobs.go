package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/arbeit/talentportal/internal/domain"
)

// JobRepository implements domain.JobRepository using PostgreSQL
type JobRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewJobRepository(db *sql.DB, logger *slog.Logger) *JobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRepository{db: db, logger: logger}
}

const jobColumns = `job_id, client_id, title, location, employment_type, experience_range, salary_range,
	work_model, required_skills, description, status, created_at, created_by, updated_at`

func scanJob(row rowScanner) (*domain.Job, error) {
	j := &domain.Job{}
	var experience, salary []byte
	var skills pq.StringArray
	err := row.Scan(
		&j.JobID, &j.ClientID, &j.Title, &j.Location, &j.EmploymentType, &experience, &salary,
		&j.WorkModel, &skills, &j.Description, &j.Status, &j.CreatedAt, &j.CreatedBy, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(experience, &j.ExperienceRange); err != nil {
		return nil, err
	}
	if len(salary) > 0 {
		j.SalaryRange = &domain.SalaryRange{}
		if err := decodeJSON(salary, j.SalaryRange); err != nil {
			return nil, err
		}
	}
	j.RequiredSkills = []string(skills)
	if j.RequiredSkills == nil {
		j.RequiredSkills = []string{}
	}
	return j, nil
}

func jobArgs(j *domain.Job) ([]any, error) {
	experience, err := jsonValue(j.ExperienceRange)
	if err != nil {
		return nil, err
	}
	var salary any
	if j.SalaryRange != nil {
		if salary, err = jsonValue(j.SalaryRange); err != nil {
			return nil, err
		}
	}
	return []any{
		j.JobID, j.ClientID, j.Title, j.Location, j.EmploymentType, experience, salary,
		j.WorkModel, pq.Array(j.RequiredSkills), j.Description, j.Status, j.CreatedAt, j.CreatedBy, j.UpdatedAt,
	}, nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	args, err := jobArgs(job)
	if err != nil {
		return err
	}
	query := `INSERT INTO jobs (` + jobColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("job %s: %w", job.JobID, domain.ErrDuplicate)
		}
		r.logger.Error("failed to create job", slog.String("job_id", job.JobID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	args, err := jobArgs(job)
	if err != nil {
		return err
	}
	// created_at and created_by never change
	args = append(args[:11], args[13])
	query := `
		UPDATE jobs
		SET client_id = $2, title = $3, location = $4, employment_type = $5, experience_range = $6,
			salary_range = $7, work_model = $8, required_skills = $9, description = $10, status = $11,
			updated_at = $12
		WHERE job_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job %s: %w", job.JobID, domain.ErrNotFound)
	}
	return nil
}

// List returns matching jobs newest first
func (r *JobRepository) List(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	var p placeholders
	var where []string
	if filter.ClientID != "" {
		where = append(where, "client_id = "+p.add(filter.ClientID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+p.add(filter.Status))
	}
	if filter.Search != "" {
		ph := p.add("%" + escapeLike(filter.Search) + "%")
		where = append(where, "(title ILIKE "+ph+" OR EXISTS (SELECT 1 FROM unnest(required_skills) AS s WHERE s ILIKE "+ph+"))")
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, job_id`
	if filter.Limit > 0 {
		query += ` LIMIT ` + p.add(filter.Limit)
	}
	if filter.Skip > 0 {
		query += ` OFFSET ` + p.add(filter.Skip)
	}

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	out := []*domain.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
