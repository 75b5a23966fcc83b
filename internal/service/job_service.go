package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/security"
)

// JobView is a job with its client's company name
type JobView struct {
	*domain.Job
	CompanyName string
}

// JobInput is the payload of a job creation
type JobInput struct {
	ClientID        string
	Title           string
	Location        string
	EmploymentType  string
	ExperienceRange domain.ExperienceRange
	SalaryRange     *domain.SalaryRange
	WorkModel       string
	RequiredSkills  []string
	Description     string
	Status          string
}

// JobPatch holds the fields of a partial job update. Nil fields are left alone.
type JobPatch struct {
	ClientID        *string
	Title           *string
	Location        *string
	EmploymentType  *string
	ExperienceRange *domain.ExperienceRange
	SalaryRange     *domain.SalaryRange
	WorkModel       *string
	RequiredSkills  *[]string
	Description     *string
	Status          *string
}

func (p JobPatch) empty() bool {
	return p.ClientID == nil && p.Title == nil && p.Location == nil && p.EmploymentType == nil &&
		p.ExperienceRange == nil && p.SalaryRange == nil && p.WorkModel == nil &&
		p.RequiredSkills == nil && p.Description == nil && p.Status == nil
}

type JobService struct {
	jobs    domain.JobRepository
	clients *ClientService
	policy  *security.Policy
	logger  *slog.Logger
	now     func() time.Time
}

func NewJobService(jobs domain.JobRepository, clients *ClientService, policy *security.Policy, logger *slog.Logger) *JobService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{jobs: jobs, clients: clients, policy: policy, logger: logger, now: time.Now}
}

func (s *JobService) view(ctx context.Context, j *domain.Job) *JobView {
	return &JobView{Job: j, CompanyName: s.clients.CompanyName(ctx, j.ClientID)}
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			out = append(out, sk)
		}
	}
	return out
}

// Create stores a new job. Client users always create for their own tenant.
func (s *JobService) Create(ctx context.Context, p security.Principal, in JobInput) (*JobView, error) {
	if err := s.policy.Require(p, security.PermCreateJob); err != nil {
		return nil, err
	}
	clientID := strings.TrimSpace(in.ClientID)
	if !p.IsStaff() {
		clientID = p.ClientID
	}
	if clientID == "" {
		return nil, badRequest("client_id is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationError("title is required")
	}
	ok, err := s.clients.exists(ctx, clientID)
	if err != nil {
		return nil, internalError(s.logger, "failed to load client", err)
	}
	if !ok {
		return nil, notFound("Client not found")
	}

	status := in.Status
	if status == "" {
		status = domain.JobStatusDraft
	}
	now := s.now().UTC()
	job := &domain.Job{
		JobID:           newID("job"),
		ClientID:        clientID,
		Title:           strings.TrimSpace(in.Title),
		Location:        in.Location,
		EmploymentType:  in.EmploymentType,
		ExperienceRange: in.ExperienceRange,
		SalaryRange:     in.SalaryRange,
		WorkModel:       in.WorkModel,
		RequiredSkills:  normalizeSkills(in.RequiredSkills),
		Description:     in.Description,
		Status:          status,
		CreatedAt:       now,
		CreatedBy:       p.Email,
		UpdatedAt:       now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, internalError(s.logger, "failed to create job", err)
	}
	s.logger.Info("job created",
		slog.String("job_id", job.JobID),
		slog.String("client_id", job.ClientID),
		slog.String("created_by", p.Email),
	)
	return s.view(ctx, job), nil
}

// List applies the caller's tenant scope to the requested filter
func (s *JobService) List(ctx context.Context, p security.Principal, filter domain.JobFilter) ([]JobView, error) {
	if err := s.policy.Require(p, security.PermReadJob); err != nil {
		return nil, err
	}
	filter.ClientID = s.policy.ListScope(p, filter.ClientID)
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, internalError(s.logger, "failed to list jobs", err)
	}
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, *s.view(ctx, j))
	}
	return out, nil
}

// load fetches a job and checks perm plus tenant ownership. Unknown ids
// give 404 before any tenant decision.
func (s *JobService) load(ctx context.Context, p security.Principal, id string, perm security.Permission) (*domain.Job, error) {
	if err := s.policy.Require(p, perm); err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, notFound("Job not found")
		}
		return nil, internalError(s.logger, "failed to load job", err)
	}
	if err := s.policy.AuthorizeResource(p, security.Resource{Type: security.ResourceJob, ID: job.JobID, OwnerClientID: job.ClientID}); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) Get(ctx context.Context, p security.Principal, id string) (*JobView, error) {
	job, err := s.load(ctx, p, id, security.PermReadJob)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, job), nil
}

// Update applies a partial update. A client user may send its own
// client_id back but never a different one.
func (s *JobService) Update(ctx context.Context, p security.Principal, id string, patch JobPatch) (*JobView, error) {
	if patch.empty() {
		return nil, badRequest("No fields to update")
	}
	job, err := s.load(ctx, p, id, security.PermUpdateJob)
	if err != nil {
		return nil, err
	}

	if patch.ClientID != nil && *patch.ClientID != job.ClientID {
		if !p.IsStaff() {
			s.logger.Warn("client user tried to move job to another tenant",
				slog.String("user", p.Email),
				slog.String("job_id", job.JobID),
			)
			return nil, forbidden(security.AccessDenied)
		}
		ok, err := s.clients.exists(ctx, *patch.ClientID)
		if err != nil {
			return nil, internalError(s.logger, "failed to load client", err)
		}
		if !ok {
			return nil, notFound("Client not found")
		}
		job.ClientID = *patch.ClientID
	}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, validationError("title cannot be empty")
		}
		job.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Location != nil {
		job.Location = *patch.Location
	}
	if patch.EmploymentType != nil {
		job.EmploymentType = *patch.EmploymentType
	}
	if patch.ExperienceRange != nil {
		job.ExperienceRange = *patch.ExperienceRange
	}
	if patch.SalaryRange != nil {
		job.SalaryRange = patch.SalaryRange
	}
	if patch.WorkModel != nil {
		job.WorkModel = *patch.WorkModel
	}
	if patch.RequiredSkills != nil {
		job.RequiredSkills = normalizeSkills(*patch.RequiredSkills)
	}
	if patch.Description != nil {
		job.Description = *patch.Description
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	job.UpdatedAt = s.now().UTC()

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, internalError(s.logger, "failed to update job", err)
	}
	return s.view(ctx, job), nil
}

func (s *JobService) Close(ctx context.Context, p security.Principal, id string) error {
	job, err := s.load(ctx, p, id, security.PermCloseJob)
	if err != nil {
		return err
	}
	job.Status = domain.JobStatusClosed
	job.UpdatedAt = s.now().UTC()
	if err := s.jobs.Update(ctx, job); err != nil {
		return internalError(s.logger, "failed to close job", err)
	}
	s.logger.Info("job closed", slog.String("job_id", id), slog.String("by", p.Email))
	return nil
}
