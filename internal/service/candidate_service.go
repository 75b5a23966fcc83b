package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/arbeit/talentportal/internal/ai"
	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/observability/metrics"
	"github.com/arbeit/talentportal/internal/pdf"
	"github.com/arbeit/talentportal/internal/redaction"
	"github.com/arbeit/talentportal/internal/security"
	"github.com/arbeit/talentportal/internal/uploads"
)

// CandidateInput is the payload of a manual candidate creation
type CandidateInput struct {
	JobID       string
	Name        string
	CurrentRole string
	Email       string
	Phone       string
	LinkedIn    string
	Skills      []string
	Experience  []domain.ExperienceEntry
	Education   []domain.EducationEntry
	Summary     string
	CVText      string
}

// UploadInput is a CV file posted for a job
type UploadInput struct {
	JobID    string
	Filename string
	Data     []byte
}

// CandidatePatch holds the fields of a partial candidate update
type CandidatePatch struct {
	Name        *string
	CurrentRole *string
	Email       *string
	Phone       *string
	LinkedIn    *string
	Skills      *[]string
	Experience  *[]domain.ExperienceEntry
	Education   *[]domain.EducationEntry
	Summary     *string
	Status      *string
	CVText      *string
}

// CVView is the text served by the CV viewer
type CVView struct {
	CandidateID string
	CVText      string
	IsRedacted  bool
	CVFileURL   string
}

// StoryExport is a rendered story PDF
type StoryExport struct {
	Filename string
	PDF      []byte
}

type CandidateService struct {
	candidates domain.CandidateRepository
	jobs       *JobService
	provider   ai.Provider
	files      *uploads.Store
	exports    ExportCache
	policy     *security.Policy
	logger     *slog.Logger
	now        func() time.Time
}

// NewCandidateService wires the candidate use cases. files may be nil when
// uploads are disabled; a nil exports cache renders every export.
func NewCandidateService(
	candidates domain.CandidateRepository,
	jobs *JobService,
	provider ai.Provider,
	files *uploads.Store,
	exports ExportCache,
	policy *security.Policy,
	logger *slog.Logger,
) *CandidateService {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = ai.NewHeuristicProvider()
	}
	if exports == nil {
		exports = noopExportCache{}
	}
	return &CandidateService{
		candidates: candidates,
		jobs:       jobs,
		provider:   provider,
		files:      files,
		exports:    exports,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// redact computes the redacted text and records what was masked
func redact(text string) string {
	redacted, report := redaction.RedactWithReport(text)
	for kind, n := range report {
		metrics.ObserveRedaction(string(kind), n)
	}
	return redacted
}

// storyInput is the resume handed to the story provider. Contact fields are
// dropped and free text is redacted so no raw PII leaves the portal.
func storyInput(c *domain.Candidate) *domain.ParsedResume {
	r := c.Resume()
	r.Email, r.Phone, r.LinkedIn = "", "", ""
	r.Summary = redaction.Redact(r.Summary)

	experience := make([]domain.ExperienceEntry, len(r.Experience))
	for i, e := range r.Experience {
		achievements := make([]string, len(e.Achievements))
		for j, a := range e.Achievements {
			achievements[j] = redaction.Redact(a)
		}
		e.Achievements = achievements
		experience[i] = e
	}
	r.Experience = experience
	return r
}

func (s *CandidateService) generateStory(ctx context.Context, c *domain.Candidate, job *domain.Job) {
	story, err := s.provider.GenerateStory(ctx, storyInput(c), job)
	if err != nil {
		s.logger.Warn("story generation failed",
			slog.String("candidate_id", c.CandidateID),
			slog.String("error", err.Error()),
		)
		return
	}
	c.AIStory = story
}

// Create stores a candidate from structured fields and writes its story
func (s *CandidateService) Create(ctx context.Context, p security.Principal, in CandidateInput) (*domain.Candidate, error) {
	job, err := s.jobs.load(ctx, p, in.JobID, security.PermCreateCandidate)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError("name is required")
	}

	now := s.now().UTC()
	c := &domain.Candidate{
		CandidateID:    newID("cand"),
		JobID:          job.JobID,
		Name:           strings.TrimSpace(in.Name),
		CurrentRole:    in.CurrentRole,
		Email:          in.Email,
		Phone:          in.Phone,
		LinkedIn:       in.LinkedIn,
		Skills:         normalizeSkills(in.Skills),
		Experience:     in.Experience,
		Education:      in.Education,
		Summary:        in.Summary,
		CVTextOriginal: in.CVText,
		CVTextRedacted: redact(in.CVText),
		Status:         domain.CandidateStatusNew,
		CreatedAt:      now,
		CreatedBy:      p.Email,
		UpdatedAt:      now,
	}
	s.generateStory(ctx, c, job)

	if err := s.candidates.Create(ctx, c); err != nil {
		return nil, internalError(s.logger, "failed to create candidate", err)
	}
	s.logger.Info("candidate created",
		slog.String("candidate_id", c.CandidateID),
		slog.String("job_id", c.JobID),
		slog.String("created_by", p.Email),
	)
	return c, nil
}

// Upload ingests a CV file: store, extract, redact, parse, write story.
// The model only ever sees redacted text; contact fields are read from the
// original locally.
func (s *CandidateService) Upload(ctx context.Context, p security.Principal, in UploadInput) (*domain.Candidate, error) {
	job, err := s.jobs.load(ctx, p, in.JobID, security.PermUploadCandidate)
	if err != nil {
		return nil, err
	}
	if len(in.Data) == 0 {
		return nil, badRequest("Uploaded file is empty")
	}
	if s.files == nil {
		return nil, internalError(s.logger, "upload rejected", errors.New("uploads store not configured"))
	}

	id := newID("cand")
	url, err := s.files.Save(id, in.Data)
	if err != nil {
		return nil, internalError(s.logger, "failed to store upload", err)
	}

	text, err := ai.ExtractText(in.Filename, in.Data)
	if err != nil {
		s.files.Remove(uploads.FileName(id))
		s.logger.Info("cv extraction failed", slog.String("filename", in.Filename), slog.String("error", err.Error()))
		return nil, badRequest("Could not extract text from file")
	}
	redacted := redact(text)

	resume, err := s.provider.ParseCV(ctx, redacted)
	if err != nil {
		s.files.Remove(uploads.FileName(id))
		return nil, internalError(s.logger, "failed to parse cv", err)
	}
	resume.Email, resume.Phone, resume.LinkedIn = ai.ExtractContacts(text)
	if strings.TrimSpace(resume.Name) == "" {
		resume.Name = strings.TrimSuffix(filepath.Base(in.Filename), filepath.Ext(in.Filename))
	}

	now := s.now().UTC()
	c := &domain.Candidate{
		CandidateID:    id,
		JobID:          job.JobID,
		Name:           resume.Name,
		CurrentRole:    resume.CurrentRole,
		Email:          resume.Email,
		Phone:          resume.Phone,
		LinkedIn:       resume.LinkedIn,
		Skills:         resume.Skills,
		Experience:     resume.Experience,
		Education:      resume.Education,
		Summary:        resume.Summary,
		CVFileURL:      url,
		CVTextOriginal: text,
		CVTextRedacted: redacted,
		Status:         domain.CandidateStatusNew,
		CreatedAt:      now,
		CreatedBy:      p.Email,
		UpdatedAt:      now,
	}
	s.generateStory(ctx, c, job)

	if err := s.candidates.Create(ctx, c); err != nil {
		s.files.Remove(uploads.FileName(id))
		return nil, internalError(s.logger, "failed to create candidate", err)
	}
	s.logger.Info("candidate uploaded",
		slog.String("candidate_id", c.CandidateID),
		slog.String("job_id", c.JobID),
		slog.String("filename", in.Filename),
		slog.Int("bytes", len(in.Data)),
	)
	return c, nil
}

// ListForJob hides rejected candidates unless showRejected is set
func (s *CandidateService) ListForJob(ctx context.Context, p security.Principal, jobID string, showRejected bool) ([]*domain.Candidate, error) {
	if _, err := s.jobs.load(ctx, p, jobID, security.PermReadCandidate); err != nil {
		return nil, err
	}
	all, err := s.candidates.ListByJob(ctx, jobID)
	if err != nil {
		return nil, internalError(s.logger, "failed to list candidates", err)
	}
	if showRejected {
		return all, nil
	}
	out := make([]*domain.Candidate, 0, len(all))
	for _, c := range all {
		if c.Status != domain.CandidateStatusReject {
			out = append(out, c)
		}
	}
	return out, nil
}

// load fetches a candidate and its job, then checks perm against the job's
// tenant. A candidate whose job is gone belongs to no tenant.
func (s *CandidateService) load(ctx context.Context, p security.Principal, id string, perm security.Permission) (*domain.Candidate, *domain.Job, error) {
	if err := s.policy.Require(p, perm); err != nil {
		return nil, nil, err
	}
	c, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, notFound("Candidate not found")
		}
		return nil, nil, internalError(s.logger, "failed to load candidate", err)
	}
	job, err := s.jobs.jobs.GetByID(ctx, c.JobID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, internalError(s.logger, "failed to load job", err)
	}
	owner := ""
	if job != nil {
		owner = job.ClientID
	}
	if err := s.policy.AuthorizeResource(p, security.Resource{Type: security.ResourceCandidate, ID: c.CandidateID, OwnerClientID: owner}); err != nil {
		return nil, nil, err
	}
	return c, job, nil
}

func (s *CandidateService) Get(ctx context.Context, p security.Principal, id string) (*domain.Candidate, error) {
	c, _, err := s.load(ctx, p, id, security.PermReadCandidate)
	return c, err
}

// ViewCV serves the precomputed original or redacted text. Client users
// always get the redacted one.
func (s *CandidateService) ViewCV(ctx context.Context, p security.Principal, id string, redacted *bool) (*CVView, error) {
	c, _, err := s.load(ctx, p, id, security.PermReadCandidate)
	if err != nil {
		return nil, err
	}
	view := &CVView{CandidateID: c.CandidateID, CVFileURL: c.CVFileURL}
	if s.policy.RedactCV(p, redacted) {
		view.CVText, view.IsRedacted = c.CVTextRedacted, true
	} else {
		view.CVText = c.CVTextOriginal
	}
	return view, nil
}

// Update applies a partial update. keys lists the JSON fields the caller
// sent and drives the client user field restriction.
func (s *CandidateService) Update(ctx context.Context, p security.Principal, id string, keys []string, patch CandidatePatch) (*domain.Candidate, error) {
	c, _, err := s.load(ctx, p, id, security.PermUpdateCandidate)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, badRequest("No fields to update")
	}
	if err := s.policy.RestrictUpdate(p, keys); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, validationError("name cannot be empty")
		}
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.CurrentRole != nil {
		c.CurrentRole = *patch.CurrentRole
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.LinkedIn != nil {
		c.LinkedIn = *patch.LinkedIn
	}
	if patch.Skills != nil {
		c.Skills = normalizeSkills(*patch.Skills)
	}
	if patch.Experience != nil {
		c.Experience = *patch.Experience
	}
	if patch.Education != nil {
		c.Education = *patch.Education
	}
	if patch.Summary != nil {
		c.Summary = *patch.Summary
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.CVText != nil {
		c.CVTextOriginal = *patch.CVText
		c.CVTextRedacted = redact(*patch.CVText)
	}

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// save bumps updated_at and drops cached exports of the old revision
func (s *CandidateService) save(ctx context.Context, c *domain.Candidate) error {
	c.UpdatedAt = s.now().UTC()
	if err := s.candidates.Update(ctx, c); err != nil {
		return internalError(s.logger, "failed to update candidate", err)
	}
	if err := s.exports.Invalidate(ctx, c.CandidateID); err != nil {
		s.logger.Warn("export cache invalidation failed", slog.String("candidate_id", c.CandidateID), slog.String("error", err.Error()))
	}
	return nil
}

func (s *CandidateService) RegenerateStory(ctx context.Context, p security.Principal, id string) (*domain.Candidate, error) {
	c, job, err := s.load(ctx, p, id, security.PermRegenerateStory)
	if err != nil {
		return nil, err
	}
	story, err := s.provider.GenerateStory(ctx, storyInput(c), job)
	if err != nil {
		return nil, internalError(s.logger, "failed to generate story", err)
	}
	c.AIStory = story
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("story regenerated", slog.String("candidate_id", id), slog.String("by", p.Email))
	return c, nil
}

// ExportStory renders the candidate's story as PDF, generating and
// persisting a story first when there is none.
func (s *CandidateService) ExportStory(ctx context.Context, p security.Principal, id string) (*StoryExport, error) {
	c, job, err := s.load(ctx, p, id, security.PermExportStory)
	if err != nil {
		return nil, err
	}
	if c.AIStory == nil {
		story, err := s.provider.GenerateStory(ctx, storyInput(c), job)
		if err != nil {
			return nil, internalError(s.logger, "failed to generate story", err)
		}
		c.AIStory = story
		if err := s.save(ctx, c); err != nil {
			return nil, err
		}
	}

	export := &StoryExport{Filename: "candidate_story_" + c.CandidateID + ".pdf"}
	if b, ok := s.exports.Get(ctx, c.CandidateID, c.UpdatedAt); ok {
		export.PDF = b
		return export, nil
	}

	doc := pdf.StoryDocument{
		CandidateName: c.Name,
		CurrentRole:   c.CurrentRole,
		Story:         c.AIStory,
		GeneratedAt:   s.now().UTC(),
	}
	if job != nil {
		doc.JobTitle = job.Title
		doc.CompanyName = s.jobs.clients.CompanyName(ctx, job.ClientID)
	}
	b, err := pdf.RenderStory(doc)
	if err != nil {
		return nil, internalError(s.logger, "failed to render story", err)
	}
	s.exports.Put(ctx, c.CandidateID, c.UpdatedAt, b)
	export.PDF = b
	return export, nil
}
