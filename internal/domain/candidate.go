package domain

import (
	"context"
	"time"
)

// Candidate status values written by the portal itself. PUT accepts any string.
const (
	CandidateStatusNew      = "NEW"
	CandidateStatusPipeline = "PIPELINE"
	CandidateStatusApprove  = "APPROVE"
	CandidateStatusReject   = "REJECT"
)

// ExperienceEntry is one position on a resume
type ExperienceEntry struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Duration     string   `json:"duration"`
	Achievements []string `json:"achievements"`
}

// EducationEntry is one degree on a resume
type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// ParsedResume is the structured form of a CV
type ParsedResume struct {
	Name        string            `json:"name"`
	CurrentRole string            `json:"current_role"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	LinkedIn    string            `json:"linkedin"`
	Skills      []string          `json:"skills"`
	Experience  []ExperienceEntry `json:"experience"`
	Education   []EducationEntry  `json:"education"`
	Summary     string            `json:"summary"`
}

// TimelineEntry is one milestone of a candidate story
type TimelineEntry struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Achievement string `json:"achievement"`
}

// CandidateStory is the narrative generated for a candidate against a job
type CandidateStory struct {
	Headline   string          `json:"headline"`
	Summary    string          `json:"summary"`
	Timeline   []TimelineEntry `json:"timeline"`
	Skills     []string        `json:"skills"`
	FitScore   int             `json:"fit_score"`
	Highlights []string        `json:"highlights"`
}

// ClampFitScore keeps the fit score inside 0..100
func (s *CandidateStory) ClampFitScore() {
	if s.FitScore < 0 {
		s.FitScore = 0
	}
	if s.FitScore > 100 {
		s.FitScore = 100
	}
}

// Candidate is an applicant attached to a job
type Candidate struct {
	CandidateID    string
	JobID          string
	Name           string
	CurrentRole    string
	Email          string
	Phone          string
	LinkedIn       string
	Skills         []string
	Experience     []ExperienceEntry
	Education      []EducationEntry
	Summary        string
	CVFileURL      string
	CVTextOriginal string
	CVTextRedacted string
	Status         string
	AIStory        *CandidateStory
	CreatedAt      time.Time
	CreatedBy      string
	UpdatedAt      time.Time
}

// Resume returns the candidate's structured fields as a ParsedResume
func (c *Candidate) Resume() *ParsedResume {
	return &ParsedResume{
		Name:        c.Name,
		CurrentRole: c.CurrentRole,
		Email:       c.Email,
		Phone:       c.Phone,
		LinkedIn:    c.LinkedIn,
		Skills:      c.Skills,
		Experience:  c.Experience,
		Education:   c.Education,
		Summary:     c.Summary,
	}
}

// CandidateRepository defines data access for candidates
type CandidateRepository interface {
	Create(ctx context.Context, candidate *Candidate) error
	GetByID(ctx context.Context, id string) (*Candidate, error)
	Update(ctx context.Context, candidate *Candidate) error
	ListByJob(ctx context.Context, jobID string) ([]*Candidate, error)
	Exists(ctx context.Context, id string) (bool, error)
}
