package handler

import (
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/service"
)

// UserResponse never carries the password hash
type UserResponse struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ClientID  *string   `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
}

func userView(u *domain.User) UserResponse {
	return UserResponse{
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		ClientID:  nullable(u.ClientID),
		CreatedAt: u.CreatedAt,
	}
}

type ClientResponse struct {
	ClientID    string    `json:"client_id"`
	CompanyName string    `json:"company_name"`
	Status      string    `json:"status"`
	UserCount   *int      `json:"user_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func clientView(c *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:    c.ClientID,
		CompanyName: c.CompanyName,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		CreatedBy:   c.CreatedBy,
		UpdatedAt:   c.UpdatedAt,
	}
}

func clientCountView(v service.ClientView) ClientResponse {
	resp := clientView(v.Client)
	n := v.UserCount
	resp.UserCount = &n
	return resp
}

type JobResponse struct {
	JobID           string                 `json:"job_id"`
	ClientID        string                 `json:"client_id"`
	CompanyName     string                 `json:"company_name,omitempty"`
	Title           string                 `json:"title"`
	Location        string                 `json:"location"`
	EmploymentType  string                 `json:"employment_type"`
	ExperienceRange domain.ExperienceRange `json:"experience_range"`
	SalaryRange     *domain.SalaryRange    `json:"salary_range"`
	WorkModel       string                 `json:"work_model"`
	RequiredSkills  []string               `json:"required_skills"`
	Description     string                 `json:"description"`
	Status          string                 `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
	CreatedBy       string                 `json:"created_by"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func jobView(v *service.JobView) JobResponse {
	j := v.Job
	skills := j.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return JobResponse{
		JobID:           j.JobID,
		ClientID:        j.ClientID,
		CompanyName:     v.CompanyName,
		Title:           j.Title,
		Location:        j.Location,
		EmploymentType:  j.EmploymentType,
		ExperienceRange: j.ExperienceRange,
		SalaryRange:     j.SalaryRange,
		WorkModel:       j.WorkModel,
		RequiredSkills:  skills,
		Description:     j.Description,
		Status:          j.Status,
		CreatedAt:       j.CreatedAt,
		CreatedBy:       j.CreatedBy,
		UpdatedAt:       j.UpdatedAt,
	}
}

// CandidateResponse omits both CV texts; they are served by the CV viewer
type CandidateResponse struct {
	CandidateID string                   `json:"candidate_id"`
	JobID       string                   `json:"job_id"`
	Name        string                   `json:"name"`
	CurrentRole string                   `json:"current_role"`
	Email       string                   `json:"email"`
	Phone       string                   `json:"phone"`
	LinkedIn    string                   `json:"linkedin"`
	Skills      []string                 `json:"skills"`
	Experience  []domain.ExperienceEntry `json:"experience"`
	Education   []domain.EducationEntry  `json:"education"`
	Summary     string                   `json:"summary"`
	CVFileURL   *string                  `json:"cv_file_url"`
	Status      string                   `json:"status"`
	AIStory     *domain.CandidateStory   `json:"ai_story"`
	CreatedAt   time.Time                `json:"created_at"`
	CreatedBy   string                   `json:"created_by"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

func candidateView(c *domain.Candidate) CandidateResponse {
	resp := CandidateResponse{
		CandidateID: c.CandidateID,
		JobID:       c.JobID,
		Name:        c.Name,
		CurrentRole: c.CurrentRole,
		Email:       c.Email,
		Phone:       c.Phone,
		LinkedIn:    c.LinkedIn,
		Skills:      c.Skills,
		Experience:  c.Experience,
		Education:   c.Education,
		Summary:     c.Summary,
		CVFileURL:   nullable(c.CVFileURL),
		Status:      c.Status,
		AIStory:     c.AIStory,
		CreatedAt:   c.CreatedAt,
		CreatedBy:   c.CreatedBy,
		UpdatedAt:   c.UpdatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if resp.Experience == nil {
		resp.Experience = []domain.ExperienceEntry{}
	}
	if resp.Education == nil {
		resp.Education = []domain.EducationEntry{}
	}
	return resp
}

type ReviewResponse struct {
	ReviewID    string    `json:"review_id"`
	CandidateID string    `json:"candidate_id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserRole    string    `json:"user_role"`
	Action      string    `json:"action"`
	Comment     string    `json:"comment"`
	Timestamp   time.Time `json:"timestamp"`
}

func reviewView(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ReviewID:    r.ReviewID,
		CandidateID: r.CandidateID,
		UserID:      r.UserID,
		UserName:    r.UserName,
		UserRole:    string(r.UserRole),
		Action:      string(r.Action),
		Comment:     r.Comment,
		Timestamp:   r.Timestamp,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
