package handler

import (
	"log/slog"
	"net/http"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/service"
)

// JobHandler serves /api/jobs
type JobHandler struct {
	jobs   *service.JobService
	logger *slog.Logger
}

func NewJobHandler(jobs *service.JobService, logger *slog.Logger) *JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{jobs: jobs, logger: logger}
}

type JobRequest struct {
	ClientID        string                 `json:"client_id"`
	Title           string                 `json:"title" validate:"required"`
	Location        string                 `json:"location"`
	EmploymentType  string                 `json:"employment_type"`
	ExperienceRange domain.ExperienceRange `json:"experience_range"`
	SalaryRange     *domain.SalaryRange    `json:"salary_range"`
	WorkModel       string                 `json:"work_model"`
	RequiredSkills  []string               `json:"required_skills"`
	Description     string                 `json:"description"`
	Status          string                 `json:"status"`
}

type JobUpdateRequest struct {
	ClientID        *string                 `json:"client_id"`
	Title           *string                 `json:"title" validate:"omitempty,min=1"`
	Location        *string                 `json:"location"`
	EmploymentType  *string                 `json:"employment_type"`
	ExperienceRange *domain.ExperienceRange `json:"experience_range"`
	SalaryRange     *domain.SalaryRange     `json:"salary_range"`
	WorkModel       *string                 `json:"work_model"`
	RequiredSkills  *[]string               `json:"required_skills"`
	Description     *string                 `json:"description"`
	Status          *string                 `json:"status"`
}

// List handles GET /api/jobs?client_id=&status=&search=&skip=&limit=
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := h.jobs.List(r.Context(), principal(r), domain.JobFilter{
		ClientID: q.Get("client_id"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		Skip:     queryInt(r, "skip", 0),
		Limit:    queryInt(r, "limit", 100),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, jobView(&jobs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	job, err := h.jobs.Create(r.Context(), principal(r), service.JobInput{
		ClientID:        req.ClientID,
		Title:           req.Title,
		Location:        req.Location,
		EmploymentType:  req.EmploymentType,
		ExperienceRange: req.ExperienceRange,
		SalaryRange:     req.SalaryRange,
		WorkModel:       req.WorkModel,
		RequiredSkills:  req.RequiredSkills,
		Description:     req.Description,
		Status:          req.Status,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobView(job))
}

// Get handles GET /api/jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobView(job))
}

// Update handles PUT /api/jobs/{id}
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req JobUpdateRequest
	if _, ok := decodePatch(w, r, &req); !ok {
		return
	}
	job, err := h.jobs.Update(r.Context(), principal(r), r.PathValue("id"), service.JobPatch{
		ClientID:        req.ClientID,
		Title:           req.Title,
		Location:        req.Location,
		EmploymentType:  req.EmploymentType,
		ExperienceRange: req.ExperienceRange,
		SalaryRange:     req.SalaryRange,
		WorkModel:       req.WorkModel,
		RequiredSkills:  req.RequiredSkills,
		Description:     req.Description,
		Status:          req.Status,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobView(job))
}

// Close handles PATCH /api/jobs/{id}/close
func (h *JobHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.Close(r.Context(), principal(r), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Job closed successfully"})
}
