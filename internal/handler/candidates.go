package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/service"
)

// CandidateHandler serves /api/candidates and /api/jobs/{id}/candidates
type CandidateHandler struct {
	candidates     *service.CandidateService
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewCandidateHandler(candidates *service.CandidateService, maxUploadBytes int64, logger *slog.Logger) *CandidateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &CandidateHandler{candidates: candidates, maxUploadBytes: maxUploadBytes, logger: logger}
}

type CandidateRequest struct {
	JobID       string                   `json:"job_id" validate:"required"`
	Name        string                   `json:"name" validate:"required"`
	CurrentRole string                   `json:"current_role"`
	Email       string                   `json:"email" validate:"omitempty,email"`
	Phone       string                   `json:"phone"`
	LinkedIn    string                   `json:"linkedin"`
	Skills      []string                 `json:"skills"`
	Experience  []domain.ExperienceEntry `json:"experience"`
	Education   []domain.EducationEntry  `json:"education"`
	Summary     string                   `json:"summary"`
	CVText      string                   `json:"cv_text"`
}

type CandidateUpdateRequest struct {
	Name        *string                   `json:"name" validate:"omitempty,min=1"`
	CurrentRole *string                   `json:"current_role"`
	Email       *string                   `json:"email"`
	Phone       *string                   `json:"phone"`
	LinkedIn    *string                   `json:"linkedin"`
	Skills      *[]string                 `json:"skills"`
	Experience  *[]domain.ExperienceEntry `json:"experience"`
	Education   *[]domain.EducationEntry  `json:"education"`
	Summary     *string                   `json:"summary"`
	Status      *string                   `json:"status"`
	CVText      *string                   `json:"cv_text"`
}

// CVResponse is the body of the CV viewer
type CVResponse struct {
	CandidateID string  `json:"candidate_id"`
	CVText      string  `json:"cv_text"`
	IsRedacted  bool    `json:"is_redacted"`
	CVFileURL   *string `json:"cv_file_url"`
}

// Create handles POST /api/candidates
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CandidateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.candidates.Create(r.Context(), principal(r), service.CandidateInput{
		JobID:       req.JobID,
		Name:        req.Name,
		CurrentRole: req.CurrentRole,
		Email:       req.Email,
		Phone:       req.Phone,
		LinkedIn:    req.LinkedIn,
		Skills:      req.Skills,
		Experience:  req.Experience,
		Education:   req.Education,
		Summary:     req.Summary,
		CVText:      req.CVText,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateView(c))
}

// Upload handles multipart POST /api/candidates/upload with fields file and job_id
func (h *CandidateHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	jobID := r.FormValue("job_id")
	if jobID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "job_id is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()
	if header.Size > h.maxUploadBytes {
		writeDetail(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	c, err := h.candidates.Upload(r.Context(), principal(r), service.UploadInput{
		JobID:    jobID,
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateView(c))
}

// ListForJob handles GET /api/jobs/{id}/candidates?show_rejected=
func (h *CandidateHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	showRejected := false
	if b := queryBool(r, "show_rejected"); b != nil {
		showRejected = *b
	}
	list, err := h.candidates.ListForJob(r.Context(), principal(r), r.PathValue("id"), showRejected)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]CandidateResponse, 0, len(list))
	for _, c := range list {
		out = append(out, candidateView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/candidates/{id}
func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.candidates.Get(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateView(c))
}

// Update handles PUT /api/candidates/{id}
func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req CandidateUpdateRequest
	keys, ok := decodePatch(w, r, &req)
	if !ok {
		return
	}
	c, err := h.candidates.Update(r.Context(), principal(r), r.PathValue("id"), keys, service.CandidatePatch{
		Name:        req.Name,
		CurrentRole: req.CurrentRole,
		Email:       req.Email,
		Phone:       req.Phone,
		LinkedIn:    req.LinkedIn,
		Skills:      req.Skills,
		Experience:  req.Experience,
		Education:   req.Education,
		Summary:     req.Summary,
		Status:      req.Status,
		CVText:      req.CVText,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateView(c))
}

// ViewCV handles GET /api/candidates/{id}/cv?redacted=
func (h *CandidateHandler) ViewCV(w http.ResponseWriter, r *http.Request) {
	view, err := h.candidates.ViewCV(r.Context(), principal(r), r.PathValue("id"), queryBool(r, "redacted"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, CVResponse{
		CandidateID: view.CandidateID,
		CVText:      view.CVText,
		IsRedacted:  view.IsRedacted,
		CVFileURL:   nullable(view.CVFileURL),
	})
}

// RegenerateStory handles POST /api/candidates/{id}/regenerate-story and
// its alias /story/regenerate
func (h *CandidateHandler) RegenerateStory(w http.ResponseWriter, r *http.Request) {
	c, err := h.candidates.RegenerateStory(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateView(c))
}

// ExportStory handles GET /api/candidates/{id}/story/export
func (h *CandidateHandler) ExportStory(w http.ResponseWriter, r *http.Request) {
	export, err := h.candidates.ExportStory(r.Context(), principal(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.PDF)))
	w.WriteHeader(http.StatusOK)
	w.Write(export.PDF)
}
