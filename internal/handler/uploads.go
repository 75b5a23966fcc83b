package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/arbeit/talentportal/internal/uploads"
)

// UploadsHandler serves stored CV files for the iframe viewer
type UploadsHandler struct {
	store  *uploads.Store
	logger *slog.Logger
}

func NewUploadsHandler(store *uploads.Store, logger *slog.Logger) *UploadsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadsHandler{store: store, logger: logger}
}

// ServeHTTP handles GET /api/uploads/{file}
func (h *UploadsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	f, err := h.store.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrInvalidName):
			h.logger.Warn("rejected upload path", slog.String("file", name))
			writeDetail(w, http.StatusBadRequest, "Invalid file name")
		case errors.Is(err, os.ErrNotExist):
			writeDetail(w, http.StatusNotFound, "File not found")
		default:
			writeError(w, r, h.logger, err)
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}
