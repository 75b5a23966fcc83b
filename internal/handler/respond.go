package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/arbeit/talentportal/internal/observability/requestid"
	"github.com/arbeit/talentportal/internal/security"
	"github.com/arbeit/talentportal/internal/security/middleware"
	"github.com/arbeit/talentportal/internal/service"
)

var validate = validator.New()

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is returned by actions without a resource body
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// statusFor maps service error kinds onto HTTP status codes
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusUnprocessableEntity
	case service.KindBadRequest:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single place service errors become responses. Internal
// causes are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	se := service.AsError(err)
	status := statusFor(se.Kind)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("request_id", requestid.FromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeDetail(w, status, se.Detail)
}

// decodeJSON decodes the body into dst and runs struct validation. Both
// malformed JSON and failed validation are 422.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, validationDetail(err))
		return false
	}
	return true
}

// decodePatch decodes a partial update and returns the keys that were sent
func decodePatch(w http.ResponseWriter, r *http.Request, dst any) ([]string, bool) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return nil, false
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	if len(raw) == 0 {
		return keys, true
	}
	body, _ := json.Marshal(raw)
	if err := json.Unmarshal(body, dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid field value")
		return nil, false
	}
	if err := validate.Struct(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, validationDetail(err))
		return nil, false
	}
	return keys, true
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// principal returns the caller set by the JWT middleware
func principal(r *http.Request) security.Principal {
	p, _ := middleware.GetPrincipalFromContext(r.Context())
	return p
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// queryBool returns nil when the parameter is absent or unparseable
func queryBool(r *http.Request, key string) *bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}
