package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouteLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/api/jobs", "/api/jobs"},
		{"/api/jobs/job_1a2b3c4d5e6f", "/api/jobs/{id}"},
		{"/api/jobs/job_1/candidates", "/api/jobs/{id}/candidates"},
		{"/api/clients/client_001/users", "/api/clients/{id}/users"},
		{"/api/uploads/abc.pdf", "/api/uploads/{file}"},
		{"/api/candidates/cand_9/export-pdf", "/api/candidates/{id}/export-pdf"},
	}
	for _, tc := range cases {
		if got := RouteLabel(tc.in); got != tc.want {
			t.Fatalf("RouteLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHTTPMetricsMiddlewarePassesThrough(t *testing.T) {
	h := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
}
