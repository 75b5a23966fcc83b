package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetricsMiddleware instruments requests with Prometheus metrics
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)
		dur := time.Since(start)
		ObserveHTTPRequest(r.Method, RouteLabel(r.URL.Path), strconv.Itoa(ww.status), dur)
	})
}

var idPrefixes = []string{"client_", "job_", "cand_", "rev_"}

// RouteLabel collapses entity IDs so the path label stays low-cardinality:
// /api/jobs/job_1a2b/candidates becomes /api/jobs/{id}/candidates.
func RouteLabel(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.HasPrefix(path, "/api/uploads/") && i == len(parts)-1 && p != "" {
			parts[i] = "{file}"
			continue
		}
		for _, prefix := range idPrefixes {
			if strings.HasPrefix(p, prefix) {
				parts[i] = "{id}"
				break
			}
		}
	}
	return strings.Join(parts, "/")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
