package tracing

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	shutdown, err := Init(context.Background(), logger, Options{ServiceName: "talentportal"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestSamplerBands(t *testing.T) {
	cases := []struct {
		percent int
		want    string
	}{
		{0, "AlwaysOffSampler"},
		{-5, "AlwaysOffSampler"},
		{100, "AlwaysOnSampler"},
		{250, "AlwaysOnSampler"},
		{25, "TraceIDRatioBased{0.25}"},
	}
	for _, tc := range cases {
		got := Sampler(tc.percent).Description()
		if !strings.HasPrefix(got, "ParentBased{root:"+tc.want) {
			t.Fatalf("percent %d: expected root %s, got %q", tc.percent, tc.want, got)
		}
	}
}

func TestExporterOptions(t *testing.T) {
	if got := len(exporterOptions("collector:4318")); got != 2 {
		t.Fatalf("expected endpoint+insecure for host:port, got %d options", got)
	}
	if got := len(exporterOptions("http://collector:4318")); got != 2 {
		t.Fatalf("expected url+insecure for http url, got %d options", got)
	}
	if got := len(exporterOptions("https://otlp.example.com")); got != 1 {
		t.Fatalf("expected url only for https, got %d options", got)
	}
}
