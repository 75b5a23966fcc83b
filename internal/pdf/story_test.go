package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
)

func TestRenderStory(t *testing.T) {
	doc := StoryDocument{
		CandidateName: "José Müller",
		CurrentRole:   "Backend Engineer",
		JobTitle:      "Senior Go Developer",
		CompanyName:   "Acme Corporation",
		GeneratedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Story: &domain.CandidateStory{
			Headline: "Backend engineer with a decade of distributed systems work",
			Summary:  "Strong match for the platform team. Has led two migrations and mentors juniors.",
			Timeline: []domain.TimelineEntry{
				{Year: "2019", Title: "Senior Engineer", Company: "Acme", Achievement: "Led migration to Kubernetes"},
				{Year: "2016", Title: "Engineer", Company: "Globex"},
			},
			Skills:     []string{"Go", "PostgreSQL", "Kubernetes"},
			FitScore:   82,
			Highlights: []string{"Brings required skill: Go", "Cut p99 latency by 40%"},
		},
	}

	out, err := RenderStory(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:8])
	}
	if len(out) <= 1000 {
		t.Fatalf("expected more than 1000 bytes, got %d", len(out))
	}
}

func TestRenderStoryWithoutStory(t *testing.T) {
	out, err := RenderStory(StoryDocument{CandidateName: "Jane"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}
