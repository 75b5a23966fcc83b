package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/reliability/circuitbreaker"
	"github.com/arbeit/talentportal/internal/reliability/retry"
)

const sampleCV = `Jane Doe
Senior Backend Engineer
jane.doe@example.com | +1 555-123-4567
linkedin.com/in/janedoe

Summary
Backend engineer focused on Go services and PostgreSQL.

Experience
Senior Engineer at Acme (2019 - 2023)
- Led migration to Kubernetes
- Cut p99 latency by 40%
Engineer | Globex | 2016-2019

Education
BSc Computer Science, State University, 2016

Skills
Go, PostgreSQL, Docker, Kubernetes, Redis
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHeuristicParseCV(t *testing.T) {
	r, err := NewHeuristicProvider().ParseCV(context.Background(), sampleCV)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Name != "Jane Doe" {
		t.Fatalf("unexpected name %q", r.Name)
	}
	if r.CurrentRole != "Senior Backend Engineer" {
		t.Fatalf("unexpected role %q", r.CurrentRole)
	}
	if r.Email != "jane.doe@example.com" {
		t.Fatalf("unexpected email %q", r.Email)
	}
	if !strings.Contains(r.LinkedIn, "linkedin.com/in/janedoe") {
		t.Fatalf("unexpected linkedin %q", r.LinkedIn)
	}
	if len(r.Experience) != 2 {
		t.Fatalf("expected 2 positions, got %+v", r.Experience)
	}
	if r.Experience[0].Company != "Acme" || len(r.Experience[0].Achievements) != 2 {
		t.Fatalf("unexpected first position %+v", r.Experience[0])
	}
	if r.Experience[1].Company != "Globex" {
		t.Fatalf("unexpected second position %+v", r.Experience[1])
	}
	if len(r.Education) != 1 || r.Education[0].Year != "2016" {
		t.Fatalf("unexpected education %+v", r.Education)
	}
	if !strings.Contains(r.Summary, "Go services") {
		t.Fatalf("unexpected summary %q", r.Summary)
	}
	for _, want := range []string{"Go", "PostgreSQL", "Kubernetes", "Redis"} {
		found := false
		for _, s := range r.Skills {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("skill %s missing from %v", want, r.Skills)
		}
	}
}

func TestContainsWord(t *testing.T) {
	if containsWord("worked at google", "go") {
		t.Fatalf("go must not match google")
	}
	if !containsWord("go, rust", "go") {
		t.Fatalf("go should match")
	}
	if !containsWord("ci/cd pipelines", "ci/cd") {
		t.Fatalf("ci/cd should match")
	}
}

func TestHeuristicGenerateStory(t *testing.T) {
	resume := &domain.ParsedResume{
		Name:        "Jane Doe",
		CurrentRole: "Backend Engineer",
		Skills:      []string{"Go", "Docker"},
		Experience: []domain.ExperienceEntry{
			{Company: "Acme", Role: "Engineer", Duration: "2019 - 2023", Achievements: []string{"Shipped billing"}},
		},
	}
	job := &domain.Job{Title: "Go Developer", RequiredSkills: []string{"go", "Kubernetes"}}

	story, err := NewHeuristicProvider().GenerateStory(context.Background(), resume, job)
	if err != nil {
		t.Fatalf("story: %v", err)
	}
	if story.FitScore != 70 {
		t.Fatalf("expected fit 70 for half the skills, got %d", story.FitScore)
	}
	if story.Skills[0] != "go" {
		t.Fatalf("matched skills come first, got %v", story.Skills)
	}
	if len(story.Timeline) != 1 || story.Timeline[0].Year != "2019" {
		t.Fatalf("unexpected timeline %+v", story.Timeline)
	}
	if story.Headline != "Backend Engineer with experience at Acme" {
		t.Fatalf("unexpected headline %q", story.Headline)
	}
	if story.Summary == "" {
		t.Fatalf("summary should default")
	}

	full, _ := NewHeuristicProvider().GenerateStory(context.Background(), resume, &domain.Job{RequiredSkills: []string{"Go"}})
	if full.FitScore != 100 {
		t.Fatalf("expected 100, got %d", full.FitScore)
	}
	none, _ := NewHeuristicProvider().GenerateStory(context.Background(), nil, nil)
	if none.FitScore != 70 || none.Timeline == nil || none.Highlights == nil {
		t.Fatalf("unexpected empty story %+v", none)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{}\n```", "{}"},
		{"  {\"b\":2} ", `{"b":2}`},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"aaaaaé", 6, "aaaaa"},
		{"aaaaaé", 7, "aaaaaé"},
		{"日本語", 4, "日"},
		{"🚀🚀", 5, "🚀"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}

	prompt := buildParsePrompt(strings.Repeat("ł", maxPromptChars))
	if !utf8.ValidString(prompt) {
		t.Fatalf("parse prompt cut a rune in half")
	}
}

// claudeServer answers every Messages call with the given text
func claudeServer(t *testing.T, text string, status int, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-3-7-sonnet-latest",
			"content":       []map[string]any{{"type": "text", "text": text}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClaude(srv *httptest.Server) *ClaudeProvider {
	return NewClaudeProvider("test-key", 512, testLogger(), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
}

func TestClaudeGenerateStory(t *testing.T) {
	reply := "```json\n{\"headline\":\"Strong Go engineer\",\"summary\":\"Fits well.\",\"skills\":[\"Go\"],\"fit_score\":140,\"highlights\":[\"Led migration\"]}\n```"
	srv := claudeServer(t, reply, http.StatusOK, nil)

	story, err := newTestClaude(srv).GenerateStory(context.Background(), &domain.ParsedResume{Name: "Jane"}, &domain.Job{Title: "Go Dev"})
	if err != nil {
		t.Fatalf("story: %v", err)
	}
	if story.Headline != "Strong Go engineer" {
		t.Fatalf("unexpected headline %q", story.Headline)
	}
	if story.FitScore != 100 {
		t.Fatalf("fit score should be clamped, got %d", story.FitScore)
	}
	if story.Timeline == nil {
		t.Fatalf("timeline should be normalized to an empty slice")
	}
}

func TestClaudeParseCV(t *testing.T) {
	srv := claudeServer(t, `{"name":"Jane Doe","skills":["Go"],"experience":[{"company":"Acme","role":"Engineer"}]}`, http.StatusOK, nil)

	r, err := newTestClaude(srv).ParseCV(context.Background(), "Jane Doe\nEngineer")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Name != "Jane Doe" || len(r.Experience) != 1 || r.Experience[0].Achievements == nil {
		t.Fatalf("unexpected resume %+v", r)
	}
}

func TestClaudeInvalidJSONIsPermanent(t *testing.T) {
	srv := claudeServer(t, "I cannot help with that", http.StatusOK, nil)

	_, err := newTestClaude(srv).ParseCV(context.Background(), "x")
	if err == nil || !retry.IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestResilientFallsBackToHeuristic(t *testing.T) {
	var calls int32
	srv := claudeServer(t, "", http.StatusInternalServerError, &calls)

	breaker := circuitbreaker.NewCircuitBreaker(2, 1, time.Minute)
	cfg := &retry.Config{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 1}
	rp := NewResilientProvider(newTestClaude(srv), NewHeuristicProvider(), breaker, cfg, time.Second, testLogger())

	job := &domain.Job{Title: "Go Dev", RequiredSkills: []string{"Go"}}
	story, err := rp.GenerateStory(context.Background(), &domain.ParsedResume{Skills: []string{"Go"}}, job)
	if err != nil {
		t.Fatalf("fallback should succeed: %v", err)
	}
	if story.FitScore != 100 {
		t.Fatalf("expected heuristic score 100, got %d", story.FitScore)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}

	if _, err := rp.GenerateStory(context.Background(), nil, job); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if breaker.GetState() != circuitbreaker.StateOpen {
		t.Fatalf("breaker should open after two failures, got %s", breaker.GetState())
	}

	before := atomic.LoadInt32(&calls)
	if _, err := rp.ParseCV(context.Background(), sampleCV); err != nil {
		t.Fatalf("parse with open breaker: %v", err)
	}
	if atomic.LoadInt32(&calls) != before {
		t.Fatalf("open breaker must not call the primary")
	}
}

type failingProvider struct{ err error }

func (f failingProvider) Name() string { return "failing" }
func (f failingProvider) ParseCV(context.Context, string) (*domain.ParsedResume, error) {
	return nil, f.err
}
func (f failingProvider) GenerateStory(context.Context, *domain.ParsedResume, *domain.Job) (*domain.CandidateStory, error) {
	return nil, f.err
}

func TestResilientCancelledContext(t *testing.T) {
	rp := NewResilientProvider(failingProvider{err: errors.New("down")}, NewHeuristicProvider(), nil, nil, 0, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rp.ParseCV(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText("cv.txt", []byte("Jane Doe\nEngineer"))
	if err != nil || text != "Jane Doe\nEngineer" {
		t.Fatalf("unexpected %q %v", text, err)
	}

	if _, err := ExtractText("cv.txt", []byte{0xff, 0xfe, 0xfd}); err == nil {
		t.Fatalf("invalid UTF-8 text should fail")
	}

	if _, err := ExtractText("cv.exe", []byte("x")); err == nil {
		t.Fatalf("unsupported extension should fail")
	}

	// plain text saved with a document extension still yields its bytes
	text, err = ExtractText("cv.docx", []byte("Jane Doe plain text"))
	if err != nil || !strings.Contains(text, "Jane Doe") {
		t.Fatalf("expected UTF-8 fallback, got %q %v", text, err)
	}
}
