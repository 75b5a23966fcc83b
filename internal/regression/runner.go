// Package regression drives a running portal through the job, CV viewer and
// tenant isolation scenarios and reports a pass rate.
package regression

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Credentials of a seeded account
type Credentials struct {
	Email    string
	Password string
}

// Options configures a Runner. Empty credentials default to the demo seed.
type Options struct {
	BaseURL    string
	Recruiter  Credentials
	ClientUser Credentials
	ClientID   string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Out        io.Writer
}

// Result is the outcome of one scenario
type Result struct {
	Name    string
	Passed  bool
	Message string
}

// Report collects scenario results
type Report struct {
	Results  []Result
	Duration time.Duration
}

func (r *Report) Total() int { return len(r.Results) }

func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int { return r.Total() - r.Passed() }

// SuccessRate is the passed share in percent
func (r *Report) SuccessRate() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.Passed()) / float64(r.Total()) * 100
}

// Confidence rates the run: HIGH at 90% and above, MEDIUM at 70%, else LOW
func (r *Report) Confidence() string {
	switch rate := r.SuccessRate(); {
	case rate >= 90:
		return "HIGH"
	case rate >= 70:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Print writes the summary block
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Total: %d  Passed: %d  Failed: %d\n", r.Total(), r.Passed(), r.Failed())
	fmt.Fprintf(w, "Success rate: %.1f%%  Confidence: %s  (%s)\n", r.SuccessRate(), r.Confidence(), r.Duration.Round(time.Millisecond))
	if r.Failed() > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, res := range r.Results {
			if !res.Passed {
				fmt.Fprintf(w, "  - %s: %s\n", res.Name, res.Message)
			}
		}
	}
}

// Runner executes the scenarios in order; later scenarios reuse the job and
// candidate created by earlier ones.
type Runner struct {
	client *Client
	opts   Options
	logger *slog.Logger
	out    io.Writer

	recruiterToken string
	clientToken    string
	jobID          string
	candidateID    string
}

func NewRunner(opts Options) *Runner {
	if opts.Recruiter.Email == "" {
		opts.Recruiter = Credentials{Email: "recruiter@arbeit.com", Password: "recruiter123"}
	}
	if opts.ClientUser.Email == "" {
		opts.ClientUser = Credentials{Email: "client@acme.com", Password: "client123"}
	}
	if opts.ClientID == "" {
		opts.ClientID = "client_001"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Runner{
		client: NewClient(opts.BaseURL, opts.HTTPClient),
		opts:   opts,
		logger: opts.Logger,
		out:    opts.Out,
	}
}

type scenario struct {
	name string
	run  func(context.Context) error
}

// Run logs in both accounts and runs every scenario. The error is non-nil
// only when setup fails; scenario failures are reported in the Report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	var err error
	if r.recruiterToken, err = r.client.Login(ctx, r.opts.Recruiter.Email, r.opts.Recruiter.Password); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if r.clientToken, err = r.client.Login(ctx, r.opts.ClientUser.Email, r.opts.ClientUser.Password); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	r.logger.Info("regression run started", slog.String("base_url", r.client.BaseURL))

	report := &Report{}
	for _, s := range r.scenarios() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res := Result{Name: s.name, Passed: true}
		if err := s.run(ctx); err != nil {
			res.Passed, res.Message = false, err.Error()
			fmt.Fprintf(r.out, "✗ %s: %s\n", s.name, res.Message)
		} else {
			fmt.Fprintf(r.out, "✓ %s\n", s.name)
		}
		report.Results = append(report.Results, res)
	}
	report.Duration = time.Since(start)
	r.logger.Info("regression run finished",
		slog.Int("passed", report.Passed()),
		slog.Int("failed", report.Failed()),
		slog.String("confidence", report.Confidence()),
	)
	return report, nil
}

func (r *Runner) scenarios() []scenario {
	return []scenario{
		{"Job Create - Recruiter", r.jobCreate},
		{"Job Update - Recruiter", r.jobUpdateRecruiter},
		{"Job Update - Client", r.jobUpdateClient},
		{"Job View - Recruiter", r.jobView(true)},
		{"Job View - Client", r.jobView(false)},
		{"Multi-tenant Isolation - Jobs", r.tenantIsolation},
		{"Recruiter View All Jobs", r.recruiterListsJobs},
		{"CV Upload and Storage", r.cvUpload},
		{"CV File Accessibility", r.cvFileAccessible},
		{"CV Viewer URL Format", r.cvViewerURL},
		{"CV Viewer Full Access - Recruiter", r.cvFullAccess},
		{"CV Viewer Redacted Access - Client", r.cvClientRedacted},
		{"CV Viewer Toggle", r.cvToggle},
		{"Regression - Candidate Creation", r.candidateCreate},
		{"Regression - AI Story Generation", r.aiStory},
		{"Regression - Job Listing and Filtering", r.jobListing},
		{"Regression - Candidate Listing", r.candidateListing},
	}
}

var (
	errNoJob       = errors.New("no job ID available")
	errNoCandidate = errors.New("no candidate ID available")
)

func expectStatus(resp *Response, want int) error {
	if resp.Status != want {
		return fmt.Errorf("status %d: %s", resp.Status, resp.Detail())
	}
	return nil
}

type jobBody struct {
	JobID           string   `json:"job_id"`
	Title           string   `json:"title"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	RequiredSkills  []string `json:"required_skills"`
	ExperienceRange *struct {
		MinYears int `json:"min_years"`
		MaxYears int `json:"max_years"`
	} `json:"experience_range"`
	SalaryRange *struct {
		MinAmount int `json:"min_amount"`
	} `json:"salary_range"`
}

func (r *Runner) jobCreate(ctx context.Context) error {
	resp, err := r.client.Do(ctx, http.MethodPost, "/api/jobs", r.recruiterToken, map[string]any{
		"title":            "Senior Full Stack Developer",
		"location":         "San Francisco, CA",
		"employment_type":  "Full-time",
		"experience_range": map[string]int{"min_years": 5, "max_years": 10},
		"salary_range":     map[string]any{"min_amount": 140000, "max_amount": 200000, "currency": "USD"},
		"work_model":       "Hybrid",
		"required_skills":  []string{"React", "Node.js", "TypeScript", "AWS", "PostgreSQL"},
		"description":      "We are looking for a senior full stack developer to build scalable web applications.",
		"status":           "Active",
		"client_id":        r.opts.ClientID,
	})
	if err != nil {
		return err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	var job jobBody
	if err := resp.Decode(&job); err != nil {
		return err
	}
	switch {
	case job.JobID == "":
		return errors.New("missing job_id")
	case job.Title != "Senior Full Stack Developer" || job.Location != "San Francisco, CA":
		return errors.New("title or location not saved")
	case job.ExperienceRange == nil || job.ExperienceRange.MinYears != 5 || job.ExperienceRange.MaxYears != 10:
		return errors.New("experience range not saved")
	case job.SalaryRange == nil || job.SalaryRange.MinAmount != 140000:
		return errors.New("salary range not saved")
	case len(job.RequiredSkills) != 5 || job.Status != "Active":
		return errors.New("skills or status not saved")
	}
	r.jobID = job.JobID
	return nil
}

func (r *Runner) updateJob(ctx context.Context, token string, patch map[string]any) (*jobBody, error) {
	if r.jobID == "" {
		return nil, errNoJob
	}
	resp, err := r.client.Do(ctx, http.MethodPut, "/api/jobs/"+r.jobID, token, patch)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var job jobBody
	return &job, resp.Decode(&job)
}

func (r *Runner) jobUpdateRecruiter(ctx context.Context) error {
	job, err := r.updateJob(ctx, r.recruiterToken, map[string]any{
		"title":       "Senior Full Stack Developer - Updated",
		"description": "Updated job description. We now require experience with microservices architecture.",
	})
	if err != nil {
		return err
	}
	if job.Title != "Senior Full Stack Developer - Updated" || !strings.Contains(job.Description, "microservices architecture") {
		return errors.New("updated fields not reflected in response")
	}
	return nil
}

func (r *Runner) jobUpdateClient(ctx context.Context) error {
	job, err := r.updateJob(ctx, r.clientToken, map[string]any{
		"description": "Client updated description: we are expanding our team.",
	})
	if err != nil {
		return err
	}
	if !strings.Contains(job.Description, "Client updated description") {
		return errors.New("client update not reflected in response")
	}
	return nil
}

func (r *Runner) jobView(asRecruiter bool) func(context.Context) error {
	return func(ctx context.Context) error {
		if r.jobID == "" {
			return errNoJob
		}
		token := r.clientToken
		if asRecruiter {
			token = r.recruiterToken
		}
		resp, err := r.client.Do(ctx, http.MethodGet, "/api/jobs/"+r.jobID, token, nil)
		if err != nil {
			return err
		}
		if err := expectStatus(resp, http.StatusOK); err != nil {
			return err
		}
		var fields map[string]any
		if err := resp.Decode(&fields); err != nil {
			return err
		}
		want := []string{"job_id", "title", "description"}
		if asRecruiter {
			want = append(want, "required_skills", "experience_range", "salary_range")
		}
		for _, k := range want {
			if _, ok := fields[k]; !ok {
				return fmt.Errorf("missing field %q", k)
			}
		}
		return nil
	}
}

func (r *Runner) tenantIsolation(ctx context.Context) error {
	resp, err := r.client.Do(ctx, http.MethodPost, "/api/clients", r.recruiterToken, map[string]string{
		"company_name": fmt.Sprintf("Regression Tenant %d", time.Now().UnixNano()),
	})
	if err != nil {
		return err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	var tenant struct {
		ClientID string `json:"client_id"`
	}
	if err := resp.Decode(&tenant); err != nil {
		return err
	}

	resp, err = r.client.Do(ctx, http.MethodPost, "/api/jobs", r.recruiterToken, map[string]any{
		"title":           "Multi-Tenant Test Job",
		"location":        "Seattle, WA",
		"work_model":      "Remote",
		"required_skills": []string{"Java", "Spring Boot"},
		"description":     "Test job for multi-tenant isolation testing",
		"client_id":       tenant.ClientID,
	})
	if err != nil {
		return err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	var other jobBody
	if err := resp.Decode(&other); err != nil {
		return err
	}

	resp, err = r.client.Do(ctx, http.MethodGet, "/api/jobs/"+other.JobID, r.clientToken, nil)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusForbidden && resp.Status != http.StatusNotFound {
		return fmt.Errorf("expected 403/404, got %d", resp.Status)
	}
	return nil
}

func (r *Runner) recruiterListsJobs(ctx context.Context) error {
	resp, err := r.client.Do(ctx, http.MethodGet, "/api/jobs", r.recruiterToken, nil)
	if err != nil {
		return err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	var jobs []jobBody
	return resp.Decode(&jobs)
}

const regressionCV = `John Smith
Senior Software Engineer
Email: john.smith@email.com
Phone: (555) 123-4567
LinkedIn: https://linkedin.com/in/johnsmith

PROFESSIONAL EXPERIENCE
Senior Software Engineer at TechCorp Inc (2020 - 2024)
- Led development of microservices architecture serving 1M+ users
- Reduced API response time by 40% through optimization

TECHNICAL SKILLS
JavaScript, Python, TypeScript, React, Node.js, AWS, Docker, PostgreSQL

EDUCATION
Bachelor of Science in Computer Science, University of California, Berkeley (2018)
`

type candidateBody struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	CVFileURL   *string `json:"cv_file_url"`
	AIStory     *struct {
		Headline string `json:"headline"`
		Summary  string `json:"summary"`
		FitScore *int   `json:"fit_score"`
	} `json:"ai_story"`
}

func (r *Runner) cvUpload(ctx context.Context) error {
	if r.jobID == "" {
		return errNoJob
	}
	resp, err := r.client.Upload(ctx, r.recruiterToken, r.jobID, "john_smith_resume.pdf", []byte(regressionCV))
	if err != nil {
		return err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	var c candidateBody
	if err := resp.Decode(&c); err != nil {
		return err
	}
	if c.CandidateID == "" || c.CVFileURL == nil || !strings.HasPrefix(*c.CVFileURL, "/api/uploads/") || c.Status != "NEW" {
		return errors.New("missing CV URL or incorrect URL format")
	}
	r.candidateID = c.CandidateID
	return nil
}

func (r *Runner) candidate(ctx context.Context) (*candidateBody, error) {
	if r.candidateID == "" {
		return nil, errNoCandidate
	}
	resp, err := r.client.Do(ctx, http.MethodGet, "/api/candidates/"+r.candidateID, r.recruiterToken, nil)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var c candidateBody
	return &c, resp.Decode(&c)
}

func (r *Runner) cvFileAccessible(ctx context.Context) error {
	c, err := r.candidate(ctx)
	if err != nil {
		return err
	}
	if c.CVFileURL == nil {
		return errors.New("no CV URL found")
	}
	resp, err := r.client.Do(ctx, http.MethodGet, *c.CVFileURL, "", nil)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		return fmt.Errorf("file not accessible or wrong MIME type: status %d, content type %q", resp.Status, resp.Header.Get("Content-Type"))
	}
	return nil
}

func (r *Runner) cvViewerURL(ctx context.Context) error {
	c, err := r.candidate(ctx)
	if err != nil {
		return err
	}
	want := "/api/uploads/" + r.candidateID + ".pdf"
	if c.CVFileURL == nil || *c.CVFileURL != want {
		return fmt.Errorf("expected CV URL %s", want)
	}
	return nil
}

type cvBody struct {
	CVText     string `json:"cv_text"`
	IsRedacted bool   `json:"is_redacted"`
}

func (r *Runner) viewCV(ctx context.Context, token, query string) (*cvBody, error) {
	if r.candidateID == "" {
		return nil, errNoCandidate
	}
	resp, err := r.client.Do(ctx, http.MethodGet, "/api/candidates/"+r.candidateID+"/cv"+query, token, nil)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var cv cvBody
	return &cv, resp.Decode(&cv)
}

func (r *Runner) cvFullAccess(ctx context.Context) error {
	cv, err := r.viewCV(ctx, r.recruiterToken, "?redacted=false")
	if err != nil {
		return err
	}
	if cv.IsRedacted || !strings.Contains(cv.CVText, "john.smith@email.com") ||
		!strings.Contains(cv.CVText, "(555) 123-4567") || !strings.Contains(cv.CVText, "linkedin.com/in/johnsmith") {
		return errors.New("CV not unredacted or missing contact information")
	}
	return nil
}

func (r *Runner) cvClientRedacted(ctx context.Context) error {
	cv, err := r.viewCV(ctx, r.clientToken, "?redacted=false")
	if err != nil {
		return err
	}
	if !cv.IsRedacted || strings.Contains(cv.CVText, "john.smith@email.com") {
		return errors.New("CV not redacted for client user")
	}
	for _, token := range []string{"[EMAIL REDACTED]", "[PHONE REDACTED]", "[LINKEDIN REDACTED]"} {
		if !strings.Contains(cv.CVText, token) {
			return fmt.Errorf("missing %s", token)
		}
	}
	return nil
}

func (r *Runner) cvToggle(ctx context.Context) error {
	full, err := r.viewCV(ctx, r.recruiterToken, "?redacted=false")
	if err != nil {
		return err
	}
	redacted, err := r.viewCV(ctx, r.recruiterToken, "?redacted=true")
	if err != nil {
		return err
	}
	if full.IsRedacted || !redacted.IsRedacted ||
		!strings.Contains(full.CVText, "john.smith@email.com") || !strings.Contains(redacted.CVText, "[EMAIL REDACTED]") {
		return errors.New("toggle between full and redacted views not working")
	}
	return nil
}

func (r *Runner) candidateCreate(ctx context.Context) error {
	if r.jobID == "" {
		return errNoJob
	}
	resp, err := r.client.Do(ctx, http.MethodPost, "/api/candidates", r.recruiterToken, map[string]any{
		"job_id":       r.jobID,
		"name":         "Alice Johnson",
		"current_role": "Frontend Developer",
		"email":        "alice.johnson@email.com",
		"phone":        "555-987-6543",
		"skills":       []string{"React", "TypeScript", "CSS", "JavaScript"},
		"experience": []map[string]any{{
			"company":      "WebDev Co",
			"role":         "Frontend Developer",
			"duration":     "2022-2024",
			"achievements": []string{"Built responsive web applications"},
		}},
		"education": []map[string]string{{"degree": "BS Computer Science", "institution": "Tech University", "year": "2022"}},
		"summary":   "Frontend developer with expertise in modern web technologies",
	})
	if err != nil {
		return err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	var c candidateBody
	if err := resp.Decode(&c); err != nil {
		return err
	}
	if c.CandidateID == "" || c.Name != "Alice Johnson" {
		return errors.New("candidate not created as requested")
	}
	return nil
}

func (r *Runner) aiStory(ctx context.Context) error {
	c, err := r.candidate(ctx)
	if err != nil {
		return err
	}
	if c.AIStory == nil || c.AIStory.Headline == "" || c.AIStory.FitScore == nil {
		return errors.New("AI story missing or incomplete")
	}
	return nil
}

func (r *Runner) jobListing(ctx context.Context) error {
	for _, path := range []string{"/api/jobs", "/api/jobs?status=Active"} {
		resp, err := r.client.Do(ctx, http.MethodGet, path, r.recruiterToken, nil)
		if err != nil {
			return err
		}
		if err := expectStatus(resp, http.StatusOK); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		var jobs []jobBody
		if err := resp.Decode(&jobs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) candidateListing(ctx context.Context) error {
	if r.jobID == "" {
		return errNoJob
	}
	resp, err := r.client.Do(ctx, http.MethodGet, "/api/jobs/"+r.jobID+"/candidates", r.recruiterToken, nil)
	if err != nil {
		return err
	}
	if err := expectStatus(resp, http.StatusOK); err != nil {
		return err
	}
	var list []candidateBody
	if err := resp.Decode(&list); err != nil {
		return err
	}
	if len(list) == 0 {
		return errors.New("uploaded candidates not listed")
	}
	return nil
}
