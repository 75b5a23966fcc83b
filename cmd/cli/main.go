package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/arbeit/talentportal/internal/infrastructure/logger"
	"github.com/arbeit/talentportal/internal/regression"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "auth":
		err = handleAuth(ctx, args)
	case "jobs":
		err = handleJobs(ctx, args)
	case "candidates":
		err = handleCandidates(ctx, args)
	case "regress":
		err = runRegression(ctx, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: talentctl auth <login|logout|who>")
		return nil
	}
	switch args[0] {
	case "login":
		return loginUser(ctx, args[1:])
	case "logout":
		os.Remove(tokenFile())
		fmt.Println("✓ Logged out")
		return nil
	case "who":
		return whoAmI(ctx)
	default:
		return fmt.Errorf("unknown auth command: %s", args[0])
	}
}

func handleJobs(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: talentctl jobs <list|get|create|close>")
		return nil
	}
	switch args[0] {
	case "list":
		return listJobs(ctx, args[1:])
	case "get":
		return getJSON(ctx, args[1:], "/api/jobs/%s", "talentctl jobs get <job-id>")
	case "create":
		return createJob(ctx, args[1:])
	case "close":
		if len(args) < 2 {
			return fmt.Errorf("usage: talentctl jobs close <job-id>")
		}
		resp, err := call(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(args[1])+"/close", nil)
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s\n", message(resp))
		return nil
	default:
		return fmt.Errorf("unknown jobs command: %s", args[0])
	}
}

func handleCandidates(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Println("Usage: talentctl candidates <list|get|upload|cv|review|export>")
		return nil
	}
	switch args[0] {
	case "list":
		return listCandidates(ctx, args[1:])
	case "get":
		return getJSON(ctx, args[1:], "/api/candidates/%s", "talentctl candidates get <candidate-id>")
	case "upload":
		return uploadCV(ctx, args[1:])
	case "cv":
		return viewCV(ctx, args[1:])
	case "review":
		return reviewCandidate(ctx, args[1:])
	case "export":
		return exportStory(ctx, args[1:])
	default:
		return fmt.Errorf("unknown candidates command: %s", args[0])
	}
}

// Auth commands
func loginUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fs.PrintDefaults()
		return fmt.Errorf("email and password are required")
	}
	token, err := apiClient().Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := saveToken(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Printf("✓ Logged in as: %s\n", *email)
	return nil
}

func whoAmI(ctx context.Context) error {
	if loadToken() == "" {
		fmt.Println("Not logged in")
		return nil
	}
	resp, err := call(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return err
	}
	var me struct {
		Email    string  `json:"email"`
		Name     string  `json:"name"`
		Role     string  `json:"role"`
		ClientID *string `json:"client_id"`
	}
	if err := resp.Decode(&me); err != nil {
		return err
	}
	tenant := "-"
	if me.ClientID != nil {
		tenant = *me.ClientID
	}
	fmt.Printf("✓ %s <%s> role=%s client=%s\n", me.Name, me.Email, me.Role, tenant)
	return nil
}

// Job commands
func listJobs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("jobs list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	search := fs.String("search", "", "search title and skills")
	clientID := fs.String("client", "", "filter by client id (staff only)")
	fs.Parse(args)

	q := url.Values{}
	for k, v := range map[string]string{"status": *status, "search": *search, "client_id": *clientID} {
		if v != "" {
			q.Set(k, v)
		}
	}
	path := "/api/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	resp, err := call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	var jobs []struct {
		JobID       string `json:"job_id"`
		Title       string `json:"title"`
		CompanyName string `json:"company_name"`
		Status      string `json:"status"`
	}
	if err := resp.Decode(&jobs); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tSTATUS")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", j.JobID, j.Title, j.CompanyName, j.Status)
	}
	return w.Flush()
}

func createJob(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("jobs create", flag.ExitOnError)
	title := fs.String("title", "", "job title")
	clientID := fs.String("client", "", "client id")
	location := fs.String("location", "", "location")
	skills := fs.String("skills", "", "comma separated required skills")
	status := fs.String("status", "", "Draft, Active, On Hold or Closed")
	description := fs.String("description", "", "description")
	fs.Parse(args)

	if *title == "" {
		fs.PrintDefaults()
		return fmt.Errorf("title is required")
	}
	body := map[string]any{
		"title":       *title,
		"client_id":   *clientID,
		"location":    *location,
		"status":      *status,
		"description": *description,
	}
	if *skills != "" {
		var list []string
		for _, s := range strings.Split(*skills, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		body["required_skills"] = list
	}
	resp, err := call(ctx, http.MethodPost, "/api/jobs", body)
	if err != nil {
		return err
	}
	var job struct {
		JobID string `json:"job_id"`
	}
	if err := resp.Decode(&job); err != nil {
		return err
	}
	fmt.Printf("✓ Job created: %s\n", job.JobID)
	return nil
}

// Candidate commands
func listCandidates(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("candidates list", flag.ExitOnError)
	jobID := fs.String("job", "", "job id")
	showRejected := fs.Bool("show-rejected", false, "include rejected candidates")
	fs.Parse(args)

	if *jobID == "" {
		fs.PrintDefaults()
		return fmt.Errorf("job is required")
	}
	path := fmt.Sprintf("/api/jobs/%s/candidates?show_rejected=%t", url.PathEscape(*jobID), *showRejected)
	resp, err := call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	var list []struct {
		CandidateID string `json:"candidate_id"`
		Name        string `json:"name"`
		CurrentRole string `json:"current_role"`
		Status      string `json:"status"`
		AIStory     *struct {
			FitScore int `json:"fit_score"`
		} `json:"ai_story"`
	}
	if err := resp.Decode(&list); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROLE\tSTATUS\tFIT")
	for _, c := range list {
		fit := "-"
		if c.AIStory != nil {
			fit = fmt.Sprint(c.AIStory.FitScore)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.CandidateID, c.Name, c.CurrentRole, c.Status, fit)
	}
	return w.Flush()
}

func uploadCV(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("candidates upload", flag.ExitOnError)
	jobID := fs.String("job", "", "job id")
	file := fs.String("file", "", "path to CV (pdf, docx, txt)")
	fs.Parse(args)

	if *jobID == "" || *file == "" {
		fs.PrintDefaults()
		return fmt.Errorf("job and file are required")
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	resp, err := apiClient().Upload(ctx, loadToken(), *jobID, filepath.Base(*file), data)
	if err != nil {
		return err
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("upload failed (%d): %s", resp.Status, resp.Detail())
	}
	var c struct {
		CandidateID string `json:"candidate_id"`
		Name        string `json:"name"`
	}
	if err := resp.Decode(&c); err != nil {
		return err
	}
	fmt.Printf("✓ Candidate created: %s (%s)\n", c.CandidateID, c.Name)
	return nil
}

func viewCV(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("candidates cv", flag.ExitOnError)
	full := fs.Bool("full", false, "request the unredacted CV (staff only)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: talentctl candidates cv [-full] <candidate-id>")
	}
	path := fmt.Sprintf("/api/candidates/%s/cv?redacted=%t", url.PathEscape(fs.Arg(0)), !*full)
	resp, err := call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	var cv struct {
		CVText     string `json:"cv_text"`
		IsRedacted bool   `json:"is_redacted"`
	}
	if err := resp.Decode(&cv); err != nil {
		return err
	}
	fmt.Printf("# redacted: %t\n%s\n", cv.IsRedacted, cv.CVText)
	return nil
}

func reviewCandidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("candidates review", flag.ExitOnError)
	action := fs.String("action", "", "APPROVE, PIPELINE, REJECT or COMMENT")
	comment := fs.String("comment", "", "optional comment")
	fs.Parse(args)
	if fs.NArg() < 1 || *action == "" {
		return fmt.Errorf("usage: talentctl candidates review -action APPROVE [-comment text] <candidate-id>")
	}
	path := "/api/candidates/" + url.PathEscape(fs.Arg(0)) + "/review"
	if _, err := call(ctx, http.MethodPost, path, map[string]string{"action": strings.ToUpper(*action), "comment": *comment}); err != nil {
		return err
	}
	fmt.Printf("✓ Review recorded: %s\n", strings.ToUpper(*action))
	return nil
}

func exportStory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("candidates export", flag.ExitOnError)
	out := fs.String("out", "", "output file (default from server)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: talentctl candidates export [-out file.pdf] <candidate-id>")
	}
	resp, err := call(ctx, http.MethodGet, "/api/candidates/"+url.PathEscape(fs.Arg(0))+"/story/export", nil)
	if err != nil {
		return err
	}
	name := *out
	if name == "" {
		name = fs.Arg(0) + "_story.pdf"
		if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
			name = filepath.Base(params["filename"])
		}
	}
	if err := os.WriteFile(name, resp.Body, 0o644); err != nil {
		return err
	}
	fmt.Printf("✓ Story exported: %s (%d bytes)\n", name, len(resp.Body))
	return nil
}

// Regression
func runRegression(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("regress", flag.ExitOnError)
	recruiter := fs.String("recruiter", "recruiter@arbeit.com:recruiter123", "recruiter email:password")
	client := fs.String("client", "client@acme.com:client123", "client user email:password")
	clientID := fs.String("client-id", "client_001", "tenant of the client user")
	timeout := fs.Duration("timeout", 10*time.Minute, "overall timeout")
	logLevel := fs.String("log-level", "warn", "log level")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	fmt.Printf("Running regression against %s\n", baseURL())
	runner := regression.NewRunner(regression.Options{
		BaseURL:    baseURL(),
		Recruiter:  credentials(*recruiter),
		ClientUser: credentials(*client),
		ClientID:   *clientID,
		Logger:     logger.NewLogger(*logLevel, "development"),
		Out:        os.Stdout,
	})
	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	report.Print(os.Stdout)
	if report.Failed() > 0 {
		return fmt.Errorf("%d of %d scenarios failed", report.Failed(), report.Total())
	}
	return nil
}

func credentials(s string) regression.Credentials {
	email, password, _ := strings.Cut(s, ":")
	return regression.Credentials{Email: email, Password: password}
}

// Helper functions
func baseURL() string {
	if u := os.Getenv("TALENTCTL_API"); u != "" {
		return strings.TrimSuffix(strings.TrimRight(u, "/"), "/api")
	}
	return "http://localhost:8000"
}

func apiClient() *regression.Client {
	return regression.NewClient(baseURL(), nil)
}

// call sends an authenticated request and turns non-2xx answers into errors
func call(ctx context.Context, method, path string, body any) (*regression.Response, error) {
	resp, err := apiClient().Do(ctx, method, path, loadToken(), body)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s (run: talentctl auth login)", resp.Detail())
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, fmt.Errorf("request failed (%d): %s", resp.Status, resp.Detail())
	}
	return resp, nil
}

func getJSON(ctx context.Context, args []string, pathFmt, usage string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s", usage)
	}
	resp, err := call(ctx, http.MethodGet, fmt.Sprintf(pathFmt, url.PathEscape(args[0])), nil)
	if err != nil {
		return err
	}
	var v any
	if err := resp.Decode(&v); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func message(resp *regression.Response) string {
	var m struct {
		Message string `json:"message"`
	}
	if resp.Decode(&m) == nil && m.Message != "" {
		return m.Message
	}
	return "done"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".talentctl", "token")
}

func saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(tokenFile()), 0o700); err != nil {
		return err
	}
	return os.WriteFile(tokenFile(), []byte(token), 0o600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return strings.TrimSpace(string(data))
}

func printUsage() {
	fmt.Print(`talentctl - Arbeit Talent Portal CLI

Usage:
  talentctl <command> [options]

Commands:
  auth        Authentication (login, logout, who)
  jobs        Job operations (list, get, create, close)
  candidates  Candidate operations (list, get, upload, cv, review, export)
  regress     Run the job and CV viewer regression scenarios
  help        Show this help message

Environment Variables:
  TALENTCTL_API    API endpoint (default: http://localhost:8000)

Examples:
  talentctl auth login -email recruiter@arbeit.com -password recruiter123
  talentctl jobs list -status Active
  talentctl candidates upload -job job_001 -file resume.pdf
  talentctl candidates cv -full cand_1a2b3c4d5e6f
  talentctl regress
`)
}
