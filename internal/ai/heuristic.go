package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/arbeit/talentportal/internal/domain"
)

var skillKeywords = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript", "C#", "C++", "Rust", "Ruby", "PHP", "Kotlin", "Swift",
	"React", "Vue", "Angular", "Node.js", "Django", "FastAPI", "Spring", "Docker", "Kubernetes", "Terraform",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "Elasticsearch", "AWS", "Azure", "GCP",
	"GraphQL", "REST", "gRPC", "Microservices", "Git", "CI/CD", "Linux",
	"Machine Learning", "Data Science", "DevOps", "SQL", "Scrum", "Agile",
}

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{3}\)[\s.\-]?|\b\d{3}[\s.\-])\d{3}[\s.\-]\d{4}\b`)
	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|pub|profile)/[a-z0-9_%\-]+/?`)
	yearRe     = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	// "Senior Engineer at Acme (2019 - 2023)" or "Senior Engineer | Acme | 2019-2023"
	experienceAtRe   = regexp.MustCompile(`^(.{2,80}?)\s+at\s+(.{2,80}?)\s*[\(,|\-–]\s*((?:19|20)\d{2}\s*[\-–]\s*(?:(?:19|20)\d{2}|[Pp]resent))\)?\s*$`)
	experiencePipeRe = regexp.MustCompile(`^(.{2,80}?)\s*\|\s*(.{2,80}?)\s*\|\s*((?:19|20)\d{2}\s*[\-–]\s*(?:(?:19|20)\d{2}|[Pp]resent))\s*$`)
	degreeRe         = regexp.MustCompile(`(?i)\b(bachelor|master|b\.?sc|m\.?sc|b\.?a\.|m\.?a\.|mba|ph\.?d|diploma|degree)\b`)
	headingRe        = regexp.MustCompile(`(?i)^(summary|profile|about me|objective|experience|work experience|education|skills)\s*:?\s*$`)
)

// HeuristicProvider is the offline, deterministic parser and storyteller. It
// never fails, so it backs the hosted model whenever that is unavailable.
type HeuristicProvider struct{}

func NewHeuristicProvider() *HeuristicProvider { return &HeuristicProvider{} }

func (HeuristicProvider) Name() string { return "heuristic" }

// ExtractContacts pulls email, phone and LinkedIn from raw text
func ExtractContacts(text string) (email, phone, linkedin string) {
	email = emailRe.FindString(text)
	phone = phoneRe.FindString(text)
	linkedin = linkedinRe.FindString(text)
	return email, phone, linkedin
}

// ParseCV reads a CV line by line. The first short line is taken as the
// name and the next as the current role; sections are detected by heading.
func (HeuristicProvider) ParseCV(_ context.Context, text string) (*domain.ParsedResume, error) {
	r := &domain.ParsedResume{}
	r.Email, r.Phone, r.LinkedIn = ExtractContacts(text)
	r.Skills = matchSkills(text)

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	section := ""
	var summary []string
	for i, line := range lines {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			section = strings.ToLower(m[1])
			continue
		}
		switch {
		case r.Name == "" && i == 0 && looksLikeName(line):
			r.Name = line
			continue
		case r.CurrentRole == "" && i == 1 && r.Name != "" && section == "" && !strings.ContainsAny(line, "@0123456789"):
			r.CurrentRole = line
			continue
		}

		if exp, ok := parseExperienceLine(line); ok {
			r.Experience = append(r.Experience, exp)
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*") {
			bullet := strings.TrimSpace(strings.TrimLeft(line, "-•* "))
			if n := len(r.Experience); n > 0 && bullet != "" {
				r.Experience[n-1].Achievements = append(r.Experience[n-1].Achievements, bullet)
			}
			continue
		}
		if degreeRe.MatchString(line) && (section == "education" || section == "") {
			r.Education = append(r.Education, parseEducationLine(line))
			continue
		}
		if section == "summary" || section == "profile" || section == "about me" || section == "objective" {
			summary = append(summary, line)
		}
	}
	r.Summary = strings.Join(summary, " ")
	if r.CurrentRole == "" && len(r.Experience) > 0 {
		r.CurrentRole = r.Experience[0].Role
	}
	return normalizeResume(r), nil
}

func looksLikeName(line string) bool {
	if strings.ContainsAny(line, "@:/|0123456789") {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 1 || len(words) > 5 {
		return false
	}
	for _, w := range words {
		if r := []rune(w); !unicode.IsUpper(r[0]) {
			return false
		}
	}
	return true
}

func parseExperienceLine(line string) (domain.ExperienceEntry, bool) {
	for _, re := range []*regexp.Regexp{experienceAtRe, experiencePipeRe} {
		if m := re.FindStringSubmatch(line); m != nil {
			return domain.ExperienceEntry{
				Role:         strings.TrimSpace(m[1]),
				Company:      strings.TrimSpace(m[2]),
				Duration:     strings.Join(strings.Fields(m[3]), " "),
				Achievements: []string{},
			}, true
		}
	}
	return domain.ExperienceEntry{}, false
}

func parseEducationLine(line string) domain.EducationEntry {
	e := domain.EducationEntry{Degree: line}
	if y := yearRe.FindAllString(line, -1); len(y) > 0 {
		e.Year = y[len(y)-1]
	}
	for _, sep := range []string{",", " - ", " | "} {
		if parts := strings.SplitN(line, sep, 3); len(parts) >= 2 {
			e.Degree = strings.TrimSpace(parts[0])
			e.Institution = strings.TrimSpace(yearRe.ReplaceAllString(parts[1], ""))
			e.Institution = strings.Trim(e.Institution, " ()")
			break
		}
	}
	return e
}

func matchSkills(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, skill := range skillKeywords {
		if containsWord(lower, strings.ToLower(skill)) {
			out = append(out, skill)
		}
	}
	return out
}

// containsWord is a substring match that requires non-alphanumeric
// neighbours, so "Go" does not match "Google"
func containsWord(haystack, word string) bool {
	for start := 0; ; {
		idx := strings.Index(haystack[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(word)
		before := idx == 0 || !isWordByte(haystack[idx-1])
		after := end == len(haystack) || !isWordByte(haystack[end])
		if before && after {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// GenerateStory builds the story from resume fields. The fit score is
// 40 + 60 x share of the job's required skills the candidate lists. Jobs
// without required skills score the midpoint.
func (HeuristicProvider) GenerateStory(_ context.Context, resume *domain.ParsedResume, job *domain.Job) (*domain.CandidateStory, error) {
	if resume == nil {
		resume = &domain.ParsedResume{}
	}
	story := &domain.CandidateStory{
		Headline: headline(resume, job),
		Summary:  resume.Summary,
	}

	have := map[string]bool{}
	for _, s := range resume.Skills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}
	var matched []string
	if job != nil {
		for _, req := range job.RequiredSkills {
			if have[strings.ToLower(strings.TrimSpace(req))] {
				matched = append(matched, req)
			}
		}
	}
	share := 0.5
	if job != nil && len(job.RequiredSkills) > 0 {
		share = float64(len(matched)) / float64(len(job.RequiredSkills))
	}
	story.FitScore = 40 + int(60*share+0.5)

	seen := map[string]bool{}
	for _, s := range append(append([]string{}, matched...), resume.Skills...) {
		key := strings.ToLower(s)
		if s != "" && !seen[key] {
			seen[key] = true
			story.Skills = append(story.Skills, s)
		}
	}

	for _, e := range resume.Experience {
		entry := domain.TimelineEntry{Title: e.Role, Company: e.Company, Year: e.Duration}
		if y := yearRe.FindString(e.Duration); y != "" {
			entry.Year = y
		}
		if len(e.Achievements) > 0 {
			entry.Achievement = e.Achievements[0]
		}
		story.Timeline = append(story.Timeline, entry)
	}

	for _, m := range matched {
		story.Highlights = append(story.Highlights, "Brings required skill: "+m)
	}
	for _, e := range resume.Experience {
		for _, a := range e.Achievements {
			if len(story.Highlights) >= 5 {
				break
			}
			story.Highlights = append(story.Highlights, a)
		}
	}

	if story.Summary == "" {
		story.Summary = defaultSummary(resume, job, len(matched))
	}
	return normalizeStory(story), nil
}

func headline(r *domain.ParsedResume, job *domain.Job) string {
	switch {
	case r.CurrentRole != "" && len(r.Experience) > 0 && r.Experience[0].Company != "":
		return fmt.Sprintf("%s with experience at %s", r.CurrentRole, r.Experience[0].Company)
	case r.CurrentRole != "":
		return r.CurrentRole
	case job != nil && job.Title != "":
		return "Candidate for " + job.Title
	default:
		return "Candidate profile"
	}
}

func defaultSummary(r *domain.ParsedResume, job *domain.Job, matched int) string {
	name := r.Name
	if name == "" {
		name = "The candidate"
	}
	s := fmt.Sprintf("%s has %d listed skills and %d recorded positions.", name, len(r.Skills), len(r.Experience))
	if job != nil && len(job.RequiredSkills) > 0 {
		s += fmt.Sprintf(" They match %d of %d required skills for %s.", matched, len(job.RequiredSkills), job.Title)
	}
	return s
}
