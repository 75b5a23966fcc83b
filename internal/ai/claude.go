package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/reliability/retry"
)

// maxPromptChars keeps CV text inside the model's context
const maxPromptChars = 24000

// ClaudeProvider implements Provider using Anthropic's Messages API
type ClaudeProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

// NewClaudeProvider creates a provider. Extra options (base URL, retries)
// are passed to the SDK client.
func NewClaudeProvider(apiKey string, maxTokens int, logger *slog.Logger, opts ...option.RequestOption) *ClaudeProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &ClaudeProvider{
		client:    client,
		model:     anthropic.ModelClaude3_7SonnetLatest,
		maxTokens: int64(maxTokens),
		logger:    logger,
	}
}

func (cp *ClaudeProvider) Name() string { return "claude" }

func (cp *ClaudeProvider) ParseCV(ctx context.Context, text string) (*domain.ParsedResume, error) {
	var resume domain.ParsedResume
	if err := cp.completeJSON(ctx, buildParsePrompt(text), &resume); err != nil {
		return nil, err
	}
	return normalizeResume(&resume), nil
}

func (cp *ClaudeProvider) GenerateStory(ctx context.Context, resume *domain.ParsedResume, job *domain.Job) (*domain.CandidateStory, error) {
	prompt, err := buildStoryPrompt(resume, job)
	if err != nil {
		return nil, err
	}
	var story domain.CandidateStory
	if err := cp.completeJSON(ctx, prompt, &story); err != nil {
		return nil, err
	}
	return normalizeStory(&story), nil
}

// completeJSON sends one user message and decodes the JSON reply into dest.
// Unparseable replies are permanent failures and are not retried.
func (cp *ClaudeProvider) completeJSON(ctx context.Context, prompt string, dest any) error {
	response, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     cp.model,
		MaxTokens: cp.maxTokens,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to call Claude API: %w", err)
	}

	var responseText string
	for _, content := range response.Content {
		if text := content.AsText().Text; text != "" {
			responseText = text
			break
		}
	}
	if responseText == "" {
		return retry.Permanent(ErrEmptyResponse)
	}

	responseText = stripCodeFence(responseText)
	cp.logger.Debug("claude response received", slog.Int("length", len(responseText)))

	if err := json.Unmarshal([]byte(responseText), dest); err != nil {
		return retry.Permanent(fmt.Errorf("failed to parse JSON response from Claude: %w", err))
	}
	return nil
}

func buildParsePrompt(text string) string {
	text = truncate(text, maxPromptChars)
	return `You are a CV parser. Extract structured information from the CV below and return it as a JSON object with exactly these fields:

{
  "name": "string",
  "current_role": "string",
  "email": "string",
  "phone": "string",
  "linkedin": "string",
  "skills": ["string"],
  "experience": [{"company": "string", "role": "string", "duration": "string", "achievements": ["string"]}],
  "education": [{"degree": "string", "institution": "string", "year": "string"}],
  "summary": "string - two or three sentences"
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. Use "" for missing strings and [] for missing arrays
3. Placeholders such as [EMAIL REDACTED] must be returned as ""

CV:
` + text
}

// truncate cuts text to at most n bytes without splitting a rune
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

func buildStoryPrompt(resume *domain.ParsedResume, job *domain.Job) (string, error) {
	resumeJSON, err := json.Marshal(resume)
	if err != nil {
		return "", fmt.Errorf("marshal resume: %w", err)
	}
	var jobDesc strings.Builder
	if job != nil {
		fmt.Fprintf(&jobDesc, "Title: %s\nLocation: %s\nWork model: %s\nRequired skills: %s\nExperience: %d-%d years\nDescription: %s\n",
			job.Title, job.Location, job.WorkModel, strings.Join(job.RequiredSkills, ", "),
			job.ExperienceRange.MinYears, job.ExperienceRange.MaxYears, job.Description)
	}
	return fmt.Sprintf(`You are a recruiter writing a short candidate story for a hiring client. Using the candidate profile and the job below, return a JSON object with exactly these fields:

{
  "headline": "string - one line",
  "summary": "string - three to five sentences",
  "timeline": [{"year": "string", "title": "string", "company": "string", "achievement": "string"}],
  "skills": ["string"],
  "fit_score": number - integer 0 to 100,
  "highlights": ["string - at most five"]
}

IMPORTANT RULES:
1. Return ONLY valid JSON, no additional text or explanation
2. Never include contact details

CANDIDATE:
%s

JOB:
%s`, resumeJSON, jobDesc.String()), nil
}
