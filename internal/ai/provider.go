// Package ai turns CV text into structured resumes and candidate stories.
package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/arbeit/talentportal/internal/domain"
)

// ErrEmptyResponse is returned when a model reply carries no usable content
var ErrEmptyResponse = errors.New("ai: empty response")

// Provider parses CVs and writes candidate stories
type Provider interface {
	Name() string
	ParseCV(ctx context.Context, text string) (*domain.ParsedResume, error)
	GenerateStory(ctx context.Context, resume *domain.ParsedResume, job *domain.Job) (*domain.CandidateStory, error)
}

// normalizeStory fills nil slices and clamps the score so every provider
// returns the same shape
func normalizeStory(s *domain.CandidateStory) *domain.CandidateStory {
	if s.Timeline == nil {
		s.Timeline = []domain.TimelineEntry{}
	}
	if s.Skills == nil {
		s.Skills = []string{}
	}
	if s.Highlights == nil {
		s.Highlights = []string{}
	}
	s.ClampFitScore()
	return s
}

func normalizeResume(r *domain.ParsedResume) *domain.ParsedResume {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Experience == nil {
		r.Experience = []domain.ExperienceEntry{}
	}
	for i := range r.Experience {
		if r.Experience[i].Achievements == nil {
			r.Experience[i].Achievements = []string{}
		}
	}
	if r.Education == nil {
		r.Education = []domain.EducationEntry{}
	}
	r.Name = strings.TrimSpace(r.Name)
	return r
}

// stripCodeFence removes a surrounding ```json ... ``` block
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
