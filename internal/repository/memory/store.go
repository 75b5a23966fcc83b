// Package memory holds map-backed repositories used by tests and by the
// server when STORAGE_BACKEND=memory.
package memory

import (
	"slices"
	"strings"

	"github.com/arbeit/talentportal/internal/domain"
)

// Store bundles one repository per entity over shared maps so lookups that
// cross entities (user counts per client) stay consistent.
type Store struct {
	Users             *UserRepository
	Clients           *ClientRepository
	Jobs              *JobRepository
	Candidates        *CandidateRepository
	Reviews           *ReviewRepository
	CandidateAccounts *CandidateAccountRepository
}

func NewStore() *Store {
	return &Store{
		Users:             NewUserRepository(),
		Clients:           NewClientRepository(),
		Jobs:              NewJobRepository(),
		Candidates:        NewCandidateRepository(),
		Reviews:           NewReviewRepository(),
		CandidateAccounts: NewCandidateAccountRepository(),
	}
}

func page[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneCandidate(c *domain.Candidate) *domain.Candidate {
	out := *c
	out.Skills = slices.Clone(c.Skills)
	out.Experience = make([]domain.ExperienceEntry, len(c.Experience))
	for i, e := range c.Experience {
		e.Achievements = slices.Clone(e.Achievements)
		out.Experience[i] = e
	}
	out.Education = slices.Clone(c.Education)
	if c.AIStory != nil {
		story := *c.AIStory
		story.Timeline = slices.Clone(c.AIStory.Timeline)
		story.Skills = slices.Clone(c.AIStory.Skills)
		story.Highlights = slices.Clone(c.AIStory.Highlights)
		out.AIStory = &story
	}
	return &out
}

func cloneJob(j *domain.Job) *domain.Job {
	out := *j
	out.RequiredSkills = slices.Clone(j.RequiredSkills)
	if j.SalaryRange != nil {
		sr := *j.SalaryRange
		out.SalaryRange = &sr
	}
	return &out
}
