package domain

import (
	"context"
	"time"
)

// Job status values. Status is otherwise free-form.
const (
	JobStatusDraft  = "Draft"
	JobStatusActive = "Active"
	JobStatusOnHold = "On Hold"
	JobStatusClosed = "Closed"
)

// ExperienceRange is the required years of experience
type ExperienceRange struct {
	MinYears int `json:"min_years"`
	MaxYears int `json:"max_years"`
}

// SalaryRange is the optional pay band of a job
type SalaryRange struct {
	MinAmount int    `json:"min_amount"`
	MaxAmount int    `json:"max_amount"`
	Currency  string `json:"currency"`
}

// Job is an opening owned by a client tenant
type Job struct {
	JobID           string
	ClientID        string
	Title           string
	Location        string
	EmploymentType  string
	ExperienceRange ExperienceRange
	SalaryRange     *SalaryRange
	WorkModel       string
	RequiredSkills  []string
	Description     string
	Status          string
	CreatedAt       time.Time
	CreatedBy       string
	UpdatedAt       time.Time
}

// JobFilter narrows job listings. Empty fields do not filter.
type JobFilter struct {
	ClientID string
	Status   string
	Search   string // title or any required skill, case-insensitive
	Skip     int
	Limit    int
}

// JobRepository defines data access for jobs
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, job *Job) error
	List(ctx context.Context, filter JobFilter) ([]*Job, error)
}
