package domain

import (
	"context"
	"fmt"
	"time"
)

// ReviewAction is the verb recorded on a review
type ReviewAction string

const (
	ActionApprove  ReviewAction = "APPROVE"
	ActionPipeline ReviewAction = "PIPELINE"
	ActionReject   ReviewAction = "REJECT"
	ActionComment  ReviewAction = "COMMENT"
)

// ParseReviewAction validates a raw action token
func ParseReviewAction(s string) (ReviewAction, error) {
	switch ReviewAction(s) {
	case ActionApprove, ActionPipeline, ActionReject, ActionComment:
		return ReviewAction(s), nil
	default:
		return "", fmt.Errorf("invalid review action %q", s)
	}
}

// CandidateStatus returns the status the action writes onto the candidate.
// The literal action token is stored; COMMENT leaves the status alone.
func (a ReviewAction) CandidateStatus() (string, bool) {
	if a == ActionComment {
		return "", false
	}
	return string(a), true
}

// Review is one append-only entry in a candidate's review log
type Review struct {
	ReviewID    string
	CandidateID string
	UserID      string
	UserName    string
	UserRole    Role
	Action      ReviewAction
	Comment     string
	Timestamp   time.Time
}

// ReviewRepository defines data access for reviews
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	// ListByCandidate returns reviews newest first
	ListByCandidate(ctx context.Context, candidateID string) ([]*Review, error)
}
