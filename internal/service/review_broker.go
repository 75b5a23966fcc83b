package service

import (
	"sync"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/observability/metrics"
)

const subscriberBuffer = 16

// ReviewBroker fans new reviews out to live subscribers of a candidate.
// Slow subscribers miss events rather than block publishers.
type ReviewBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan *domain.Review]struct{}
}

func NewReviewBroker() *ReviewBroker {
	return &ReviewBroker{subs: make(map[string]map[chan *domain.Review]struct{})}
}

// Subscribe returns a channel of reviews for candidateID and a func that
// ends the subscription and closes the channel.
func (b *ReviewBroker) Subscribe(candidateID string) (<-chan *domain.Review, func()) {
	ch := make(chan *domain.Review, subscriberBuffer)
	b.mu.Lock()
	if b.subs[candidateID] == nil {
		b.subs[candidateID] = make(map[chan *domain.Review]struct{})
	}
	b.subs[candidateID][ch] = struct{}{}
	b.mu.Unlock()
	metrics.FeedSubscribed()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[candidateID], ch)
			if len(b.subs[candidateID]) == 0 {
				delete(b.subs, candidateID)
			}
			b.mu.Unlock()
			close(ch)
			metrics.FeedUnsubscribed()
		})
	}
}

func (b *ReviewBroker) Publish(r *domain.Review) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[r.CandidateID] {
		select {
		case ch <- r:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers for candidateID
func (b *ReviewBroker) Subscribers(candidateID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[candidateID])
}
