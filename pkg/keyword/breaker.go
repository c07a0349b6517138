package keyword

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/retrievo/pkg/alert"
	"github.com/soundprediction/retrievo/pkg/config"
)

// BreakerSearcher wraps a Searcher with circuit breaking logic. When the
// breaker is open, Search fails immediately without touching the backend;
// the retriever treats that like any other source failure.
type BreakerSearcher struct {
	inner   Searcher
	cb      *gobreaker.CircuitBreaker
	alerter alert.Alerter
	name    string
}

// NewBreakerSearcher creates a circuit-breaking searcher. A trip to the open
// state is reported through the alerter.
func NewBreakerSearcher(inner Searcher, cfg config.CircuitBreakerConfig, alerter alert.Alerter, name string) *BreakerSearcher {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen && alerter != nil {
				msg := fmt.Sprintf("Circuit breaker '%s' changed status from %s to %s. Keyword index is failing.", name, from, to)
				_ = alerter.Alert(fmt.Sprintf("URGENT: Circuit Breaker Tripped - %s", name), msg)
			}
		},
	}

	return &BreakerSearcher{
		inner:   inner,
		cb:      gobreaker.NewCircuitBreaker(st),
		alerter: alerter,
		name:    name,
	}
}

// Search implements Searcher
func (b *BreakerSearcher) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	hits, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Search(ctx, query, topK)
	})

	if err != nil {
		return nil, err
	}
	return hits.([]Hit), nil
}
