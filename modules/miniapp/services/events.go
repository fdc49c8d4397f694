package services

import (
	"time"

	"github.com/aquaops/pond-miniapp/pkg/eventbus"
	"github.com/aquaops/pond-miniapp/pkg/metrics"
)

type SubmissionEvent struct {
	UserID   int64
	Variant  string
	Outcome  string
	Duration time.Duration
	Err      error
}

type CatalogLoadedEvent struct {
	Kind CatalogKind
	Err  error
}

// SubscribeMetrics feeds submission and catalog events into collectors.
func SubscribeMetrics(bus eventbus.EventBus, m *metrics.SubmissionMetrics) {
	bus.Subscribe(func(e *SubmissionEvent) {
		m.ObserveSubmission(e.Variant, e.Outcome, e.Duration)
	})
	bus.Subscribe(func(e *CatalogLoadedEvent) {
		m.ObserveCatalogLoad(string(e.Kind), e.Err)
	})
}
