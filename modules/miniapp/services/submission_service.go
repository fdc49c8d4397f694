package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/pkg/backend"
	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/eventbus"
	"github.com/aquaops/pond-miniapp/pkg/intl"
	"github.com/aquaops/pond-miniapp/pkg/metrics"
)

const msgSubmitted = "Forms.Messages.Submitted"

type SubmitBackend interface {
	Submit(ctx context.Context, initData string, s backend.Submission) (backend.Result, error)
}

type SubmissionResult struct {
	Message string
	Draft   draft.Draft
}

// SubmissionService validates a draft, sends it once and clears it on
// success. A second submit of the same form while one is in flight is
// refused rather than queued.
type SubmissionService struct {
	backend   SubmitBackend
	drafts    *DraftService
	catalogs  *CatalogService
	publisher eventbus.EventBus

	inFlight sync.Map
}

func NewSubmissionService(b SubmitBackend, drafts *DraftService, catalogs *CatalogService, publisher eventbus.EventBus) *SubmissionService {
	return &SubmissionService{
		backend:   b,
		drafts:    drafts,
		catalogs:  catalogs,
		publisher: publisher,
	}
}

type flightKey struct {
	userID  int64
	variant string
}

func (s *SubmissionService) Submit(ctx context.Context, variantKey string) (*SubmissionResult, error) {
	identity, err := composables.UseInitData(ctx)
	if err != nil {
		return nil, err
	}
	variant, err := formvariant.Get(variantKey)
	if err != nil {
		return nil, err
	}

	key := flightKey{userID: identity.UserID(), variant: variant.Key}
	if _, busy := s.inFlight.LoadOrStore(key, struct{}{}); busy {
		s.publish(identity.UserID(), variant.Key, metrics.OutcomeInProgress, 0, ErrSubmissionInProgress)
		return nil, ErrSubmissionInProgress
	}
	defer s.inFlight.Delete(key)

	start := time.Now()
	res, err := s.submit(ctx, identity.UserID(), variant)
	s.publish(identity.UserID(), variant.Key, outcomeOf(err), time.Since(start), err)
	return res, err
}

func (s *SubmissionService) submit(ctx context.Context, userID int64, variant *formvariant.Variant) (*SubmissionResult, error) {
	logger := composables.UseLogger(ctx).WithField("variant", variant.Key)

	shared, err := s.drafts.shared(ctx, userID)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.get(ctx, userID, variant.Key)
	if err != nil {
		return nil, err
	}

	in := d.Input(shared)
	if err := s.catalogs.Check(ctx, CatalogLocations, formvariant.FieldLocation, in.Location); err != nil {
		return nil, err
	}
	payload, err := variant.Prepare(in)
	if err != nil {
		return nil, err
	}

	result, err := s.backend.Submit(ctx, composables.UseRawInitData(ctx), payload)
	if err != nil {
		logger.WithError(err).Error("submission failed")
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if !result.Success {
		logger.WithField("reason", result.Reason()).Warn("submission rejected")
		return nil, &RejectionError{Message: result.Reason()}
	}

	unlock := s.drafts.lock(userID)
	d, err = s.drafts.get(ctx, userID, variant.Key)
	if err == nil {
		d.Reset()
		err = s.drafts.repo.Save(ctx, d)
	}
	unlock()
	if err != nil {
		logger.WithError(err).Error("failed to clear submitted draft")
		return nil, err
	}

	message := result.Message
	if message == "" {
		message = intl.Localize(ctx, msgSubmitted, nil)
	}
	logger.Info("submission accepted")
	return &SubmissionResult{Message: message, Draft: d}, nil
}

func (s *SubmissionService) publish(userID int64, variant, outcome string, took time.Duration, err error) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(&SubmissionEvent{
		UserID:   userID,
		Variant:  variant,
		Outcome:  outcome,
		Duration: took,
		Err:      err,
	})
}

func outcomeOf(err error) string {
	var validation *ValidationError
	var rejection *RejectionError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &validation):
		return metrics.OutcomeInvalid
	case errors.As(err, &rejection):
		return metrics.OutcomeRejected
	case errors.Is(err, ErrBackendUnavailable):
		return metrics.OutcomeNetwork
	default:
		return metrics.OutcomeInvalid
	}
}
