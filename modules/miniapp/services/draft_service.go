package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

// SetSharedDTO carries the shared selection; nil leaves a value unchanged.
type SetSharedDTO struct {
	Date     *string
	Location *string
}

// DraftService owns the per-operator form state. Edits to one operator's
// drafts are serialized so concurrent requests never lose an update.
type DraftService struct {
	repo     draft.Repository
	catalogs *CatalogService

	locks sync.Map
}

func NewDraftService(repo draft.Repository, catalogs *CatalogService) *DraftService {
	return &DraftService{repo: repo, catalogs: catalogs}
}

func (s *DraftService) lock(userID int64) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *DraftService) Shared(ctx context.Context) (draft.Shared, error) {
	identity, err := composables.UseInitData(ctx)
	if err != nil {
		return nil, err
	}
	return s.shared(ctx, identity.UserID())
}

func (s *DraftService) shared(ctx context.Context, userID int64) (draft.Shared, error) {
	shared, err := s.repo.GetShared(ctx, userID)
	if errors.Is(err, draft.ErrDraftNotFound) {
		return draft.NewShared(userID, "", ""), nil
	}
	return shared, err
}

// SetShared updates the date and pond every form of the operator uses. A pond
// missing from the loaded catalog is refused with suggestions.
func (s *DraftService) SetShared(ctx context.Context, dto SetSharedDTO) (draft.Shared, error) {
	identity, err := composables.UseInitData(ctx)
	if err != nil {
		return nil, err
	}
	defer s.lock(identity.UserID())()

	shared, err := s.shared(ctx, identity.UserID())
	if err != nil {
		return nil, err
	}
	if dto.Date != nil {
		next, err := shared.SetDate(*dto.Date)
		if err != nil {
			return nil, &ValidationError{Field: formvariant.FieldDate, MessageID: formvariant.MsgDateInvalid}
		}
		shared = next
	}
	if dto.Location != nil {
		if err := s.catalogs.Check(ctx, CatalogLocations, formvariant.FieldLocation, *dto.Location); err != nil {
			return nil, err
		}
		shared = shared.SetLocation(*dto.Location)
	}
	if err := s.repo.SaveShared(ctx, shared); err != nil {
		return nil, err
	}
	return shared, nil
}

// Get returns the operator's draft of a form, a blank one when none exists.
func (s *DraftService) Get(ctx context.Context, variantKey string) (draft.Draft, error) {
	identity, err := composables.UseInitData(ctx)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, identity.UserID(), variantKey)
}

func (s *DraftService) get(ctx context.Context, userID int64, variantKey string) (draft.Draft, error) {
	variant, err := formvariant.Get(variantKey)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.Get(ctx, userID, variant.Key)
	if errors.Is(err, draft.ErrDraftNotFound) {
		return draft.New(userID, variant), nil
	}
	return d, err
}

func (s *DraftService) SetField(ctx context.Context, variantKey, field, value string) (draft.Draft, error) {
	return s.mutate(ctx, variantKey, func(d draft.Draft) error {
		f, ok := d.Variant().Field(field)
		if !ok {
			return formvariant.ErrUnknownField
		}
		if err := s.checkChoice(ctx, field, f.Kind, f.Options, value); err != nil {
			return err
		}
		return d.SetField(field, value)
	})
}

// UpdateRow edits one cell. An update naming a row that no longer exists is
// dropped and the current draft returned.
func (s *DraftService) UpdateRow(ctx context.Context, variantKey string, rowID int, field, value string) (draft.Draft, error) {
	return s.mutate(ctx, variantKey, func(d draft.Draft) error {
		if rows := d.Variant().Rows; rows != nil {
			if err := s.checkChoice(ctx, field, rows.Kind(field), nil, value); err != nil {
				return err
			}
		}
		return d.UpdateRow(rowID, field, value)
	})
}

func (s *DraftService) BlurRow(ctx context.Context, variantKey string, rowID int) (draft.Draft, error) {
	return s.mutate(ctx, variantKey, func(d draft.Draft) error {
		_, err := d.BlurRow(rowID)
		return err
	})
}

func (s *DraftService) RemoveRow(ctx context.Context, variantKey string, rowID int) (draft.Draft, error) {
	return s.mutate(ctx, variantKey, func(d draft.Draft) error {
		return d.RemoveRow(rowID)
	})
}

// Reset drops the stored draft of a form and returns a blank one. The shared
// date and location are kept.
func (s *DraftService) Reset(ctx context.Context, variantKey string) (draft.Draft, error) {
	identity, err := composables.UseInitData(ctx)
	if err != nil {
		return nil, err
	}
	variant, err := formvariant.Get(variantKey)
	if err != nil {
		return nil, err
	}
	defer s.lock(identity.UserID())()

	if err := s.repo.Delete(ctx, identity.UserID(), variant.Key); err != nil {
		return nil, fmt.Errorf("delete draft: %w", err)
	}
	return draft.New(identity.UserID(), variant), nil
}

func (s *DraftService) mutate(ctx context.Context, variantKey string, fn func(d draft.Draft) error) (draft.Draft, error) {
	identity, err := composables.UseInitData(ctx)
	if err != nil {
		return nil, err
	}
	defer s.lock(identity.UserID())()

	d, err := s.get(ctx, identity.UserID(), variantKey)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		if errors.Is(err, rowlist.ErrRowNotFound) {
			composables.UseLogger(ctx).WithField("variant", variantKey).Debug("stale row update dropped")
			return d, nil
		}
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}

func (s *DraftService) checkChoice(ctx context.Context, field string, kind formvariant.Kind, options []string, value string) error {
	if value == "" {
		return nil
	}
	switch kind {
	case formvariant.KindFishType:
		return s.catalogs.Check(ctx, CatalogFishTypes, field, value)
	case formvariant.KindMeasurementType:
		if !slices.Contains(options, value) {
			return &ValidationError{Field: field, MessageID: formvariant.MsgRequiredFields}
		}
	}
	return nil
}
