package persistence

import (
	"context"
	"maps"
	"sync"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/aggregates/draft"
	"github.com/aquaops/pond-miniapp/modules/miniapp/infrastructure/persistence/models"
)

type SafeMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewSafeMap[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{
		m: make(map[K]V),
	}
}

func (s *SafeMap[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *SafeMap[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, found := s.m[key]
	return val, found
}

func (s *SafeMap[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

type draftKey struct {
	userID  int64
	variant string
}

// InmemDraftRepository keeps drafts for the life of the process. Models are
// stored rather than domain values so callers never share a mutable draft.
type InmemDraftRepository struct {
	drafts *SafeMap[draftKey, models.Draft]
	shared *SafeMap[int64, models.Shared]
}

func NewInmemDraftRepository() *InmemDraftRepository {
	return &InmemDraftRepository{
		drafts: NewSafeMap[draftKey, models.Draft](),
		shared: NewSafeMap[int64, models.Shared](),
	}
}

func (r *InmemDraftRepository) Get(ctx context.Context, userID int64, variant string) (draft.Draft, error) {
	model, found := r.drafts.Get(draftKey{userID: userID, variant: variant})
	if !found {
		return nil, draft.ErrDraftNotFound
	}
	return ToDomainDraft(cloneDraftModel(model))
}

func (r *InmemDraftRepository) Save(ctx context.Context, d draft.Draft) error {
	model := ToDBDraft(d)
	r.drafts.Set(draftKey{userID: model.UserID, variant: model.Variant}, model)
	return nil
}

func (r *InmemDraftRepository) Delete(ctx context.Context, userID int64, variant string) error {
	r.drafts.Delete(draftKey{userID: userID, variant: variant})
	return nil
}

func (r *InmemDraftRepository) GetShared(ctx context.Context, userID int64) (draft.Shared, error) {
	model, found := r.shared.Get(userID)
	if !found {
		return nil, draft.ErrDraftNotFound
	}
	return ToDomainShared(model)
}

func (r *InmemDraftRepository) SaveShared(ctx context.Context, s draft.Shared) error {
	r.shared.Set(s.UserID(), ToDBShared(s))
	return nil
}

func cloneDraftModel(m models.Draft) models.Draft {
	m.Values = maps.Clone(m.Values)
	rows := make([]models.DraftRow, len(m.Rows))
	for i, row := range m.Rows {
		rows[i] = models.DraftRow{ID: row.ID, Values: maps.Clone(row.Values)}
	}
	m.Rows = rows
	return m
}
