package services

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aquaops/pond-miniapp/modules/miniapp/domain/entities/formvariant"
	"github.com/aquaops/pond-miniapp/pkg/composables"
	"github.com/aquaops/pond-miniapp/pkg/eventbus"
)

type CatalogKind string

const (
	CatalogLocations CatalogKind = "locations"
	CatalogFishTypes CatalogKind = "fish-types"
)

const maxSuggestions = 3

type CatalogBackend interface {
	Locations(ctx context.Context, initData string) ([]string, error)
	FishTypes(ctx context.Context, initData string) ([]string, error)
}

type catalogEntry struct {
	items    []string
	loadedAt time.Time
}

// Catalogs is the result of loading both catalogs; each side fails on its
// own.
type Catalogs struct {
	Locations    []string
	FishTypes    []string
	LocationsErr error
	FishTypesErr error
}

// CatalogService caches the read-only reference lists. Failed loads are not
// cached so the next request retries.
type CatalogService struct {
	backend   CatalogBackend
	publisher eventbus.EventBus
	ttl       time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	entries map[CatalogKind]catalogEntry
}

func NewCatalogService(backend CatalogBackend, publisher eventbus.EventBus, ttl time.Duration) *CatalogService {
	return &CatalogService{
		backend:   backend,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
		entries:   make(map[CatalogKind]catalogEntry),
	}
}

func (s *CatalogService) Locations(ctx context.Context) ([]string, error) {
	return s.load(ctx, CatalogLocations)
}

func (s *CatalogService) FishTypes(ctx context.Context) ([]string, error) {
	return s.load(ctx, CatalogFishTypes)
}

// All loads both catalogs concurrently; they may complete in any order.
func (s *CatalogService) All(ctx context.Context) Catalogs {
	var out Catalogs
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Locations, out.LocationsErr = s.Locations(ctx)
	}()
	go func() {
		defer wg.Done()
		out.FishTypes, out.FishTypesErr = s.FishTypes(ctx)
	}()
	wg.Wait()
	return out
}

// Invalidate drops cached entries so the next read goes to the backend.
func (s *CatalogService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[CatalogKind]catalogEntry)
}

// Suggest ranks catalog entries close to input, best first.
func (s *CatalogService) Suggest(ctx context.Context, kind CatalogKind, input string) []string {
	items, err := s.load(ctx, kind)
	if err != nil {
		return nil
	}
	return suggest(input, items)
}

func suggest(input string, items []string) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(input, items)
	sort.Stable(ranks)
	out := make([]string, 0, maxSuggestions)
	for _, r := range ranks {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// Check verifies value against a loaded catalog. An unavailable catalog
// cannot be checked against and lets the value through.
func (s *CatalogService) Check(ctx context.Context, kind CatalogKind, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	items, err := s.load(ctx, kind)
	if err != nil || len(items) == 0 {
		return nil
	}
	if slices.Contains(items, value) {
		return nil
	}
	messageID := formvariant.MsgFishTypeUnknown
	if kind == CatalogLocations {
		messageID = formvariant.MsgLocationUnknown
	}
	return &ValidationError{Field: field, MessageID: messageID, Suggestions: suggest(value, items)}
}

func (s *CatalogService) cached(kind CatalogKind) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[kind]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(entry.loadedAt) > s.ttl {
		return nil, false
	}
	return entry.items, true
}

func (s *CatalogService) load(ctx context.Context, kind CatalogKind) ([]string, error) {
	if items, ok := s.cached(kind); ok {
		return slices.Clone(items), nil
	}

	initData := composables.UseRawInitData(ctx)
	var items []string
	var err error
	switch kind {
	case CatalogLocations:
		items, err = s.backend.Locations(ctx, initData)
	default:
		items, err = s.backend.FishTypes(ctx, initData)
	}
	if s.publisher != nil {
		s.publisher.Publish(&CatalogLoadedEvent{Kind: kind, Err: err})
	}
	if err != nil {
		composables.UseLogger(ctx).WithError(err).WithField("catalog", kind).Warn("catalog load failed")
		return nil, err
	}

	s.mu.Lock()
	s.entries[kind] = catalogEntry{items: slices.Clone(items), loadedAt: s.now()}
	s.mu.Unlock()
	return items, nil
}
