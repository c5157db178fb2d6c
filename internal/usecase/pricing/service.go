package pricing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultCacheDuration is the freshness window applied when none is
// configured: a cached price older than this is considered stale.
const DefaultCacheDuration = 5 * time.Minute

// fallbackPrices is the static table of last-resort commodity prices (USD
// per unit) used when neither the provider nor the cache can answer.
var fallbackPrices = map[string]decimal.Decimal{
	"corn":     decimal.RequireFromString("4.25"),
	"soybeans": decimal.RequireFromString("10.85"),
	"wheat":    decimal.RequireFromString("5.60"),
	"cotton":   decimal.RequireFromString("0.67"),
	"rice":     decimal.RequireFromString("14.20"),
	"barley":   decimal.RequireFromString("5.10"),
	"oats":     decimal.RequireFromString("3.40"),
	"hay":      decimal.RequireFromString("165.00"),
}

// QuoteProvider supplies the current market price for a crop. The provider
// may block on network or simulated latency; it is the only suspension point
// in the system.
type QuoteProvider interface {
	FetchPrice(ctx context.Context, crop string) (decimal.Decimal, error)
}

type cacheEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// Service is an in-memory, time-bounded cache of commodity prices in front
// of a QuoteProvider. Entries expire lazily and independently: each is
// checked against the freshness window on access, there is no sweep.
type Service struct {
	provider QuoteProvider
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	ttl   time.Duration

	now func() time.Time
}

// NewService creates a new pricing Service instance. A non-positive ttl
// falls back to DefaultCacheDuration.
func NewService(provider QuoteProvider, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		logger:   logger,
		cache:    make(map[string]cacheEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// FetchPrices resolves a price for each requested crop. A fresh cache entry
// is served as-is; otherwise the provider is asked, and on provider failure
// the last cached value, then the static fallback table, stand in. One bad
// crop never fails the batch: crops with no resolvable price are simply
// omitted from the result. Requesting no crops resolves every known crop.
func (s *Service) FetchPrices(ctx context.Context, crops []string) map[string]decimal.Decimal {
	if len(crops) == 0 {
		crops = s.AvailableCrops()
	}

	prices := make(map[string]decimal.Decimal, len(crops))
	for _, crop := range crops {
		key := normalizeCrop(crop)
		if key == "" {
			continue
		}
		if price, ok := s.resolve(ctx, key); ok {
			prices[key] = price
		}
	}
	return prices
}

func (s *Service) resolve(ctx context.Context, crop string) (decimal.Decimal, bool) {
	s.mu.Lock()
	entry, cached := s.cache[crop]
	fresh := cached && s.now().Sub(entry.fetchedAt) < s.ttl
	s.mu.Unlock()

	if fresh {
		return entry.price, true
	}

	price, err := s.provider.FetchPrice(ctx, crop)
	if err == nil {
		s.mu.Lock()
		s.cache[crop] = cacheEntry{price: price, fetchedAt: s.now()}
		s.mu.Unlock()
		return price, true
	}

	s.logger.Warn("price fetch failed", zap.String("crop", crop), zap.Error(err))
	if cached {
		return entry.price, true
	}
	if fallback, ok := fallbackPrices[crop]; ok {
		return fallback, true
	}
	return decimal.Zero, false
}

// CachedPrice returns the cached price for the crop regardless of freshness,
// falling back to the static table. It never triggers a refresh.
func (s *Service) CachedPrice(crop string) (decimal.Decimal, bool) {
	key := normalizeCrop(crop)

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()

	if ok {
		return entry.price, true
	}
	if fallback, found := fallbackPrices[key]; found {
		return fallback, true
	}
	return decimal.Zero, false
}

// LastUpdateTime describes the age of the cached price for display.
func (s *Service) LastUpdateTime(crop string) string {
	key := normalizeCrop(crop)

	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()

	if !ok {
		return "Never updated"
	}

	age := s.now().Sub(entry.fetchedAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(age.Hours()/24))
	}
}

// ClearCache drops every cached entry.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]cacheEntry)
	s.mu.Unlock()
}

// SetCacheDuration re-tunes the freshness window. Non-positive durations are
// ignored. Existing entries are re-judged against the new window on their
// next access.
func (s *Service) SetCacheDuration(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.ttl = ttl
	s.mu.Unlock()
}

// CacheDuration returns the current freshness window.
func (s *Service) CacheDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttl
}

// IsValidCrop reports whether the crop is in the known crop table.
func (s *Service) IsValidCrop(crop string) bool {
	_, ok := fallbackPrices[normalizeCrop(crop)]
	return ok
}

// AvailableCrops lists every known crop, sorted.
func (s *Service) AvailableCrops() []string {
	crops := make([]string, 0, len(fallbackPrices))
	for crop := range fallbackPrices {
		crops = append(crops, crop)
	}
	sort.Strings(crops)
	return crops
}

// FallbackPrice returns the static default price for the crop.
func (s *Service) FallbackPrice(crop string) (decimal.Decimal, bool) {
	price, ok := fallbackPrices[normalizeCrop(crop)]
	return price, ok
}

// FallbackPrices returns a copy of the static price table.
func FallbackPrices() map[string]decimal.Decimal {
	table := make(map[string]decimal.Decimal, len(fallbackPrices))
	for crop, price := range fallbackPrices {
		table[crop] = price
	}
	return table
}

func normalizeCrop(crop string) string {
	return strings.ToLower(strings.TrimSpace(crop))
}
