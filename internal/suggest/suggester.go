// Package suggest implements the city autocomplete pipeline: a TTL cache of
// ranked results, a request throttle, request coalescing and the ranker.
package suggest

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexivanou/weather-dashboard/internal/cache"
	"github.com/alexivanou/weather-dashboard/internal/metrics"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	MinQueryLength         = 2
	DefaultCacheTTL        = 10 * time.Minute
	DefaultCacheMaxEntries = 15

	metricsComponent = "dashboard"
)

var errSuperseded = errors.New("deferred suggestion request superseded")

// Fetcher returns raw, unranked candidates for a query
type Fetcher interface {
	FetchSuggestions(ctx context.Context, query string) ([]model.Suggestion, error)
}

// Options tune a Suggester. Zero values select the defaults.
type Options struct {
	CacheTTL         time.Duration
	CacheMaxEntries  int
	ThrottleInterval time.Duration
	Clock            func() time.Time
	Logger           *zap.Logger
	Metrics          *metrics.Metrics
}

// Suggester serves suggestions from its cache or from the fetcher, spacing
// fetches by the throttle interval. It owns all of its state; build one per
// component that needs it.
type Suggester struct {
	fetcher  Fetcher
	ranker   *Ranker
	cache    *cache.Cache[[]model.Suggestion]
	ttl      time.Duration
	throttle *Throttle
	group    singleflight.Group
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a Suggester
func New(fetcher Fetcher, ranker *Ranker, opts Options) *Suggester {
	if ranker == nil {
		ranker = NewRanker("", 0, 0)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.CacheMaxEntries <= 0 {
		opts.CacheMaxEntries = DefaultCacheMaxEntries
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var cacheOpts []cache.Option
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}

	return &Suggester{
		fetcher:  fetcher,
		ranker:   ranker,
		cache:    cache.New[[]model.Suggestion](opts.CacheMaxEntries, cacheOpts...),
		ttl:      opts.CacheTTL,
		throttle: NewThrottle(opts.ThrottleInterval),
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
}

// GetSuggestions returns ranked suggestions for raw user input. It never
// fails: short queries, upstream errors, superseded deferrals and cancelled
// contexts all yield an empty list. A superseded result is indistinguishable
// from "no matches" here; callers that must skip stale results go through
// Session.Suggest.
func (s *Suggester) GetSuggestions(ctx context.Context, query string) []model.Suggestion {
	key := NormalizeQuery(query)
	if utf8.RuneCountInString(key) < MinQueryLength {
		s.metrics.SuggestLookup(metricsComponent, "short")
		return []model.Suggestion{}
	}

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.SuggestLookup(metricsComponent, "hit")
		return cached
	}
	s.metrics.SuggestLookup(metricsComponent, "miss")

	// Callers for the same key share one attempt, throttle wait included.
	// The attempt outlives any single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	trimmed := strings.TrimSpace(query)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.throttledFetch(fetchCtx, trimmed, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return []model.Suggestion{}
		}
		return res.Val.([]model.Suggestion)
	case <-ctx.Done():
		return []model.Suggestion{}
	}
}

func (s *Suggester) throttledFetch(ctx context.Context, query, key string) ([]model.Suggestion, error) {
	for {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}

		admitted, ready := s.throttle.Admit()
		if admitted {
			break
		}
		if !<-ready {
			s.metrics.SuggestLookup(metricsComponent, "superseded")
			s.logger.Debug("Suggestion request superseded", zap.String("query", key))
			return nil, errSuperseded
		}
	}

	raw, err := s.fetcher.FetchSuggestions(ctx, query)
	if err != nil {
		s.metrics.SuggestLookup(metricsComponent, "failed")
		s.logger.Warn("Error fetching city suggestions", zap.String("query", key), zap.Error(err))
		return nil, err
	}

	filtered := s.ranker.FilterAndDeduplicate(raw, key)
	if evicted := s.cache.Set(key, filtered, s.ttl); evicted > 0 {
		s.logger.Debug("Pruned suggestion cache", zap.Int("evicted", evicted))
	}
	return filtered, nil
}

// CacheLen returns the number of cached queries
func (s *Suggester) CacheLen() int {
	return s.cache.Len()
}

// Throttle exposes the request throttle
func (s *Suggester) Throttle() *Throttle {
	return s.throttle
}
