// Package prefs keeps the dashboard's favorites and search history as JSON
// arrays in a key-value store.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexivanou/weather-dashboard/internal/repository"
	"go.uber.org/zap"
)

const (
	FavoritesKey = "favorites"
	HistoryKey   = "weather_search_history"

	MaxHistoryEntries = 8
)

// load decodes the JSON array stored under key. A missing key is an empty
// list; a corrupt value is logged and treated as empty.
func load[T any](ctx context.Context, repo repository.PrefsRepository, logger *zap.Logger, key string) ([]T, error) {
	raw, err := repo.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Warn("Discarding unreadable preference", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save[T any](ctx context.Context, repo repository.PrefsRepository, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := repo.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Favorites is the dashboard's list of saved display names
type Favorites struct {
	repo   repository.PrefsRepository
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFavorites creates a favorites list backed by repo
func NewFavorites(repo repository.PrefsRepository, logger *zap.Logger) *Favorites {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Favorites{repo: repo, logger: logger}
}

// List returns the favorites in insertion order
func (f *Favorites) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return load[string](ctx, f.repo, f.logger, FavoritesKey)
}

// Add appends name unless it is already saved. It reports whether the list changed.
func (f *Favorites) Add(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	favs, err := load[string](ctx, f.repo, f.logger, FavoritesKey)
	if err != nil {
		return false, err
	}
	for _, fav := range favs {
		if fav == name {
			return false, nil
		}
	}
	return true, save(ctx, f.repo, FavoritesKey, append(favs, name))
}

// Remove deletes name from the list. Removing an unknown name is a no-op.
func (f *Favorites) Remove(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	favs, err := load[string](ctx, f.repo, f.logger, FavoritesKey)
	if err != nil {
		return err
	}
	kept := favs[:0]
	for _, fav := range favs {
		if fav != name {
			kept = append(kept, fav)
		}
	}
	if len(kept) == len(favs) {
		return nil
	}
	return save(ctx, f.repo, FavoritesKey, kept)
}

// Contains reports whether name is saved. Storage errors count as absent.
func (f *Favorites) Contains(ctx context.Context, name string) bool {
	favs, err := f.List(ctx)
	if err != nil {
		f.logger.Warn("Failed to read favorites", zap.Error(err))
		return false
	}
	for _, fav := range favs {
		if fav == name {
			return true
		}
	}
	return false
}

// SearchHistoryEntry is one selected city. Extra carries the suggestion
// fields and is flattened into the same JSON object.
type SearchHistoryEntry struct {
	DisplayName string
	Extra       map[string]any
	Timestamp   time.Time
}

// MarshalJSON writes the entry as a flat object with a millisecond timestamp
func (e SearchHistoryEntry) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(e.Extra)+2)
	for k, v := range e.Extra {
		obj[k] = v
	}
	obj["display_name"] = e.DisplayName
	obj["timestamp"] = e.Timestamp.UnixMilli()
	return json.Marshal(obj)
}

// UnmarshalJSON reads the flat object written by MarshalJSON
func (e *SearchHistoryEntry) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	name, _ := obj["display_name"].(string)
	e.DisplayName = name
	if ms, ok := obj["timestamp"].(float64); ok {
		e.Timestamp = time.UnixMilli(int64(ms))
	}
	delete(obj, "display_name")
	delete(obj, "timestamp")
	e.Extra = nil
	if len(obj) > 0 {
		e.Extra = obj
	}
	return nil
}

// History is the most recent searches, newest first, without duplicate
// display names
type History struct {
	repo   repository.PrefsRepository
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewHistory creates a search history backed by repo
func NewHistory(repo repository.PrefsRepository, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{repo: repo, logger: logger, now: time.Now}
}

// List returns the saved searches, newest first
func (h *History) List(ctx context.Context) ([]SearchHistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return load[SearchHistoryEntry](ctx, h.repo, h.logger, HistoryKey)
}

// Add records a search at the front, replacing any entry with the same
// display name (case-insensitive, trimmed) and keeping at most
// MaxHistoryEntries.
func (h *History) Add(ctx context.Context, displayName string, extra map[string]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := load[SearchHistoryEntry](ctx, h.repo, h.logger, HistoryKey)
	if err != nil {
		return err
	}

	normalized := strings.ToLower(strings.TrimSpace(displayName))
	updated := make([]SearchHistoryEntry, 0, len(entries)+1)
	updated = append(updated, SearchHistoryEntry{
		DisplayName: displayName,
		Extra:       extra,
		Timestamp:   h.now(),
	})
	for _, e := range entries {
		if strings.ToLower(strings.TrimSpace(e.DisplayName)) != normalized {
			updated = append(updated, e)
		}
	}
	if len(updated) > MaxHistoryEntries {
		updated = updated[:MaxHistoryEntries]
	}
	return save(ctx, h.repo, HistoryKey, updated)
}
