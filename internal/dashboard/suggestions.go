package dashboard

import (
	"context"
	"strings"

	"github.com/alexivanou/weather-dashboard/internal/model"
)

// FavoritesStore answers whether a display name is saved
type FavoritesStore interface {
	Contains(ctx context.Context, displayName string) bool
}

// SuggestionItem is one line of the suggestion dropdown
type SuggestionItem struct {
	Suggestion  model.Suggestion
	DisplayName string
	Favorite    bool
	Selected    bool
}

// RenderSuggestions turns ranked suggestions into dropdown items. Items with
// a display name already shown (case-insensitive) are dropped. The first
// exact match is selected, or the first item when there is none. favorites
// may be nil.
func RenderSuggestions(ctx context.Context, suggestions []model.Suggestion, favorites FavoritesStore) []SuggestionItem {
	items := make([]SuggestionItem, 0, len(suggestions))
	seen := make(map[string]struct{}, len(suggestions))
	selected := -1

	for _, s := range suggestions {
		name := s.Label()
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		item := SuggestionItem{Suggestion: s, DisplayName: name}
		if favorites != nil {
			item.Favorite = favorites.Contains(ctx, name)
		}
		if s.IsExactMatch && selected < 0 {
			selected = len(items)
		}
		items = append(items, item)
	}

	if len(items) > 0 {
		if selected < 0 {
			selected = 0
		}
		items[selected].Selected = true
	}
	return items
}

// SplitDisplayName splits "City[, State], CC" into the city part and the
// trailing country code
func SplitDisplayName(displayName string) (city, country string) {
	parts := strings.Split(displayName, ",")
	if len(parts) == 1 {
		return strings.TrimSpace(displayName), ""
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	city = strings.TrimSpace(strings.Join(parts[:len(parts)-1], ","))
	return city, last
}
