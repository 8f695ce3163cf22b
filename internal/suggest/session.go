package suggest

import (
	"context"
	"sync/atomic"

	"github.com/alexivanou/weather-dashboard/internal/model"
)

// Session fences results for a single input box: only the answer to the most
// recent call is current. Older answers still populate the shared cache.
type Session struct {
	suggester *Suggester
	seq       atomic.Uint64
}

// NewSession creates a session bound to s
func (s *Suggester) NewSession() *Session {
	return &Session{suggester: s}
}

// Suggest returns the suggestions for query and whether no newer call was
// started on this session while it was in flight. Callers must not render a
// result that is not current.
func (ss *Session) Suggest(ctx context.Context, query string) ([]model.Suggestion, bool) {
	seq := ss.seq.Add(1)
	results := ss.suggester.GetSuggestions(ctx, query)
	return results, ss.seq.Load() == seq
}
