package dashboard

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexivanou/weather-dashboard/internal/model"
	"github.com/alexivanou/weather-dashboard/internal/prefs"
	"github.com/alexivanou/weather-dashboard/internal/suggest"
	"github.com/alexivanou/weather-dashboard/internal/validate"
	"go.uber.org/zap"
)

const historyShown = 5

const helpText = `Commands:
  search <text>             suggest cities (no text: recent searches)
  pick <n>                  show weather for suggestion n
  weather <city>[, <CC>]    current weather
  forecast <city>[, <CC>]   5 day forecast
  here <lat> <lon>          weather at coordinates
  fav                       list favorites
  fav add <n|name>          save suggestion n or a display name
  fav rm <n|name>           remove a favorite
  fav show <n>              weather for favorite n
  unit <metric|imperial|standard>
  quit`

// App is the interactive dashboard
type App struct {
	orchestrator *Orchestrator
	session      *suggest.Session
	favorites    *prefs.Favorites
	history      *prefs.History
	presenter    *TerminalPresenter
	messages     Messages
	logger       *zap.Logger

	unit string
	last []SuggestionItem
}

// NewApp wires the dashboard components
func NewApp(
	orchestrator *Orchestrator,
	suggester *suggest.Suggester,
	favorites *prefs.Favorites,
	history *prefs.History,
	presenter *TerminalPresenter,
	logger *zap.Logger,
) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		orchestrator: orchestrator,
		session:      suggester.NewSession(),
		favorites:    favorites,
		history:      history,
		presenter:    presenter,
		messages:     orchestrator.Messages(),
		logger:       logger,
		unit:         "metric",
	}
}

// Run reads commands from in until it is exhausted, "quit" is entered or
// ctx is cancelled
func (a *App) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	a.presenter.ShowMessage("Weather dashboard. Type 'help' for commands.")

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(a.presenter.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if a.Handle(ctx, line) {
			return nil
		}
	}
}

// Handle executes one command line and reports whether the user asked to quit
func (a *App) Handle(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		a.presenter.ShowMessage(helpText)
	case "search", "s":
		a.search(ctx, arg)
	case "pick", "p":
		a.pick(ctx, arg)
	case "weather", "w":
		a.byCity(ctx, arg, a.orchestrator.FetchWeather)
	case "forecast", "f":
		a.byCity(ctx, arg, a.orchestrator.FetchForecast)
	case "here":
		a.here(ctx, arg)
	case "fav":
		a.fav(ctx, arg)
	case "unit":
		a.setUnit(arg)
	default:
		a.presenter.ShowAlert(a.messages.Unknown)
	}
	return false
}

func (a *App) search(ctx context.Context, query string) {
	if query == "" {
		a.showHistory(ctx)
		return
	}

	results, current := a.session.Suggest(ctx, query)
	if !current {
		return
	}
	a.last = RenderSuggestions(ctx, results, a.favorites)
	a.presenter.ShowSuggestions(query, a.last)
}

func (a *App) showHistory(ctx context.Context) {
	entries, err := a.history.List(ctx)
	if err != nil {
		a.logger.Warn("Failed to read search history", zap.Error(err))
		return
	}

	seen := make(map[string]struct{}, len(entries))
	names := make([]string, 0, historyShown)
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.DisplayName))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, e.DisplayName)
		if len(names) == historyShown {
			break
		}
	}
	if len(names) > 0 {
		a.presenter.ShowList(a.messages.History, names, "")
	}
}

func (a *App) pick(ctx context.Context, arg string) {
	item, ok := a.suggestionAt(arg)
	if !ok {
		a.presenter.ShowAlert(a.messages.EnterCity)
		return
	}

	if err := a.history.Add(ctx, item.DisplayName, suggestionFields(item.Suggestion)); err != nil {
		a.logger.Warn("Failed to save search history", zap.Error(err))
	}

	s := item.Suggestion
	if s.Lat != nil && s.Lon != nil {
		a.orchestrator.FetchWeatherByCoords(ctx, *s.Lat, *s.Lon, a.unit)
		return
	}
	city, country := SplitDisplayName(item.DisplayName)
	a.orchestrator.FetchWeather(ctx, city, country, a.unit)
}

func (a *App) byCity(ctx context.Context, arg string, fetch func(ctx context.Context, city, country, unit string) bool) {
	if arg == "" {
		a.presenter.ShowAlert(a.messages.EnterCity)
		return
	}
	city, country := SplitDisplayName(arg)
	fetch(ctx, city, country, a.unit)
}

func (a *App) here(ctx context.Context, arg string) {
	fields := strings.Fields(strings.ReplaceAll(arg, ",", " "))
	if len(fields) != 2 {
		a.presenter.ShowAlert(a.messages.InvalidCoords)
		return
	}
	lat, lon, err := validate.Coordinates(fields[0], fields[1])
	if err != nil {
		a.presenter.ShowAlert(a.messages.InvalidCoords)
		return
	}

	if place := a.orchestrator.ReverseGeocode(ctx, lat, lon, a.unit); place != nil {
		a.presenter.ShowMessage(place.City + ", " + place.Country)
	}
}

func (a *App) fav(ctx context.Context, arg string) {
	sub, rest, _ := strings.Cut(arg, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(sub) {
	case "", "list":
		favs, err := a.favorites.List(ctx)
		if err != nil {
			a.logger.Warn("Failed to read favorites", zap.Error(err))
			return
		}
		a.presenter.ShowList(a.messages.Favorites, favs, a.messages.NoFavorites)
	case "add":
		name := rest
		if item, ok := a.suggestionAt(rest); ok {
			name = item.DisplayName
		}
		if name == "" {
			a.presenter.ShowAlert(a.messages.EnterCity)
			return
		}
		added, err := a.favorites.Add(ctx, name)
		if err != nil {
			a.logger.Warn("Failed to save favorite", zap.Error(err))
			return
		}
		if added {
			a.presenter.ShowMessage(fmt.Sprintf(a.messages.FavoriteAdded, name))
		} else {
			a.presenter.ShowMessage(fmt.Sprintf(a.messages.FavoriteExists, name))
		}
	case "rm", "remove":
		name, ok := a.favoriteAt(ctx, rest)
		if !ok {
			name = rest
		}
		if err := a.favorites.Remove(ctx, name); err != nil {
			a.logger.Warn("Failed to remove favorite", zap.Error(err))
		}
	case "show":
		name, ok := a.favoriteAt(ctx, rest)
		if !ok {
			a.presenter.ShowAlert(a.messages.NoFavorites)
			return
		}
		city, country := SplitDisplayName(name)
		a.orchestrator.FetchWeather(ctx, city, country, a.unit)
	default:
		a.presenter.ShowAlert(a.messages.Unknown)
	}
}

func (a *App) setUnit(arg string) {
	unit := validate.Unit(arg, "")
	if unit == "" {
		a.presenter.ShowAlert(a.messages.Unknown)
		return
	}
	a.unit = unit
	a.presenter.SetUnit(unit)
}

// suggestionAt resolves a 1-based index into the last rendered suggestions
func (a *App) suggestionAt(arg string) (SuggestionItem, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.last) {
		return SuggestionItem{}, false
	}
	return a.last[n-1], true
}

func (a *App) favoriteAt(ctx context.Context, arg string) (string, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return "", false
	}
	favs, err := a.favorites.List(ctx)
	if err != nil || n > len(favs) {
		return "", false
	}
	return favs[n-1], true
}

func suggestionFields(s model.Suggestion) map[string]any {
	fields := map[string]any{
		"name":    s.Name,
		"country": s.Country,
	}
	if s.State != "" {
		fields["state"] = s.State
	}
	if s.Population > 0 {
		fields["population"] = s.Population
	}
	if s.Lat != nil && s.Lon != nil {
		fields["lat"] = *s.Lat
		fields["lon"] = *s.Lon
	}
	return fields
}
