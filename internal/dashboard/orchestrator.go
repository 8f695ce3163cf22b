// Package dashboard is the terminal weather dashboard: it routes backend
// responses to a presenter, renders suggestions and runs the command loop.
package dashboard

import (
	"context"
	"encoding/json"

	"github.com/alexivanou/weather-dashboard/internal/client"
	"github.com/alexivanou/weather-dashboard/internal/model"
	"go.uber.org/zap"
)

// Kind tells the presenter what a payload holds
type Kind string

const (
	KindWeather  Kind = "weather"
	KindForecast Kind = "forecast"
)

// Presenter displays the outcome of backend calls
type Presenter interface {
	ShowLoading()
	HideLoading()
	ShowData(kind Kind, data json.RawMessage)
	ShowAlert(message string)
	ClearData()
}

// Backend is the subset of the backend API the orchestrator drives
type Backend interface {
	Weather(ctx context.Context, city, country, unit string) (*client.Result, error)
	WeatherByCoords(ctx context.Context, lat, lon float64, unit string) (*client.Result, error)
	Forecast(ctx context.Context, city, country, unit string) (*client.Result, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Place, error)
}

// Orchestrator wraps every backend call in the loading indicator and
// routes its outcome to the presenter
type Orchestrator struct {
	backend   Backend
	presenter Presenter
	messages  Messages
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator that alerts in the given language
func NewOrchestrator(backend Backend, presenter Presenter, lang string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		backend:   backend,
		presenter: presenter,
		messages:  MessagesFor(lang),
		logger:    logger,
	}
}

// Messages returns the alert texts in use
func (o *Orchestrator) Messages() Messages {
	return o.messages
}

// Run performs call and reports whether data was shown. A transport failure
// shows the generic fetch alert; an error reported by the backend is shown
// as is. Both clear the displayed data.
func (o *Orchestrator) Run(ctx context.Context, kind Kind, call func(context.Context) (*client.Result, error)) bool {
	o.presenter.ShowLoading()
	res, err := call(ctx)
	o.presenter.HideLoading()

	switch {
	case err != nil:
		o.logger.Warn("Weather request failed", zap.String("kind", string(kind)), zap.Error(err))
		o.presenter.ClearData()
		o.presenter.ShowAlert(o.messages.FetchFailed)
		return false
	case res.Error != "":
		o.presenter.ClearData()
		o.presenter.ShowAlert(res.Error)
		return false
	}

	o.presenter.ShowData(kind, res.Data)
	return true
}

// FetchWeather shows current weather for a city
func (o *Orchestrator) FetchWeather(ctx context.Context, city, country, unit string) bool {
	return o.Run(ctx, KindWeather, func(ctx context.Context) (*client.Result, error) {
		return o.backend.Weather(ctx, city, country, unit)
	})
}

// FetchWeatherByCoords shows current weather for a coordinate pair
func (o *Orchestrator) FetchWeatherByCoords(ctx context.Context, lat, lon float64, unit string) bool {
	return o.Run(ctx, KindWeather, func(ctx context.Context) (*client.Result, error) {
		return o.backend.WeatherByCoords(ctx, lat, lon, unit)
	})
}

// FetchForecast shows the forecast for a city
func (o *Orchestrator) FetchForecast(ctx context.Context, city, country, unit string) bool {
	return o.Run(ctx, KindForecast, func(ctx context.Context) (*client.Result, error) {
		return o.backend.Forecast(ctx, city, country, unit)
	})
}

// ReverseGeocode names the place at the coordinates and then shows its
// weather. Failures are logged only: no alert is raised and nil is returned.
func (o *Orchestrator) ReverseGeocode(ctx context.Context, lat, lon float64, unit string) *model.Place {
	o.presenter.ShowLoading()
	place, err := o.backend.ReverseGeocode(ctx, lat, lon)
	o.presenter.HideLoading()
	if err != nil {
		o.logger.Warn("Reverse geocoding failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return nil
	}

	o.logger.Debug("Reverse geocoded location", zap.String("city", place.City), zap.String("country", place.Country))
	o.FetchWeatherByCoords(ctx, lat, lon, unit)
	return place
}
