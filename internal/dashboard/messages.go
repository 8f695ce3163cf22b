package dashboard

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Messages holds the user-facing texts of the dashboard
type Messages struct {
	Tag            language.Tag
	FetchFailed    string
	EnterCity      string
	InvalidCoords  string
	Favorites      string
	NoFavorites    string
	FavoriteAdded  string // %s is the display name
	FavoriteExists string // %s is the display name
	NoResults      string // %q is the query
	Population     string
	History        string
	Unknown        string
}

var english = Messages{
	Tag:            language.English,
	FetchFailed:    "There was an error fetching the weather data. Please try again later.",
	EnterCity:      "Please enter a city name.",
	InvalidCoords:  "Please enter valid coordinates.",
	Favorites:      "Favorites",
	NoFavorites:    "No favorites added yet",
	FavoriteAdded:  "%s added to favorites!",
	FavoriteExists: "%s is already in your favorites.",
	NoResults:      "No cities found for %q",
	Population:     "Population",
	History:        "Recent searches",
	Unknown:        "Unknown command. Type 'help' for a list of commands.",
}

var norwegian = Messages{
	Tag:            language.Norwegian,
	FetchFailed:    "Det oppstod en feil ved henting av værdata. Vennligst prøv igjen senere.",
	EnterCity:      "Vennligst skriv inn et bynavn.",
	InvalidCoords:  "Vennligst oppgi gyldige koordinater.",
	Favorites:      "Favoritter",
	NoFavorites:    "Ingen favoritter lagt til ennå",
	FavoriteAdded:  "%s lagt til i favoritter!",
	FavoriteExists: "%s er allerede i dine favoritter.",
	NoResults:      "Ingen byer funnet for %q",
	Population:     "Befolkning",
	History:        "Nylige søk",
	Unknown:        "Ukjent kommando. Skriv 'help' for en liste over kommandoer.",
}

// MessagesFor returns the texts for lang ("no" or "en"), Norwegian by default
func MessagesFor(lang string) Messages {
	if strings.EqualFold(strings.TrimSpace(lang), "en") {
		return english
	}
	return norwegian
}

// FormatPopulation groups digits the way the language does
func (m Messages) FormatPopulation(n int) string {
	return message.NewPrinter(m.Tag).Sprintf("%d", n)
}
