package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const forecastStep = 8 // 3 hour slots per day

type currentPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastPayload struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// TerminalPresenter writes dashboard output to a terminal
type TerminalPresenter struct {
	out      io.Writer
	messages Messages
	unit     string
	mu       sync.Mutex

	title  lipgloss.Style
	muted  lipgloss.Style
	alert  lipgloss.Style
	accent lipgloss.Style
}

// NewTerminalPresenter creates a presenter writing to out. Colors are used
// only when out is a terminal that supports them.
func NewTerminalPresenter(out io.Writer, messages Messages) *TerminalPresenter {
	r := lipgloss.NewRenderer(out)
	return &TerminalPresenter{
		out:      out,
		messages: messages,
		unit:     "metric",
		title:    r.NewStyle().Bold(true),
		muted:    r.NewStyle().Faint(true),
		alert:    r.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		accent:   r.NewStyle().Foreground(lipgloss.Color("75")),
	}
}

// SetUnit selects the temperature unit used for display
func (p *TerminalPresenter) SetUnit(unit string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unit = unit
}

// ShowLoading prints a muted progress marker
func (p *TerminalPresenter) ShowLoading() {
	p.println(p.muted.Render("..."))
}

// HideLoading is a no-op: the marker scrolls away with the next line
func (p *TerminalPresenter) HideLoading() {}

// ClearData is a no-op on a line-oriented terminal
func (p *TerminalPresenter) ClearData() {}

// ShowAlert prints message in the alert style
func (p *TerminalPresenter) ShowAlert(message string) {
	p.println(p.alert.Render("! " + message))
}

// ShowData formats a weather or forecast payload, falling back to the raw JSON
func (p *TerminalPresenter) ShowData(kind Kind, data json.RawMessage) {
	var (
		text string
		err  error
	)
	switch kind {
	case KindForecast:
		text, err = p.formatForecast(data)
	default:
		text, err = p.formatCurrent(data)
	}
	if err != nil {
		// Unknown shapes are shown raw
		text = string(data)
	}
	p.println(text)
}

// ShowSuggestions prints the dropdown
func (p *TerminalPresenter) ShowSuggestions(query string, items []SuggestionItem) {
	if len(items) == 0 {
		p.println(p.muted.Render(fmt.Sprintf(p.messages.NoResults, query)))
		return
	}

	var b strings.Builder
	for i, item := range items {
		marker := " "
		if item.Selected {
			marker = ">"
		}
		star := " "
		if item.Favorite {
			star = "*"
		}
		fmt.Fprintf(&b, "%s%s %2d. %s", marker, star, i+1, p.accent.Render(item.DisplayName))
		if pop := item.Suggestion.Population; pop > 0 {
			fmt.Fprintf(&b, "  %s", p.muted.Render(p.messages.Population+": "+p.messages.FormatPopulation(pop)))
		} else if item.Suggestion.Lat != nil && item.Suggestion.Lon != nil {
			fmt.Fprintf(&b, "  %s", p.muted.Render(fmt.Sprintf("%.2f, %.2f", *item.Suggestion.Lat, *item.Suggestion.Lon)))
		}
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	p.println(b.String())
}

// ShowList prints a titled, numbered list or the fallback when it is empty
func (p *TerminalPresenter) ShowList(title string, entries []string, empty string) {
	if len(entries) == 0 {
		p.println(p.muted.Render(empty))
		return
	}
	var b strings.Builder
	b.WriteString(p.title.Render(title))
	for i, e := range entries {
		fmt.Fprintf(&b, "\n %2d. %s", i+1, e)
	}
	p.println(b.String())
}

// ShowMessage prints an informational line
func (p *TerminalPresenter) ShowMessage(message string) {
	p.println(message)
}

func (p *TerminalPresenter) formatCurrent(data json.RawMessage) (string, error) {
	var w currentPayload
	if err := json.Unmarshal(data, &w); err != nil {
		return "", err
	}
	if w.Name == "" {
		return "", fmt.Errorf("payload has no name")
	}

	heading := w.Name
	if w.Sys.Country != "" {
		heading += ", " + w.Sys.Country
	}
	var desc string
	if len(w.Weather) > 0 {
		desc = w.Weather[0].Description
	}

	symbol := p.tempSymbol()
	lines := []string{
		p.title.Render(heading),
		fmt.Sprintf("  %.1f%s (%.1f%s)  %s", w.Main.Temp, symbol, w.Main.FeelsLike, symbol, desc),
		p.muted.Render(fmt.Sprintf("  %d%%  %.1f %s", w.Main.Humidity, w.Wind.Speed, p.speedUnit())),
	}
	return strings.Join(lines, "\n"), nil
}

func (p *TerminalPresenter) formatForecast(data json.RawMessage) (string, error) {
	var f forecastPayload
	if err := json.Unmarshal(data, &f); err != nil {
		return "", err
	}

	heading := f.City.Name
	if f.City.Country != "" {
		heading += ", " + f.City.Country
	}
	lines := []string{p.title.Render(heading)}
	symbol := p.tempSymbol()
	for i := 0; i < len(f.List); i += forecastStep {
		slot := f.List[i]
		var desc string
		if len(slot.Weather) > 0 {
			desc = slot.Weather[0].Description
		}
		lines = append(lines, fmt.Sprintf("  %s  %.1f%s  %s", p.muted.Render(slot.DtTxt), slot.Main.Temp, symbol, desc))
	}
	return strings.Join(lines, "\n"), nil
}

func (p *TerminalPresenter) tempSymbol() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.unit {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	}
	return "°C"
}

func (p *TerminalPresenter) speedUnit() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unit == "imperial" {
		return "mph"
	}
	return "m/s"
}

func (p *TerminalPresenter) println(s string) {
	fmt.Fprintln(p.out, s)
}
