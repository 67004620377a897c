package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/roach88/ghgdash/internal/table"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"selected": func(sel Selection, option string) bool { return sel.Contains(option) },
}).ParseFS(templateFS, "templates/page.html"))

// SourceURL is the emissions dataset the tables are prepared from.
const SourceURL = "https://edgar.jrc.ec.europa.eu/dataset_ghg70"

// Control is a selection control as rendered on the page.
type Control struct {
	ID      string
	Options []string
	Value   Selection
	Multi   bool
}

// Panel is one heading, control and chart.
//
// Initial is the chart for the default selection, drawn into the page so
// it shows before the first callback. State replaces it when the default
// selection has nothing to draw. Panels with neither load on the client.
type Panel struct {
	Heading string
	Prompt  string
	Control Control
	GraphID string
	Initial template.HTML
	State   string
}

// Layout is the static page description.
type Layout struct {
	Heading   string
	Intro     string
	SourceURL string
	Features  []string
	Panels    []Panel
}

// Panel returns the panel whose control has the given id.
func (l Layout) Panel(controlID string) (Panel, bool) {
	for _, p := range l.Panels {
		if p.Control.ID == controlID {
			return p, true
		}
	}
	return Panel{}, false
}

// BuildLayout assembles the page with the configured default selections.
// Defaults missing from a table are dropped and logged.
func BuildLayout(app *App) Layout {
	co2, ch4 := app.CO2(), app.CH4()

	return Layout{
		Heading: "CO2 and CH4 Emissions Dashboard",
		Intro: fmt.Sprintf("This is a project to visualize the co2 emissions from around the world. "+
			"The data is from EDGAR. The data is from %d-%d.", co2.FirstYear(), co2.LastYear()),
		SourceURL: SourceURL,
		Features: []string{
			"Overview over all countries with both co2 and ch4 emissions",
			"Histogram of the emissions",
			"Regression of the emissions",
			"Correlation of the emissions",
			"Deep Learning Model to predict the emissions",
		},
		Panels: []Panel{
			{
				Heading: "Co2 Emissions over the years for each country",
				Prompt:  "Select the countries you want to see",
				Control: Control{
					ID:      ControlOverviewCO2,
					Options: co2.Countries(),
					Value:   app.presentDefaults(co2, app.Settings.OverviewDefaults),
					Multi:   true,
				},
				GraphID: GraphOverviewCO2,
			},
			{
				Heading: "Ch4 Emissions over the years for each country",
				Prompt:  "Select the countries you want to see",
				Control: Control{
					ID:      ControlOverviewCH4,
					Options: ch4.Countries(),
					Value:   app.presentDefaults(ch4, app.Settings.OverviewDefaults),
					Multi:   true,
				},
				GraphID: GraphOverviewCH4,
			},
			{
				Heading: "Linear Regression",
				Prompt:  "Select the country you want to forecast",
				Control: Control{
					ID:      ControlRegression,
					Options: co2.Countries(),
					Value:   app.regressionDefault(co2),
					Multi:   false,
				},
				GraphID: GraphRegression,
			},
		},
	}
}

func (a *App) presentDefaults(tbl *table.Table, defaults []string) Selection {
	sel := Selection{}
	for _, c := range Selection(defaults).Countries() {
		if !tbl.Has(c) {
			a.Logger.Warn("default country not in table", "table", tbl.Name(), "country", c)
			continue
		}
		sel = append(sel, c)
	}
	return sel
}

func (a *App) regressionDefault(tbl *table.Table) Selection {
	if c := a.Settings.RegressionDefault; tbl.Has(c) {
		return Single(c)
	}
	countries := tbl.Countries()
	if len(countries) == 0 {
		return Selection{}
	}
	a.Logger.Warn("regression default not in table, using first country",
		"country", a.Settings.RegressionDefault, "fallback", countries[0])
	return Single(countries[0])
}

// RenderHTML writes the dashboard page.
func RenderHTML(w io.Writer, l Layout) error {
	return pageTemplate.Execute(w, l)
}
