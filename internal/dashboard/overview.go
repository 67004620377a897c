package dashboard

import (
	"context"

	"github.com/roach88/ghgdash/internal/figure"
	"github.com/roach88/ghgdash/internal/table"
)

// overviewPanel fixes the table and labels of one overview chart.
type overviewPanel struct {
	table  string
	title  string
	yTitle string
}

var (
	co2Overview = overviewPanel{
		table:  table.CO2,
		title:  "Co2 Emissions over the years for each country",
		yTitle: "Co2 Emissions",
	}
	ch4Overview = overviewPanel{
		table:  table.CH4,
		title:  "Ch4 Emissions over the years for each country",
		yTitle: "Ch4 Emissions",
	}
)

// CO2Overview draws one line per selected country from the CO2 table.
func CO2Overview(ctx context.Context, app *App, sel Selection) (*figure.Figure, error) {
	return overview(app, co2Overview, sel)
}

// CH4Overview draws one line per selected country from the CH4 table.
func CH4Overview(ctx context.Context, app *App, sel Selection) (*figure.Figure, error) {
	return overview(app, ch4Overview, sel)
}

func overview(app *App, p overviewPanel, sel Selection) (*figure.Figure, error) {
	tbl, err := app.Tables.Table(p.table)
	if err != nil {
		return nil, err
	}

	fig := figure.New(p.title, "Year", p.yTitle)
	fig.LegendTitle = "Country"

	years := figure.Years(tbl.Years())
	for _, country := range sel.Countries() {
		col, err := tbl.Column(country)
		if err != nil {
			return nil, err
		}
		fig.AddTrace(country, years, col)
	}
	return fig, nil
}
