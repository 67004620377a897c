package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/dispatch"
	"github.com/roach88/ghgdash/internal/figure"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	SVG    string // write the chart here
	XLSX   string // write the chart data here
	Width  int
	Height int

	FlowGenerator dispatch.FlowTokenGenerator
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <control> [country...]",
		Short: "Draw one panel without starting the server",
		Long: `Run the handler bound to a control with the given countries.

This is the same path the update callback takes, so the outcome case
matches what the dashboard panel would show.

Controls:
  dropdown_overview_co2   CO2 per country (any number of countries)
  dropdown_overview_ch4   CH4 per country (any number of countries)
  dropdown_regression     CO2 forecast (exactly one country)

Examples:
  ghgdash render dropdown_overview_co2 Germany China
  ghgdash render dropdown_regression Germany --svg germany.svg
  ghgdash render dropdown_overview_ch4 "United States" --xlsx ch4.xlsx
  ghgdash render dropdown_regression Germany --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SVG, "svg", "", "write the chart as SVG to this file")
	cmd.Flags().StringVar(&opts.XLSX, "xlsx", "", "write the chart data as XLSX to this file")
	cmd.Flags().IntVar(&opts.Width, "width", figure.DefaultWidth, "SVG width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", figure.DefaultHeight, "SVG height in pixels")

	return cmd
}

func runRender(opts *RenderOptions, control string, countries []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	_, app, err := loadApp(opts.RootOptions, logger)
	if err != nil {
		return err
	}

	dispatchOpts := []dispatch.Option{}
	if opts.FlowGenerator != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithFlowGenerator(opts.FlowGenerator))
	}
	if opts.SVG != "" {
		dispatchOpts = append(dispatchOpts, dispatch.WithSVG(figure.RenderOptions{Width: opts.Width, Height: opts.Height}))
	}
	d := dispatch.New(app, dashboard.DefaultRegistry(), dispatchOpts...)

	res := d.Dispatch(context.Background(), control, dashboard.Selection(countries))
	if !res.OK() {
		_ = formatter.Error(ErrCodeInteraction, res.Error, map[string]string{
			"case":    string(res.Case),
			"control": control,
		})
		code := ExitFailure
		if res.Case == dispatch.CaseUnknownControl {
			code = ExitCommandError
		}
		return NewExitError(code, res.Error)
	}

	if opts.SVG != "" {
		if res.SVG == "" {
			return NewExitError(ExitFailure, "nothing to draw: no countries selected")
		}
		if err := os.WriteFile(opts.SVG, []byte(res.SVG), 0644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write svg", err)
		}
		formatter.VerboseLog("wrote %s", opts.SVG)
	}
	if opts.XLSX != "" {
		if err := figure.ExportXLSX(res.Figure, opts.XLSX); err != nil {
			return WrapExitError(ExitCommandError, "failed to write xlsx", err)
		}
		formatter.VerboseLog("wrote %s", opts.XLSX)
	}

	// the SVG went to a file; keep the JSON payload to the figure
	res.SVG = ""
	return formatter.Success(res, func(w io.Writer) {
		printFigure(w, res)
	})
}

func printFigure(w io.Writer, res dispatch.Result) {
	fig := res.Figure
	fmt.Fprintf(w, "%s (%s)\n", fig.Title, res.Graph)
	if len(fig.Traces) == 0 {
		fmt.Fprintln(w, "  (no countries selected)")
		return
	}
	for _, tr := range fig.Traces {
		if tr.Len() == 0 {
			fmt.Fprintf(w, "  %-20s 0 points\n", tr.Name)
			continue
		}
		fmt.Fprintf(w, "  %-20s %d points, %s %g-%g\n",
			tr.Name, tr.Len(), fig.XAxisTitle, tr.X[0], tr.X[tr.Len()-1])
	}
}
