package dispatch

import (
	"errors"

	"github.com/roach88/ghgdash/internal/dashboard"
	"github.com/roach88/ghgdash/internal/forecast"
	"github.com/roach88/ghgdash/internal/table"
)

// ErrUnknownControl is returned for a control id with no binding.
var ErrUnknownControl = errors.New("unknown control")

// Case is the outcome category of one interaction.
type Case string

const (
	// CaseSuccess: the handler produced a figure.
	CaseSuccess Case = "Success"

	// CaseUnknownSelection: a selected country is not a table column.
	CaseUnknownSelection Case = "UnknownSelection"

	// CaseInsufficientHistory: the country has fewer than two observed
	// points to fit a line to.
	CaseInsufficientHistory Case = "InsufficientHistory"

	// CaseInvalidSelection: a single-value control got zero or several
	// countries.
	CaseInvalidSelection Case = "InvalidSelection"

	// CaseUnknownControl: no binding for the control id.
	CaseUnknownControl Case = "UnknownControl"

	// CaseError: anything else.
	CaseError Case = "Error"
)

// Classify maps a handler error to its case. A nil error is CaseSuccess.
func Classify(err error) Case {
	switch {
	case err == nil:
		return CaseSuccess
	case errors.Is(err, table.ErrUnknownCountry):
		return CaseUnknownSelection
	case errors.Is(err, forecast.ErrInsufficientData):
		return CaseInsufficientHistory
	case errors.Is(err, dashboard.ErrSingleSelection):
		return CaseInvalidSelection
	case errors.Is(err, ErrUnknownControl):
		return CaseUnknownControl
	default:
		return CaseError
	}
}

// Messages for successful interactions that have nothing to draw.
const (
	MessageNoSelection = "No countries selected."
	MessageNoData      = "No data for the selected countries."
)

// Message is the text a panel shows for a failed case.
func (c Case) Message() string {
	switch c {
	case CaseUnknownSelection:
		return "The selected country is not in the data."
	case CaseInsufficientHistory:
		return "Not enough data to forecast this country."
	case CaseInvalidSelection:
		return "Select exactly one country."
	case CaseUnknownControl:
		return "This control is not connected to a chart."
	case CaseError:
		return "The chart could not be drawn."
	default:
		return ""
	}
}
