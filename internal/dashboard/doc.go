// Package dashboard holds the emissions dashboard itself: the application
// context, the static page layout and the three panel handlers.
//
// # Panels
//
// The page has three independent panels. Each pairs one selection control
// with one chart:
//
//	dropdown_overview_co2 -> graph_overview_co2   CO2 per country (multi)
//	dropdown_overview_ch4 -> graph_overview_ch4   CH4 per country (multi)
//	dropdown_regression   -> graph_regression     CO2 trend forecast (single)
//
// # Handlers
//
// A Handler is a pure function of the App and the control's current
// Selection. Handlers never mutate the App and keep no state between calls,
// so the same App serves every request concurrently. The Registry maps a
// control id to its Binding; package dispatch runs bindings per interaction.
//
// # Errors
//
// Handler errors stay local to their panel. Callers classify them with
// errors.Is against table.ErrUnknownCountry, forecast.ErrInsufficientData
// and ErrSingleSelection.
package dashboard
