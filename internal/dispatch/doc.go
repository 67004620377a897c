// Package dispatch runs the handler bound to a control for one interaction.
//
// Each call to Dispatch is an interaction: it gets a fresh flow token and a
// seq from the logical clock, runs the bound handler against the current
// selection, and classifies the outcome into a Case. Failures never escape
// the call; they come back as a Result the panel can show in place of its
// chart.
//
// When a Recorder is attached, an invocation is written before the handler
// runs and a completion after it. Recorder failures are logged and
// otherwise ignored.
package dispatch
