// Package harness replays scripted dashboard interactions and checks them.
//
// A scenario names its data tables, optional settings overrides, and a
// list of steps. Each step is one control change; its expect clause checks
// the outcome case and the shape of the returned figure. After all steps
// run, assertions check the interaction log the dispatcher recorded.
//
// Every scenario runs against freshly loaded tables, a private in-memory
// trace store, a deterministic clock and sequential flow tokens, so two
// runs of the same scenario produce identical results. RunWithGolden
// compares those results against a golden file.
//
// Example scenario:
//
//	name: regression-germany
//	description: Germany forecast extends ten years past the data
//	data:
//	  co2: ../data/co2.csv
//	  ch4: ../data/ch4.csv
//	steps:
//	  - control: dropdown_regression
//	    value: Germany
//	    expect:
//	      case: Success
//	      points:
//	        Actual: 22
//	        Predicted: 10
//	assertions:
//	  - type: trace_count
//	    case: Success
//	    count: 1
package harness
