/*
PURPOSE:
  Holds the state of a single workload run as it moves through the lifecycle,
  from Created to Finalized (or Failed).

REQUIREMENTS:
  User-specified:
  - Every run has a unique identity.
  - A failed run remembers the state it failed in.

  Implementation-discovered:
  - Parsed metric records are forwarded to the Sink as they are added so the
    caller's result carries them even if a later state fails.

ARCHITECTURE INTEGRATION:
  - Created by: Runner.Execute
  - Read by: internal/engine (ID, State, FailedIn)

ERROR HANDLING:
  - None; transitions record their error with fail.

IMPLEMENTATION RULES:
  - State only moves forward; Failed is terminal.

USAGE:
  rc := workload.NewRunContext(d, dev, "results/excel_1", sink)

SELF-HEALING INSTRUCTIONS:
  - If a new state is added, extend stateNames as well.

RELATED FILES:
  - internal/workload/runner.go

MAINTENANCE:
  - Keep stateNames in lifecycle order.
*/

package workload

import (
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/metrics"
)

// State is a lifecycle state of a run.
type State int

const (
	Created State = iota
	Validated
	Initialized
	SetUp
	Running
	ResultsCollected
	TornDown
	Finalized
	Failed
)

var stateNames = [...]string{
	Created:          "Created",
	Validated:        "Validated",
	Initialized:      "Initialized",
	SetUp:            "SetUp",
	Running:          "Running",
	ResultsCollected: "ResultsCollected",
	TornDown:         "TornDown",
	Finalized:        "Finalized",
	Failed:           "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// RunContext is the state of one run. It is created by Runner.Execute and
// passed to every transition.
type RunContext struct {
	ID         string
	Descriptor *Descriptor
	Device     device.Device
	Overrides  map[string]interface{}
	Bag        Bag
	Paths      Paths
	// AutomationParams is the map handed to the UI automation.
	AutomationParams map[string]string

	// OutputDir is the host directory receiving pulled logs.
	OutputDir string
	Records   []metrics.Record
	Sink      Sink

	State State
	// FailedIn is the last state reached before the failure.
	FailedIn State
	Err      error
	Started  time.Time
}

// NewRunContext returns a context in the Created state.
func NewRunContext(d *Descriptor, dev device.Device, outDir string, sink Sink) *RunContext {
	return &RunContext{
		ID:         uuid.NewString(),
		Descriptor: d,
		Device:     dev,
		OutputDir:  outDir,
		Sink:       sink,
		State:      Created,
		Started:    time.Now(),
	}
}

func (rc *RunContext) fail(err error) {
	rc.FailedIn = rc.State
	rc.State = Failed
	rc.Err = err
}

func (rc *RunContext) addRecord(r metrics.Record) {
	rc.Records = append(rc.Records, r)
	if rc.Sink != nil {
		rc.Sink.AddMetric(r.MetricName(), r.Value, r.Unit)
	}
}
