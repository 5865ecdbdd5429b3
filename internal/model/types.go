/*
PURPOSE:
  Defines the result records written by uxperf.
  One Result per workload run (iteration), carrying its timing metrics.

REQUIREMENTS:
  User-specified:
  - Record every parsed metric with its unit.
  - Record whether the run failed, with the failure kind and message.

  Implementation-discovered:
  - Need JSON tags for the JSON-lines writer.
  - Result doubles as the metric sink handed to the runner.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time and time.Duration for high precision.

USAGE:
  res := &model.Result{Workload: "excel"}
  res.AddMetric("open_file_duration", 2500, "ms")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add them and update the CSV/JSON writers.

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update when adding new run attributes.
*/

package model

import (
	"time"
)

// Run status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metric is one named value reported by a run.
type Metric struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Unit  string `json:"unit"`
}

// Result represents the outcome of a single workload run.
type Result struct {
	RunID     string                 `json:"run_id"`
	Workload  string                 `json:"workload"`
	Package   string                 `json:"package"`
	Device    string                 `json:"device"`
	Iteration int                    `json:"iteration"`
	Params    map[string]interface{} `json:"params"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`

	Status    string `json:"status"`
	State     string `json:"state"`                // Last lifecycle state reached
	ErrorKind string `json:"error_kind,omitempty"` // e.g. DependencyNotFoundError
	Error     string `json:"error,omitempty"`      // If the run failed

	Metrics []Metric `json:"metrics"`
}

// AddMetric appends a metric to the result.
func (r *Result) AddMetric(name string, value int64, unit string) {
	r.Metrics = append(r.Metrics, Metric{Name: name, Value: value, Unit: unit})
}
