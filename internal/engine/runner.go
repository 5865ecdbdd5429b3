/*
PURPOSE:
  High-level runner that orchestrates an agenda.
  Loops through Workloads -> Iterations and executes one lifecycle run each.

REQUIREMENTS:
  User-specified:
  - Run every agenda entry the requested number of times, one at a time.
  - Log results to CSV/JSON.

  Implementation-discovered:
  - Needs to report progress to CLI.
  - Results must never carry credentials; secret-looking params are masked
    and the automation reports failures without echoing its command line.
  - Each run gets its own output sub-directory so pulled logs of different
    iterations do not overwrite each other.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/workload, internal/workloads, internal/device,
    internal/uiauto, internal/output

ERROR HANDLING:
  - Logs failed runs, records them as failed results and continues (resilience).
  - Returns an error summarising the failures once the agenda is done.
  - Stops early only when the context is cancelled.

IMPLEMENTATION RULES:
  - Iterate agenda entries in order.
  - For each entry: resolve the descriptor once, then run each iteration.
  - Never run two workloads at the same time; the device is shared.

USAGE:
  err := engine.Run(ctx, cfg)

SELF-HEALING INSTRUCTIONS:
  - If results are missing from the CSV, check Suite.record.

RELATED FILES:
  - internal/workload/runner.go - single run lifecycle
  - internal/output/csv.go, internal/output/json.go

MAINTENANCE:
  - Update iteration logic if inter-run scheduling is introduced.
*/

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/daryltucker/uxperf/internal/config"
	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/model"
	"github.com/daryltucker/uxperf/internal/output"
	"github.com/daryltucker/uxperf/internal/uiauto"
	"github.com/daryltucker/uxperf/internal/workload"
	"github.com/daryltucker/uxperf/internal/workloads"
)

const (
	CSVFile  = "results.csv"
	JSONFile = "results.json"
)

// ResultWriter persists run results.
type ResultWriter interface {
	Write(r model.Result) error
}

// Suite runs an agenda against one device.
type Suite struct {
	Config    *config.Config
	Device    device.Device
	Automator workload.Automator
	// Lookup resolves workload names. Defaults to workloads.Get.
	Lookup func(name string) (*workload.Descriptor, error)
}

// Summary counts the runs of a suite.
type Summary struct {
	Runs    int
	Failed  int
	Metrics int
}

// New returns a Suite driving the device described by cfg over adb.
func New(cfg *config.Config) *Suite {
	dev := device.NewADB(device.ADBConfig{
		Serial:                   cfg.Device.Serial,
		ADBPath:                  cfg.Device.ADBPath,
		WorkingDirectory:         cfg.Device.WorkingDirectory,
		ExternalStorageDirectory: cfg.Device.ExternalStorageDirectory,
	})
	return &Suite{
		Config:    cfg,
		Device:    dev,
		Automator: &uiauto.Instrumentation{Device: dev},
	}
}

// Run executes the full agenda over adb.
func Run(ctx context.Context, cfg *config.Config) error {
	_, err := New(cfg).Run(ctx)
	return err
}

// Run executes the agenda, writing results.csv and results.json to the
// configured output directory.
func (s *Suite) Run(ctx context.Context) (Summary, error) {
	cfg := s.Config

	// Ensure output directory exists
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	// Setup Outputs
	csvPath := filepath.Join(cfg.OutputDir, CSVFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonPath := filepath.Join(cfg.OutputDir, JSONFile)
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
	}
	defer jsonWriter.Close()

	return s.RunTo(ctx, csvWriter, jsonWriter)
}

// RunTo executes the agenda and hands every result to writers.
func (s *Suite) RunTo(ctx context.Context, writers ...ResultWriter) (Summary, error) {
	cfg := s.Config
	lookup := s.Lookup
	if lookup == nil {
		lookup = workloads.Get
	}
	runner := &workload.Runner{
		Device:          s.Device,
		Automator:       s.Automator,
		DependenciesDir: cfg.DependenciesDir,
		SettleDelay:     cfg.SettleDelay,
	}

	var sum Summary
	for _, spec := range cfg.Workloads {
		d, err := lookup(spec.Name)
		if err != nil {
			return sum, err
		}
		for i := 1; i <= spec.Iterations; i++ {
			if err := ctx.Err(); err != nil {
				return sum, fmt.Errorf("agenda interrupted before %s iteration %d: %w", spec.Name, i, err)
			}
			output.Logger.Info("Running workload", "workload", d.Name, "iteration", i, "of", spec.Iterations)

			res := s.runOnce(ctx, runner, d, spec, i)
			sum.Runs++
			sum.Metrics += len(res.Metrics)
			if res.Status == model.StatusFailed {
				sum.Failed++
			} else {
				output.Logger.Info("Workload succeeded", "workload", d.Name, "iteration", i,
					"metrics", len(res.Metrics), "duration", res.Duration)
			}
			s.record(res, writers)
		}
	}

	output.Logger.Info("Agenda complete", "runs", sum.Runs, "failed", sum.Failed, "metrics", sum.Metrics)
	if sum.Failed > 0 {
		return sum, fmt.Errorf("%d of %d runs failed", sum.Failed, sum.Runs)
	}
	return sum, nil
}

func (s *Suite) runOnce(ctx context.Context, runner *workload.Runner, d *workload.Descriptor, spec config.WorkloadSpec, iteration int) model.Result {
	res := model.Result{
		Workload:  d.Name,
		Package:   d.Package,
		Device:    s.Device.Name(),
		Iteration: iteration,
		Params:    Redact(spec.Params),
		Timestamp: time.Now(),
	}
	outDir := filepath.Join(s.Config.OutputDir, fmt.Sprintf("%s_%d", d.Name, iteration))

	rc, err := runner.Execute(ctx, d, spec.Params, outDir, &res)
	res.Duration = time.Since(res.Timestamp)
	res.RunID = rc.ID
	if err != nil {
		res.Status = model.StatusFailed
		res.State = rc.FailedIn.String()
		res.ErrorKind = failure.KindOf(err).String()
		res.Error = err.Error()
		return res
	}
	res.Status = model.StatusOK
	res.State = rc.State.String()
	return res
}

func (s *Suite) record(res model.Result, writers []ResultWriter) {
	for _, w := range writers {
		if err := w.Write(res); err != nil {
			output.Logger.Error("Failed to write result", "workload", res.Workload, "iteration", res.Iteration, "error", err)
		}
	}
}

// Redact returns a copy of params with secret-looking values masked.
func Redact(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return nil
	}
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
		if workload.IsSecret(k) {
			out[k] = "***"
		}
	}
	return out
}
