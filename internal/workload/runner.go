/*
PURPOSE:
  Lifecycle runner that takes one workload descriptor through a complete run:
  validate -> initialize -> setup -> run -> collect results -> teardown -> finalize.

REQUIREMENTS:
  User-specified:
  - Sequential state machine; any error moves the run to Failed and aborts
    the remaining transitions.
  - No retries; partial cleanup stays performed.
  - With dumpsys disabled, results collection is skipped entirely.

  Implementation-discovered:
  - Per-run state lives in a RunContext passed to every transition; the runner
    itself only holds the injected collaborators.
  - Input files live under <dependencies dir>/<workload name> on the host.
  - With dumpsys enabled, frame statistics of the package and its views are
    reset at the end of setup.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Uses: internal/deps, internal/device, internal/metrics, internal/output

ERROR HANDLING:
  - Errors keep their failure kind; the RunContext records the first one.

IMPLEMENTATION RULES:
  - Never enforce timeouts here; pass them to the device/automation.
  - Validate must not touch the device.

USAGE:
  r := &workload.Runner{Device: dev, Automator: auto, DependenciesDir: "deps"}
  rc, err := r.Execute(ctx, desc, overrides, outDir, result)

SELF-HEALING INSTRUCTIONS:
  - If a workload needs a new hook, add it to Descriptor and call it from
    exactly one transition here.

RELATED FILES:
  - internal/workload/descriptor.go
  - internal/workload/context.go

MAINTENANCE:
  - Keep the transition order in sync with State.
*/

package workload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/daryltucker/uxperf/internal/deps"
	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/metrics"
	"github.com/daryltucker/uxperf/internal/output"
)

const (
	setupCommandTimeout = 60 * time.Second
	rescanTimeout       = 30 * time.Second
)

// Runner executes workload runs against one device.
type Runner struct {
	Device    device.Device
	Automator Automator
	// DependenciesDir holds one sub-directory of input files per workload.
	DependenciesDir string
	// SettleDelay is waited after setup commands that launch the application.
	SettleDelay time.Duration
}

type transition struct {
	to State
	fn func(ctx context.Context, rc *RunContext) error
}

// Execute performs one complete run of d. It returns the run's context in its
// final state together with the error that failed it, if any.
func (r *Runner) Execute(ctx context.Context, d *Descriptor, overrides map[string]interface{}, outDir string, sink Sink) (*RunContext, error) {
	rc := NewRunContext(d, r.Device, outDir, sink)
	rc.Overrides = overrides
	log := output.Logger.With("workload", d.Name, "run_id", rc.ID)
	log.Info("Starting workload", "device", r.Device.Name(), "output_dir", outDir)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		rc.fail(fmt.Errorf("failed to create output directory %s: %w", outDir, err))
		return rc, rc.Err
	}

	for _, t := range []transition{
		{Validated, r.validate},
		{Initialized, r.initialize},
		{SetUp, r.setup},
		{Running, r.run},
		{ResultsCollected, r.collect},
		{TornDown, r.teardown},
		{Finalized, r.finalize},
	} {
		log.Debug("Entering state", "from", rc.State, "to", t.to)
		if err := t.fn(ctx, rc); err != nil {
			from := rc.State
			rc.fail(err)
			log.Error("Workload failed", "state", from, "kind", failure.KindOf(err), "error", err)
			return rc, err
		}
		rc.State = t.to
	}

	log.Info("Workload complete", "metrics", len(rc.Records), "duration", time.Since(rc.Started))
	return rc, nil
}

func (r *Runner) validate(ctx context.Context, rc *RunContext) error {
	d := rc.Descriptor
	bag, err := NewBag(d.Name, d.Parameters, rc.Overrides)
	if err != nil {
		return err
	}
	if d.Validate != nil {
		if err := d.Validate(bag); err != nil {
			if failure.KindOf(err) == failure.KindUnknown {
				err = failure.Wrap(failure.Configuration, err, "invalid parameters for "+d.Name)
			}
			return err
		}
	}
	rc.Bag = bag

	wd := rc.Device.WorkingDirectory()
	rc.Paths = Paths{
		WorkingDir:      wd,
		ExternalStorage: rc.Device.ExternalStorageDirectory(),
		LogFile:         device.Join(wd, d.LogName()),
		LocalDeps:       filepath.Join(r.DependenciesDir, d.Name),
	}
	rc.AutomationParams = automationParams(d, bag, rc.Paths)
	return nil
}

// automationParams projects the bag and computed paths onto the flat string
// map the UI automation reads.
func automationParams(d *Descriptor, b Bag, p Paths) map[string]string {
	resultsKey := d.ResultsFileParam
	if resultsKey == "" {
		resultsKey = "output_file"
	}
	params := map[string]string{
		"package":         d.Package,
		"output_dir":      p.WorkingDir,
		resultsKey:        p.LogFile,
		"dumpsys_enabled": strconv.FormatBool(b.Bool(DumpsysEnabled.Name)),
	}
	if d.AutomationParams != nil {
		for k, v := range d.AutomationParams(b, p) {
			params[k] = v
		}
	}
	return params
}

func (r *Runner) initialize(ctx context.Context, rc *RunContext) error {
	d := rc.Descriptor
	if d.RequiresNetwork {
		ok, err := rc.Device.IsNetworkConnected(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return failure.Newf(failure.Device, "network is not connected for device %s", rc.Device.Name())
		}
	}
	if d.DeviceDirs != nil {
		for _, dir := range d.DeviceDirs(rc.Paths) {
			if _, err := rc.Device.Execute(ctx, "mkdir -p "+device.Quote(dir), setupCommandTimeout); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) setup(ctx context.Context, rc *RunContext) error {
	d := rc.Descriptor
	if d.Dependencies != nil {
		res := &deps.Resolver{Device: rc.Device, LocalDir: rc.Paths.LocalDeps}
		if err := res.Push(ctx, d.Dependencies(rc.Bag, rc.Paths)...); err != nil {
			return err
		}
	}
	if d.SetupCommands != nil {
		if cmds := d.SetupCommands(rc.Bag); len(cmds) > 0 {
			for _, c := range cmds {
				if _, err := rc.Device.Execute(ctx, c, setupCommandTimeout); err != nil {
					return err
				}
			}
			delay := d.SettleDelay
			if delay == 0 {
				delay = r.SettleDelay
			}
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}
	}
	if err := r.rescan(ctx, rc); err != nil {
		return err
	}
	return r.resetFrameStats(ctx, rc)
}

// resetFrameStats clears the package's gfxinfo counters and the frame
// latency of its views so dumpsys captures only cover the automation.
func (r *Runner) resetFrameStats(ctx context.Context, rc *RunContext) error {
	if !rc.Bag.Bool(DumpsysEnabled.Name) {
		return nil
	}
	d := rc.Descriptor
	cmds := []string{"dumpsys gfxinfo " + device.Quote(d.Package) + " reset"}
	for _, v := range d.Views {
		cmds = append(cmds, "dumpsys SurfaceFlinger --latency-clear "+device.Quote(v))
	}
	for _, c := range cmds {
		if _, err := rc.Device.Execute(ctx, c, setupCommandTimeout); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) run(ctx context.Context, rc *RunContext) error {
	d := rc.Descriptor
	timeout := DefaultRunTimeout
	if d.RunTimeout != nil {
		timeout = d.RunTimeout(rc.Bag)
	}
	err := r.Automator.Run(ctx, Invocation{
		Workload: d.Name,
		Package:  d.Package,
		Params:   rc.AutomationParams,
		Timeout:  timeout,
	})
	if err != nil && failure.KindOf(err) == failure.KindUnknown {
		err = failure.Wrap(failure.Automation, err, "UI automation failed for "+d.Name)
	}
	return err
}

func (r *Runner) collect(ctx context.Context, rc *RunContext) error {
	if !rc.Bag.Bool(DumpsysEnabled.Name) {
		output.Logger.Debug("Dumpsys disabled, skipping results", "workload", rc.Descriptor.Name)
		return nil
	}
	local := filepath.Join(rc.OutputDir, rc.Descriptor.LogName())
	if err := rc.Device.Pull(ctx, rc.Paths.LogFile, local); err != nil {
		return err
	}
	recs, err := metrics.ParseFile(local)
	if err != nil {
		return failure.Wrapf(failure.DeviceIO, err, "failed to read pulled instrumentation log %s", local)
	}
	for _, rec := range recs {
		rc.addRecord(rec)
	}
	return nil
}

func (r *Runner) teardown(ctx context.Context, rc *RunContext) error {
	if err := r.cleanup(ctx, rc, rc.Descriptor.Teardown); err != nil {
		return err
	}
	return r.rescan(ctx, rc)
}

func (r *Runner) finalize(ctx context.Context, rc *RunContext) error {
	if rc.Descriptor.Finalize == nil {
		return nil
	}
	if err := r.cleanup(ctx, rc, rc.Descriptor.Finalize); err != nil {
		return err
	}
	return r.rescan(ctx, rc)
}

func (r *Runner) cleanup(ctx context.Context, rc *RunContext, rules func(Bag, Paths) []deps.CleanupRule) error {
	if rules == nil {
		return nil
	}
	res := &deps.Resolver{Device: rc.Device, LocalDir: rc.Paths.LocalDeps}
	for _, rule := range rules(rc.Bag, rc.Paths) {
		removed, err := res.Cleanup(ctx, rule, rc.OutputDir)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			output.Logger.Debug("Removed device files", "dir", rule.Dir, "files", removed)
		}
	}
	return nil
}

func (r *Runner) rescan(ctx context.Context, rc *RunContext) error {
	if !rc.Descriptor.MediaRescan {
		return nil
	}
	_, err := rc.Device.Execute(ctx, device.MediaRescanCommand, rescanTimeout)
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
