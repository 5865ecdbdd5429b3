/*
PURPOSE:
  Launches the on-device UI automation for a workload and waits for it.
  The automation script itself (taps, swipes, text entry) lives in a jar on
  the device and is opaque to uxperf.

REQUIREMENTS:
  User-specified:
  - Accept a flat string-keyed parameter map and a timeout.
  - Report automation failure as AutomationFailure.

  Implementation-discovered:
  - uiautomator exits 0 even when the test fails; failure is only visible in
    its output, so the output is inspected.
  - Values can contain spaces and must be quoted for the device shell.

ARCHITECTURE INTEGRATION:
  - Implements: workload.Automator
  - Uses: internal/device (Execute)

ERROR HANDLING:
  - Device errors keep their kind (failure.DeviceIO) but are re-worded so the
    command line, and with it any password, never reaches logs or results.
  - Timeouts and cancellation stay detectable with errors.Is.
  - Failure markers in the output become failure.Automation.

IMPLEMENTATION RULES:
  - Parameters are emitted in key order so commands are reproducible.

USAGE:
  auto := &uiauto.Instrumentation{Device: dev}
  err := auto.Run(ctx, inv)

SELF-HEALING INSTRUCTIONS:
  - If the jar naming changes, update JarName.

RELATED FILES:
  - internal/workload/descriptor.go

MAINTENANCE:
  - Add new failure markers to failureMarkers.
*/

package uiauto

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/output"
	"github.com/daryltucker/uxperf/internal/workload"
)

const (
	jarPrefix = "com.arm.wlauto.uiauto."
	testClass = "com.arm.wlauto.uiauto.UiAutomation#runUiAutomation"
)

var (
	failureMarkers = []string{"FAILURES!!!", "INSTRUMENTATION_FAILED", "Process crashed"}
	// statusCode matches a negative instrumentation status code.
	statusCode = regexp.MustCompile(`INSTRUMENTATION_STATUS_CODE:\s*-\d+`)
)

// Instrumentation runs workload automation jars with uiautomator.
type Instrumentation struct {
	Device device.Device
	// JarDir is where the jars were installed. Defaults to the device working directory.
	JarDir string
}

var _ workload.Automator = (*Instrumentation)(nil)

// JarName returns the automation jar for a workload.
func JarName(workloadName string) string {
	return jarPrefix + workloadName + ".jar"
}

// Command returns the device shell command for inv.
func (in *Instrumentation) Command(inv workload.Invocation) string {
	dir := in.JarDir
	if dir == "" {
		dir = in.Device.WorkingDirectory()
	}
	params := map[string]string{"workdir": in.Device.WorkingDirectory()}
	for k, v := range inv.Params {
		params[k] = v
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("uiautomator runtest ")
	b.WriteString(device.Quote(device.Join(dir, JarName(inv.Workload))))
	for _, k := range keys {
		b.WriteString(" -e ")
		b.WriteString(k)
		b.WriteString(" ")
		b.WriteString(device.Quote(params[k]))
	}
	b.WriteString(" -c ")
	b.WriteString(testClass)
	return b.String()
}

// Run executes the automation and waits for it to finish or time out.
// Errors never include the command line, which carries credentials; any
// credential value echoed in the device output is masked.
func (in *Instrumentation) Run(ctx context.Context, inv workload.Invocation) error {
	cmd := in.Command(inv)
	output.Logger.Debug("Running UI automation", "workload", inv.Workload, "timeout", inv.Timeout)
	out, err := in.Device.Execute(ctx, cmd, inv.Timeout)
	out = Scrub(inv.Params, out)
	if err != nil {
		return runError(inv, out, err)
	}
	return CheckOutput(inv.Workload, out)
}

func runError(inv workload.Invocation, out string, err error) error {
	kind := failure.KindOf(err)
	if kind == failure.KindUnknown {
		kind = failure.DeviceIO
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return failure.Wrapf(kind, context.DeadlineExceeded, "UI automation for %s did not finish within %v", inv.Workload, inv.Timeout)
	case errors.Is(err, context.Canceled):
		return failure.Wrapf(kind, context.Canceled, "UI automation for %s interrupted", inv.Workload)
	case out == "":
		return failure.Newf(kind, "UI automation for %s could not be started", inv.Workload)
	}
	return failure.Newf(kind, "UI automation for %s could not be started: %s", inv.Workload, out)
}

// Scrub masks the values of credential parameters wherever they appear in s.
func Scrub(params map[string]string, s string) string {
	for k, v := range params {
		if v != "" && workload.IsSecret(k) {
			s = strings.ReplaceAll(s, v, "***")
		}
	}
	return s
}

// CheckOutput returns an Automation failure if out reports a failed run.
func CheckOutput(workloadName, out string) error {
	for _, m := range failureMarkers {
		if strings.Contains(out, m) {
			return failure.Newf(failure.Automation, "UI automation for %s failed (%s):\n%s", workloadName, m, out)
		}
	}
	if loc := statusCode.FindString(out); loc != "" {
		return failure.Newf(failure.Automation, "UI automation for %s failed (%s):\n%s", workloadName, loc, out)
	}
	return nil
}
