/*
PURPOSE:
  Describes a workload as data: identity, parameters, device preparation and
  cleanup, expressed as optional hook fields the lifecycle runner calls.

REQUIREMENTS:
  User-specified:
  - Every workload names its package, launch activity and parameters.
  - Credentials never leave the run in clear text outside the automation.

  Implementation-discovered:
  - Hooks receive the validated Bag and computed Paths, never raw overrides.
  - Views double as SurfaceFlinger layer names for frame-statistics resets.

ARCHITECTURE INTEGRATION:
  - Used by: internal/workload/runner.go, internal/workloads, internal/uiauto
  - Implemented by: internal/uiauto (Automator)

ERROR HANDLING:
  - Hooks return failure.* errors; unclassified Validate errors become
    failure.Configuration in the runner.

IMPLEMENTATION RULES:
  - Nil hooks mean "nothing to do".
  - IsSecret is the single source for which parameter names are masked.

USAGE:
  d := &workload.Descriptor{Name: "demo", Package: "com.example.demo"}

SELF-HEALING INSTRUCTIONS:
  - If a password shows up in results, check the parameter name against
    secretMarkers.

RELATED FILES:
  - internal/workload/runner.go
  - internal/workloads/registry.go

MAINTENANCE:
  - New hooks need a call site in runner.go and a line in list-workloads if
    user visible.
*/

package workload

import (
	"context"
	"strings"
	"time"

	"github.com/daryltucker/uxperf/internal/deps"
)

// DefaultRunTimeout bounds the UI automation when a descriptor does not say otherwise.
const DefaultRunTimeout = 300 * time.Second

// Paths are the device and host locations computed for one run.
type Paths struct {
	// WorkingDir is the harness' working directory on the device.
	WorkingDir string
	// ExternalStorage is the device's shared storage root.
	ExternalStorage string
	// LogFile is the instrumentation log on the device.
	LogFile string
	// LocalDeps is the host directory holding this workload's input files.
	LocalDeps string
}

// Descriptor defines one benchmark. Descriptors are values; behaviour that
// differs between applications is expressed through the optional hook fields.
type Descriptor struct {
	Name    string
	Package string
	// Activity is the application's launch activity.
	Activity string
	// Views are the SurfaceFlinger layers whose frame statistics are reset
	// before the automation starts.
	Views []string

	Description string
	Parameters  []Parameter

	RequiresNetwork bool
	// MediaRescan re-indexes shared storage after setup, teardown and finalize.
	MediaRescan bool
	// ResultsFileParam is the automation parameter carrying LogFile.
	// Defaults to "output_file".
	ResultsFileParam string
	// RunTimeout overrides DefaultRunTimeout.
	RunTimeout func(b Bag) time.Duration

	// DeviceDirs are device directories created during initialize, e.g. the
	// folder an application's file picker opens by default.
	DeviceDirs func(p Paths) []string
	// Validate enforces rules spanning several parameters.
	Validate func(b Bag) error
	// AutomationParams adds workload-specific automation parameters.
	AutomationParams func(b Bag, p Paths) map[string]string
	// Dependencies lists the files to push during setup.
	Dependencies func(b Bag, p Paths) []deps.Policy
	// SetupCommands are device shell commands run after the pushes.
	SetupCommands func(b Bag) []string
	// SettleDelay is waited after SetupCommands. Zero uses the runner's delay.
	SettleDelay time.Duration
	// Teardown and Finalize list device artifacts to remove.
	Teardown func(b Bag, p Paths) []deps.CleanupRule
	Finalize func(b Bag, p Paths) []deps.CleanupRule
}

// LogName is the instrumentation log file name, e.g. "excel_instrumentation.log".
func (d *Descriptor) LogName() string {
	return d.Name + "_instrumentation.log"
}

// secretMarkers flag parameter names whose values must not be reported.
var secretMarkers = []string{"pass", "pwd", "secret", "token"}

// IsSecret reports whether the parameter called name carries a credential.
func IsSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, m := range secretMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Automator runs the opaque on-device UI automation and waits for it.
type Automator interface {
	Run(ctx context.Context, inv Invocation) error
}

// Invocation is everything the automation needs for one run.
type Invocation struct {
	Workload string
	Package  string
	Params   map[string]string
	Timeout  time.Duration
}

// Sink receives the metrics of a run.
type Sink interface {
	AddMetric(name string, value int64, unit string)
}
