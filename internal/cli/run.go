/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes an agenda, or a single workload given on the command line.

REQUIREMENTS:
  User-specified:
  - Run the workloads.
  - specific flags for overrides.

  Implementation-discovered:
  - Need to load config first, then env, then flags (flags win).
  - --workload replaces the agenda's workload list.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config, internal/workloads

ERROR HANDLING:
  - Returns error if config load fails, the agenda is invalid or any run failed.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Validate -> Engine.Run.

USAGE:
  uxperf run --workload youtube --param video_source=trending

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daryltucker/uxperf/internal/config"
	"github.com/daryltucker/uxperf/internal/engine"
	"github.com/daryltucker/uxperf/internal/workloads"
)

var (
	outputOverride string
	serialOverride string
	depsOverride   string
	workloadName   string
	paramOverrides []string
	iterationsFlag int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the workload agenda",
	Long: `Executes the agenda against one Android device over adb.
Every run follows the same lifecycle:
1. Validate: Checks parameters and builds the automation parameters.
2. Initialize/Setup: Checks preconditions and pushes input files to the device.
3. Run: Launches the UI automation and waits for it.
4. Collect: Pulls the instrumentation log and parses timing metrics.
5. Teardown/Finalize: Pulls remaining logs and removes test files from the device.

Results are saved to results.csv and results.json in the output directory.
A failed run is recorded and the agenda continues; the command exits non-zero
if any run failed.`,
	Example: `  # Run the agenda (uses ./uxperf.yaml or ./agenda.yaml)
  uxperf run

  # Run one workload on a specific device
  uxperf run --serial emulator-5554 --workload youtube --param video_source=search --param search_term="big buck bunny"

  # Three iterations of Word, credentials from the environment
  uxperf run --workload msword -n 3 --param test_type=create --param document_name=uxperf.docx \
    --param login_email='${WORD_EMAIL}' --param login_pass='${WORD_PASS}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if workloadName != "" {
			params, err := parseParams(paramOverrides)
			if err != nil {
				return err
			}
			cfg.Workloads = []config.WorkloadSpec{{Name: workloadName, Iterations: iterationsFlag, Params: params}}
		} else if len(paramOverrides) > 0 {
			return fmt.Errorf("--param requires --workload")
		}
		if err := config.ApplyEnv(cfg); err != nil {
			return err
		}
		if outputOverride != "" {
			cfg.OutputDir = outputOverride
		}
		if serialOverride != "" {
			cfg.Device.Serial = serialOverride
		}
		if depsOverride != "" {
			cfg.DependenciesDir = depsOverride
		}
		if err := cfg.Validate(workloads.Names()); err != nil {
			return err
		}
		if len(cfg.Workloads) == 0 {
			return fmt.Errorf("nothing to run: the agenda has no workloads and --workload was not given")
		}

		// 3. Execution
		return engine.Run(cmd.Context(), cfg)
	},
}

// parseParams turns key=value pairs into a parameter map.
func parseParams(pairs []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q: want key=value", p)
		}
		params[k] = v
	}
	return params, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for results (CSV/JSON) and pulled logs")
	runCmd.Flags().StringVar(&serialOverride, "serial", "", "adb serial of the target device")
	runCmd.Flags().StringVar(&depsOverride, "dependencies-dir", "", "Directory holding one sub-directory of input files per workload")
	runCmd.Flags().StringVarP(&workloadName, "workload", "w", "", "Run only this workload (replaces the agenda's list)")
	runCmd.Flags().StringArrayVarP(&paramOverrides, "param", "p", nil, "Workload parameter as key=value (repeatable, needs --workload)")
	runCmd.Flags().IntVarP(&iterationsFlag, "iterations", "n", 1, "Iterations for --workload")
}
