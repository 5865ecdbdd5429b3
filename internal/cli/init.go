/*
PURPOSE:
  Defines the 'init' subcommand, which writes the sample agenda.

REQUIREMENTS:
  User-specified:
  - Give new users a working agenda covering every workload.

  Implementation-discovered:
  - Credentials in the sample are ${VAR} references, never literals.

ARCHITECTURE INTEGRATION:
  - Uses: internal/assets (embedded agenda.yaml)

ERROR HANDLING:
  - Refuses to overwrite an existing file unless --force is given.

IMPLEMENTATION RULES:
  - Create the file with O_EXCL so a concurrent writer is never clobbered.

USAGE:
  uxperf init [path] [--force]

SELF-HEALING INSTRUCTIONS:
  - If the written agenda fails validation, fix internal/assets/agenda.yaml.

RELATED FILES:
  - internal/assets/agenda.yaml

MAINTENANCE:
  - None.
*/

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/uxperf/internal/assets"
	"github.com/daryltucker/uxperf/internal/output"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a sample agenda (default ./uxperf.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "uxperf.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if err := writeAgenda(path, forceInit); err != nil {
			return err
		}
		output.Logger.Info("Wrote sample agenda", "path", path)
		return nil
	},
}

// writeAgenda writes the embedded sample agenda, refusing to replace an
// existing file unless force is set.
func writeAgenda(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(assets.Agenda); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
