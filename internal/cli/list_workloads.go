/*
PURPOSE:
  Defines the 'list-workloads' subcommand.
  Shows every workload with its package; -v adds the launch activity, the
  views whose frame statistics are tracked, and the parameters.

REQUIREMENTS:
  User-specified:
  - List available workloads.

  Implementation-discovered:
  - Useful reference when writing an agenda; shows defaults and allowed values.

ARCHITECTURE INTEGRATION:
  - Calls: internal/workloads.All()

ERROR HANDLING:
  - Only write errors, returned to Cobra.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  uxperf list-workloads [-v]

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/workloads/registry.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/daryltucker/uxperf/internal/workload"
	"github.com/daryltucker/uxperf/internal/workloads"
)

var verboseList bool

var listWorkloadsCmd = &cobra.Command{
	Use:   "list-workloads",
	Short: "List available workloads and their parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWorkloads(cmd.OutOrStdout(), workloads.All(), verboseList)
	},
}

func listWorkloads(w io.Writer, all []*workload.Descriptor, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Package, d.Description)
		if !verbose {
			continue
		}
		if d.Activity != "" {
			fmt.Fprintf(tw, "\t  activity\t%s\n", d.Activity)
		}
		for _, v := range d.Views {
			fmt.Fprintf(tw, "\t  view\t%s\n", v)
		}
		for _, p := range d.Parameters {
			fmt.Fprintf(tw, "\t  %s\t%s\n", p.Name, describeParam(p))
		}
	}
	return tw.Flush()
}

func describeParam(p workload.Parameter) string {
	parts := []string{p.Kind.String()}
	if p.Mandatory {
		parts = append(parts, "mandatory")
	}
	if p.Default != nil {
		parts = append(parts, fmt.Sprintf("default=%v", p.Default))
	}
	if len(p.AllowedValues) > 0 {
		parts = append(parts, "one of "+strings.Join(p.AllowedValues, "|"))
	}
	if p.ConstraintDesc != "" {
		parts = append(parts, p.ConstraintDesc)
	}
	s := strings.Join(parts, ", ")
	if p.Description != "" {
		s += ". " + p.Description
	}
	return s
}

func init() {
	rootCmd.AddCommand(listWorkloadsCmd)
	listWorkloadsCmd.Flags().BoolVarP(&verboseList, "verbose", "v", false, "Also list each workload's activity, views and parameters")
}
