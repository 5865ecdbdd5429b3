/*
PURPOSE:
  Catalogue of the benchmark workloads uxperf knows how to drive. Each
  workload is a workload.Descriptor value; there is no per-workload type.

REQUIREMENTS:
  User-specified:
  - Excel, Word, PowerPoint, Google Slides, Reader, Skype and YouTube.
  - Look up a workload by name for agendas and the CLI.

  Implementation-discovered:
  - Descriptors hold closures, so All returns fresh values and callers may
    tweak their copy without affecting other runs.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (agenda resolution), internal/cli (list-workloads)
  - Calls: internal/workload, internal/deps

ERROR HANDLING:
  - Unknown names are a failure.Configuration error.

IMPLEMENTATION RULES:
  - Keep All sorted by name; list-workloads prints it as-is.
  - Instrumentation logs are always named <workload>_instrumentation.log.

USAGE:
  d, err := workloads.Get("youtube")

SELF-HEALING INSTRUCTIONS:
  - If a new workload does not show up, check it is listed in All.

RELATED FILES:
  - internal/workload/descriptor.go - descriptor fields and hooks
  - internal/deps/ - push and cleanup policies

MAINTENANCE:
  - Add new workloads as a constructor in their own file plus a line in All.
*/

package workloads

import (
	"sort"
	"strings"

	"github.com/daryltucker/uxperf/internal/deps"
	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/workload"
)

// All returns every known workload, sorted by name.
func All() []*workload.Descriptor {
	all := []*workload.Descriptor{
		Excel(),
		GoogleSlides(),
		MsWord(),
		PowerPoint(),
		Reader(),
		Skype(),
		YouTube(),
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Names returns the names of every known workload.
func Names() []string {
	var names []string
	for _, d := range All() {
		names = append(names, d.Name)
	}
	return names
}

// Get returns the workload called name.
func Get(name string) (*workload.Descriptor, error) {
	for _, d := range All() {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, failure.Newf(failure.Configuration, "unknown workload %q (available: %s)", name, strings.Join(Names(), ", "))
}

// views qualifies activity names with the package, the form frame-timing
// instrumentation expects.
func views(pkg string, activities ...string) []string {
	out := make([]string, len(activities))
	for i, a := range activities {
		out[i] = pkg + "/" + a
	}
	return out
}

// pullLogs pulls and deletes the workload's own logs from the working directory.
func pullLogs(name string) func(workload.Bag, workload.Paths) []deps.CleanupRule {
	return func(_ workload.Bag, p workload.Paths) []deps.CleanupRule {
		return []deps.CleanupRule{{Dir: p.WorkingDir, Match: deps.PrefixSuffix(name, ".log"), Pull: true}}
	}
}

// pullAllLogs is pullLogs for workloads that collect every log in the
// working directory, including ones left by other instrumentation.
func pullAllLogs(p workload.Paths) deps.CleanupRule {
	return deps.CleanupRule{Dir: p.WorkingDir, Match: deps.Suffix(".log"), Pull: true}
}

func underscored(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
