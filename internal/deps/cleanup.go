/*
PURPOSE:
  Removes device-side artifacts after a run, optionally pulling them to the
  host first (instrumentation logs).

REQUIREMENTS:
  User-specified:
  - Match by exact name, extension, or an application's autosave naming scheme.
  - A missing file or directory is not an error.

  Implementation-discovered:
  - Word autosaves "Document.docx", "Document (2).docx", ... which must go
    while user documents with similar names stay.

ARCHITECTURE INTEGRATION:
  - Called by: internal/workload (TearDown, Finalize)
  - Uses: internal/device

ERROR HANDLING:
  - A missing directory (device.ErrNotExist) removes nothing.
  - Other device errors abort the cleanup and are returned as-is; entries
    already removed are reported.

IMPLEMENTATION RULES:
  - List the directory once per rule; never delete by glob on the device.

USAGE:
  r := deps.Resolver{Device: dev}
  removed, err := r.Cleanup(ctx, deps.CleanupRule{Dir: wd, Match: deps.Suffix(".log"), Pull: true}, outDir)

SELF-HEALING INSTRUCTIONS:
  - If a user file was removed, tighten the rule's Matcher.

RELATED FILES:
  - internal/deps/resolver.go

MAINTENANCE:
  - New naming schemes become a Matcher constructor here.
*/

package deps

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/output"
)

// Matcher selects device directory entries by name.
type Matcher func(name string) bool

// Exact matches name exactly.
func Exact(name string) Matcher {
	return func(n string) bool { return n == name }
}

// Suffix matches names ending in ext.
func Suffix(ext string) Matcher {
	return func(n string) bool { return strings.HasSuffix(n, ext) }
}

// PrefixSuffix matches names starting with prefix and ending in ext.
func PrefixSuffix(prefix, ext string) Matcher {
	return func(n string) bool { return strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ext) }
}

// AutosavePattern matches base+ext and the numbered copies apps create,
// e.g. "Document.docx", "Document (1).docx".
func AutosavePattern(base, ext string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `( \([0-9]+\))?` + regexp.QuoteMeta(ext) + `$`)
}

// Autosave matches AutosavePattern(base, ext).
func Autosave(base, ext string) Matcher {
	re := AutosavePattern(base, ext)
	return re.MatchString
}

// AnyOf matches when any of ms matches.
func AnyOf(ms ...Matcher) Matcher {
	return func(n string) bool {
		for _, m := range ms {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// CleanupRule removes matching entries of Dir. With Pull set, each entry is
// copied into the run's output directory before deletion.
type CleanupRule struct {
	Dir   string
	Match Matcher
	Pull  bool
}

// Cleanup applies rule and returns the entries it removed. A missing directory
// removes nothing.
func (r *Resolver) Cleanup(ctx context.Context, rule CleanupRule, outDir string) ([]string, error) {
	names, err := r.Device.ListDirectory(ctx, rule.Dir)
	if errors.Is(err, device.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, n := range names {
		if !rule.Match(n) {
			continue
		}
		remote := device.Join(rule.Dir, n)
		if rule.Pull {
			output.Logger.Debug("Pulling file", "remote", remote, "dir", outDir)
			if err := r.Device.Pull(ctx, remote, filepath.Join(outDir, n)); err != nil {
				return removed, err
			}
		}
		if err := r.Device.Delete(ctx, remote); err != nil {
			return removed, err
		}
		removed = append(removed, n)
	}
	return removed, nil
}
