/*
PURPOSE:
  Locates workload input files in the local dependencies directory, pushes them
  to the device, and removes device-side artifacts after a run.

REQUIREMENTS:
  User-specified:
  - By-extension, exactly one: zero or several candidates is a DependencyNotFound failure.
  - By-exact-name: push when present, silently do nothing when absent.
  - Cleanup by exact name, extension, or autosave naming scheme; absence is not an error.

  Implementation-discovered:
  - Reader pushes every PDF it finds and needs at least one (AllByExtension).
  - Google Slides pushes its file under a different device name.

ARCHITECTURE INTEGRATION:
  - Called by: internal/workload (SetUp, TearDown, Finalize)
  - Uses: internal/device, internal/failure

ERROR HANDLING:
  - Missing/ambiguous inputs: failure.DependencyNotFound, raised before any push.
  - Device errors are returned as-is (already failure.DeviceIO).

IMPLEMENTATION RULES:
  - Local candidates are considered in name order so pushes are deterministic.
  - One attempt per device operation.

USAGE:
  r := deps.Resolver{Device: dev, LocalDir: "dependencies/excel"}
  err := r.Push(ctx, deps.ByExtension{Ext: ".xlsx", RemoteDir: dev.WorkingDirectory()})

SELF-HEALING INSTRUCTIONS:
  - A new policy only needs to implement Policy.

RELATED FILES:
  - internal/deps/cleanup.go

MAINTENANCE:
  - Keep default timeouts in line with expected file sizes.
*/

package deps

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/output"
)

const (
	// LargeFileTimeout is used for documents and media pushed by extension.
	LargeFileTimeout = 5 * time.Minute
	// SmallFileTimeout is used for single named documents.
	SmallFileTimeout = 60 * time.Second
)

// Policy decides which local files to push and where.
type Policy interface {
	Resolve(ctx context.Context, r *Resolver) error
}

// Resolver pushes files from LocalDir to Device.
type Resolver struct {
	Device   device.Device
	LocalDir string
}

// Push resolves each policy in order and stops at the first error.
func (r *Resolver) Push(ctx context.Context, policies ...Policy) error {
	for _, p := range policies {
		if err := p.Resolve(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// localFiles returns the names of regular files in LocalDir, sorted.
func (r *Resolver) localFiles() ([]string, error) {
	entries, err := os.ReadDir(r.LocalDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *Resolver) withExt(ext string) ([]string, error) {
	names, err := r.localFiles()
	if err != nil {
		return nil, failure.Wrapf(failure.DependencyNotFound, err, "failed to read dependencies directory %s", r.LocalDir)
	}
	var out []string
	for _, n := range names {
		if strings.HasSuffix(n, ext) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *Resolver) push(ctx context.Context, name, remote string, timeout time.Duration) error {
	local := filepath.Join(r.LocalDir, name)
	output.Logger.Debug("Pushing dependency", "local", local, "remote", remote, "timeout", timeout)
	return r.Device.Push(ctx, local, remote, timeout)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// ByExtension pushes the single local file ending in Ext to RemoteDir.
type ByExtension struct {
	Ext       string
	RemoteDir string
	Timeout   time.Duration
}

func (p ByExtension) Resolve(ctx context.Context, r *Resolver) error {
	names, err := r.withExt(p.Ext)
	if err != nil {
		return err
	}
	if len(names) != 1 {
		return failure.Newf(failure.DependencyNotFound,
			"this workload requires exactly one %s file in %s, found %d", p.Ext, r.LocalDir, len(names))
	}
	return r.push(ctx, names[0], device.Join(p.RemoteDir, names[0]), orDefault(p.Timeout, LargeFileTimeout))
}

// AllByExtension pushes every local file ending in Ext to RemoteDir and requires at least one.
type AllByExtension struct {
	Ext       string
	RemoteDir string
	Timeout   time.Duration
}

func (p AllByExtension) Resolve(ctx context.Context, r *Resolver) error {
	names, err := r.withExt(p.Ext)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return failure.Newf(failure.DependencyNotFound, "cannot find %s file(s) in %s", p.Ext, r.LocalDir)
	}
	for _, n := range names {
		if err := r.push(ctx, n, device.Join(p.RemoteDir, n), orDefault(p.Timeout, LargeFileTimeout)); err != nil {
			return err
		}
	}
	return nil
}

// ByName pushes the local file called Name if it exists. RemoteName, when set,
// renames it on the device.
type ByName struct {
	Name       string
	RemoteDir  string
	RemoteName string
	Timeout    time.Duration
}

func (p ByName) Resolve(ctx context.Context, r *Resolver) error {
	names, err := r.localFiles()
	if errors.Is(err, fs.ErrNotExist) {
		output.Logger.Debug("Dependencies directory absent, skipping optional file", "dir", r.LocalDir, "file", p.Name)
		return nil
	}
	if err != nil {
		return failure.Wrapf(failure.DependencyNotFound, err, "failed to read dependencies directory %s", r.LocalDir)
	}
	for _, n := range names {
		if n != p.Name {
			continue
		}
		remote := p.RemoteName
		if remote == "" {
			remote = p.Name
		}
		return r.push(ctx, n, device.Join(p.RemoteDir, remote), orDefault(p.Timeout, SmallFileTimeout))
	}
	output.Logger.Debug("Optional file not found, nothing pushed", "dir", r.LocalDir, "file", p.Name)
	return nil
}
