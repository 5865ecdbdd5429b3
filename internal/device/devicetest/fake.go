// Package devicetest provides an in-memory device.Device for tests.
package devicetest

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/failure"
)

// Push records one push request.
type Push struct {
	Local   string
	Remote  string
	Timeout time.Duration
}

// Fake keeps device files in memory and records every call.
type Fake struct {
	WorkDir    string
	ExtStorage string
	Connected  bool

	// Files maps cleaned device paths to contents.
	Files map[string][]byte

	Pushes   []Push
	Pulls    []string
	Deletes  []string
	Commands []string

	// FailOn makes the named operation ("push", "pull", "delete", "list", "execute")
	// fail with a DeviceIO error.
	FailOn map[string]bool
	// FailCommands makes Execute fail for commands starting with any of these prefixes.
	FailCommands []string
	// Outputs maps a command prefix to the output Execute returns for it.
	Outputs map[string]string
}

// New returns a connected fake rooted at /sdcard.
func New() *Fake {
	return &Fake{
		WorkDir:    "/sdcard/wa-working",
		ExtStorage: "/sdcard",
		Connected:  true,
		Files:      map[string][]byte{},
		FailOn:     map[string]bool{},
		Outputs:    map[string]string{},
	}
}

var _ device.Device = (*Fake)(nil)

func (f *Fake) Name() string                     { return "fake" }
func (f *Fake) WorkingDirectory() string         { return f.WorkDir }
func (f *Fake) ExternalStorageDirectory() string { return f.ExtStorage }

// Put stores a device file.
func (f *Fake) Put(p string, content string) {
	f.Files[path.Clean(p)] = []byte(content)
}

// Has reports whether the device file exists.
func (f *Fake) Has(p string) bool {
	_, ok := f.Files[path.Clean(p)]
	return ok
}

func (f *Fake) fail(op, target string) error {
	if f.FailOn[op] {
		return failure.Newf(failure.DeviceIO, "fake %s %s failed", op, target)
	}
	return nil
}

func (f *Fake) Push(ctx context.Context, local, remote string, timeout time.Duration) error {
	f.Pushes = append(f.Pushes, Push{Local: local, Remote: remote, Timeout: timeout})
	if err := f.fail("push", remote); err != nil {
		return err
	}
	b, err := os.ReadFile(local)
	if err != nil {
		return failure.Wrapf(failure.DeviceIO, err, "failed to push %s", local)
	}
	f.Files[path.Clean(remote)] = b
	return nil
}

func (f *Fake) Pull(ctx context.Context, remote, local string) error {
	f.Pulls = append(f.Pulls, remote)
	if err := f.fail("pull", remote); err != nil {
		return err
	}
	b, ok := f.Files[path.Clean(remote)]
	if !ok {
		return failure.Wrapf(failure.DeviceIO, device.ErrNotExist, "failed to pull %s", remote)
	}
	if fi, err := os.Stat(local); err == nil && fi.IsDir() {
		local = local + string(os.PathSeparator) + path.Base(remote)
	}
	return os.WriteFile(local, b, 0644)
}

func (f *Fake) Delete(ctx context.Context, remote string) error {
	f.Deletes = append(f.Deletes, remote)
	if err := f.fail("delete", remote); err != nil {
		return err
	}
	delete(f.Files, path.Clean(remote))
	return nil
}

func (f *Fake) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	if err := f.fail("list", dir); err != nil {
		return nil, err
	}
	prefix := path.Clean(dir) + "/"
	var names []string
	for p := range f.Files {
		if rest, ok := strings.CutPrefix(p, prefix); ok && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	if len(names) == 0 {
		return nil, failure.Wrapf(failure.DeviceIO, device.ErrNotExist, "failed to list %s", dir)
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fake) Execute(ctx context.Context, command string, timeout time.Duration) (string, error) {
	f.Commands = append(f.Commands, command)
	if err := f.fail("execute", command); err != nil {
		return "", err
	}
	for _, prefix := range f.FailCommands {
		if strings.HasPrefix(command, prefix) {
			return "", failure.Newf(failure.DeviceIO, "fake execute %s failed", command)
		}
	}
	for prefix, out := range f.Outputs {
		if strings.HasPrefix(command, prefix) {
			return out, nil
		}
	}
	return "", nil
}

func (f *Fake) IsNetworkConnected(ctx context.Context) (bool, error) {
	return f.Connected, nil
}
