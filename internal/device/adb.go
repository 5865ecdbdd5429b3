/*
PURPOSE:
  Device implementation that drives an Android device through the adb binary.

REQUIREMENTS:
  User-specified:
  - Generous push timeouts; device I/O under instrumentation is slow.

  Implementation-discovered:
  - Older adb servers do not propagate shell exit codes, so shell helpers
    inspect output text instead of relying on the exit status alone.
  - Paths handed to `adb shell` must be quoted; document names contain spaces.

ARCHITECTURE INTEGRATION:
  - Constructed by: internal/engine
  - Implements: device.Device

ERROR HANDLING:
  - Every failure is failure.DeviceIO with the adb output attached.
  - "No such file or directory" output wraps ErrNotExist.

IMPLEMENTATION RULES:
  - Timeouts are applied with context.WithTimeout around the adb process.
  - No retries.

USAGE:
  dev := device.NewADB(device.ADBConfig{Serial: "emulator-5554"})

SELF-HEALING INSTRUCTIONS:
  - If adb is not on PATH, set ADBPath (agenda: device.adb_path).

RELATED FILES:
  - internal/device/device.go

MAINTENANCE:
  - Update the not-exist detection if toybox changes its messages.
*/

package device

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/daryltucker/uxperf/internal/failure"
)

const (
	DefaultWorkingDirectory         = "/sdcard/wa-working"
	DefaultExternalStorageDirectory = "/sdcard"

	// pingTarget is pinged once to decide network connectivity.
	pingTarget = "8.8.8.8"
)

// ADBConfig selects the device and its directories.
type ADBConfig struct {
	Serial                   string
	ADBPath                  string
	WorkingDirectory         string
	ExternalStorageDirectory string
}

// ADB talks to one device through the adb binary.
type ADB struct {
	cfg ADBConfig
}

// NewADB returns an ADB device, filling in defaults for empty fields.
func NewADB(cfg ADBConfig) *ADB {
	if cfg.ADBPath == "" {
		cfg.ADBPath = "adb"
	}
	if cfg.WorkingDirectory == "" {
		cfg.WorkingDirectory = DefaultWorkingDirectory
	}
	if cfg.ExternalStorageDirectory == "" {
		cfg.ExternalStorageDirectory = DefaultExternalStorageDirectory
	}
	return &ADB{cfg: cfg}
}

func (a *ADB) Name() string {
	if a.cfg.Serial == "" {
		return "default"
	}
	return a.cfg.Serial
}

func (a *ADB) WorkingDirectory() string         { return a.cfg.WorkingDirectory }
func (a *ADB) ExternalStorageDirectory() string { return a.cfg.ExternalStorageDirectory }

// Command returns an adb command for this device. The caller runs it.
func (a *ADB) Command(ctx context.Context, args ...string) *exec.Cmd {
	var full []string
	if a.cfg.Serial != "" {
		full = append(full, "-s", a.cfg.Serial)
	}
	full = append(full, args...)
	return exec.CommandContext(ctx, a.cfg.ADBPath, full...)
}

func (a *ADB) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := a.Command(ctx, args...).CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if ctx.Err() != nil {
			err = errors.Wrapf(ctx.Err(), "after %v", timeout)
		}
		if isNotExist(text) {
			err = errors.Wrap(ErrNotExist, err.Error())
		}
		return text, failure.Wrapf(failure.DeviceIO, err, "adb %s on %s: %s", strings.Join(args, " "), a.Name(), text)
	}
	return text, nil
}

func (a *ADB) shell(ctx context.Context, timeout time.Duration, command string) (string, error) {
	return a.run(ctx, timeout, "shell", command)
}

func (a *ADB) Push(ctx context.Context, local, remote string, timeout time.Duration) error {
	_, err := a.run(ctx, timeout, "push", local, remote)
	return err
}

func (a *ADB) Pull(ctx context.Context, remote, local string) error {
	_, err := a.run(ctx, 0, "pull", remote, local)
	return err
}

func (a *ADB) Delete(ctx context.Context, remote string) error {
	out, err := a.shell(ctx, 0, "rm -rf "+Quote(remote))
	if err != nil {
		return err
	}
	if out != "" {
		return failure.Newf(failure.DeviceIO, "failed to delete %s on %s: %s", remote, a.Name(), out)
	}
	return nil
}

func (a *ADB) ListDirectory(ctx context.Context, dir string) ([]string, error) {
	out, err := a.shell(ctx, 0, "ls -1 "+Quote(dir))
	if err != nil {
		return nil, err
	}
	if isNotExist(out) {
		return nil, failure.Wrapf(failure.DeviceIO, ErrNotExist, "failed to list %s on %s", dir, a.Name())
	}
	var names []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			names = append(names, l)
		}
	}
	return names, nil
}

func (a *ADB) Execute(ctx context.Context, command string, timeout time.Duration) (string, error) {
	return a.shell(ctx, timeout, command)
}

func (a *ADB) IsNetworkConnected(ctx context.Context) (bool, error) {
	cmd := "ping -q -c 1 -w 1 " + pingTarget + " >/dev/null 2>&1 && echo connected || echo disconnected"
	out, err := a.shell(ctx, 30*time.Second, cmd)
	if err != nil {
		return false, err
	}
	return strings.HasSuffix(out, "connected") && !strings.HasSuffix(out, "disconnected"), nil
}

func isNotExist(out string) bool {
	return strings.Contains(out, "No such file or directory") || strings.Contains(out, "does not exist")
}

// Quote single-quotes s for the device shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
