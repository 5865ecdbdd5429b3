/*
PURPOSE:
  Device control interface consumed by the workload runner.
  The device is an external, shared resource; this package only describes
  what the runner needs from it and provides an adb-backed implementation.

REQUIREMENTS:
  User-specified:
  - push, pull, delete, list directory, execute, network state query.
  - Working directory and external storage directory.

  Implementation-discovered:
  - Callers need to tell "path does not exist" apart from I/O failures so
    cleanup can stay best-effort.

ARCHITECTURE INTEGRATION:
  - Used by: internal/deps, internal/uiauto, internal/workload, internal/engine
  - Implementations: ADB (adb.go), devicetest.Fake (tests)

ERROR HANDLING:
  - Implementations classify failures as failure.DeviceIO.
  - Missing paths wrap ErrNotExist.

IMPLEMENTATION RULES:
  - No locking. At most one operation is in flight per device.
  - Timeouts are passed in by the caller; zero means no timeout.

USAGE:
  err := dev.Push(ctx, local, remote, 5*time.Minute)

SELF-HEALING INSTRUCTIONS:
  - If a new device operation is needed, add it here and to devicetest.Fake.

RELATED FILES:
  - internal/device/adb.go
  - internal/device/devicetest/fake.go

MAINTENANCE:
  - Keep the interface small; workload code must not depend on adb details.
*/

package device

import (
	"context"
	"path"
	"time"

	"github.com/pkg/errors"
)

// ErrNotExist is wrapped by errors for device paths that do not exist.
var ErrNotExist = errors.New("no such file or directory")

// Device is the capability the runner uses to talk to the device under test.
type Device interface {
	// Name identifies the device in logs and error messages.
	Name() string
	// WorkingDirectory is the harness' own directory on the device.
	WorkingDirectory() string
	// ExternalStorageDirectory is the root of shared storage, e.g. /sdcard.
	ExternalStorageDirectory() string

	Push(ctx context.Context, local, remote string, timeout time.Duration) error
	Pull(ctx context.Context, remote, local string) error
	Delete(ctx context.Context, remote string) error
	ListDirectory(ctx context.Context, dir string) ([]string, error)
	Execute(ctx context.Context, command string, timeout time.Duration) (string, error)
	IsNetworkConnected(ctx context.Context) (bool, error)
}

// Join joins device path elements. Device paths are always slash separated.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// MediaRescanCommand asks the media scanner to re-index shared storage.
const MediaRescanCommand = "am broadcast -a android.intent.action.MEDIA_MOUNTED -d file:///sdcard"
