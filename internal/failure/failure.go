/*
PURPOSE:
  Error taxonomy shared by every stage of a workload run.
  Lets the runner and the CLI report *what kind* of failure ended a run.

REQUIREMENTS:
  User-specified:
  - Distinguish configuration, missing dependency, device precondition,
    device I/O and automation failures.
  - Keep the originating message visible to the user.

  Implementation-discovered:
  - Callers wrap errors several layers deep; the kind must survive wrapping.
  - "Missing required parameter" is always a configuration failure.

ARCHITECTURE INTEGRATION:
  - Used by: internal/deps, internal/device, internal/uiauto, internal/workload, internal/engine
  - Dependencies: github.com/pkg/errors (Wrap/Cause idiom)

ERROR HANDLING:
  - This is the error handling.

IMPLEMENTATION RULES:
  - Every failure is fatal for the current run; there is no "retryable" kind.
  - KindOf walks the Unwrap chain; unknown errors report KindUnknown.

USAGE:
  return failure.Wrapf(failure.DeviceIO, err, "failed to push %s", local)
  if failure.Is(err, failure.Configuration) { ... }

SELF-HEALING INSTRUCTIONS:
  - When adding a kind, add its String() case and a test.

RELATED FILES:
  - internal/workload/runner.go

MAINTENANCE:
  - Keep the kind names stable; they are written into result files.
*/

package failure

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a run failure.
type Kind int

const (
	KindUnknown Kind = iota
	// Configuration is a bad or missing parameter combination.
	Configuration
	// DependencyNotFound is a required local input file that is missing or ambiguous.
	DependencyNotFound
	// Device is an unmet device precondition such as network connectivity.
	Device
	// DeviceIO is a failed push, pull, delete or shell command.
	DeviceIO
	// Automation is a failure signalled by the UI automation.
	Automation
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "ConfigurationError"
	case DependencyNotFound:
		return "DependencyNotFoundError"
	case Device:
		return "DeviceError"
	case DeviceIO:
		return "DeviceIOError"
	case Automation:
		return "AutomationFailure"
	default:
		return "UnknownError"
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a failure of kind k with message msg.
func New(k Kind, msg string) error {
	return &Error{Kind: k, Err: errors.New(msg)}
}

// Newf is like New with formatting.
func Newf(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, Err: errors.Errorf(format, args...)}
}

// Wrap annotates err with msg and classifies it as k.
// It returns nil if err is nil.
func Wrap(k Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Err: errors.Wrap(err, msg)}
}

// Wrapf is like Wrap with formatting.
func Wrapf(k Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Err: errors.Wrapf(err, format, args...)}
}

// KindOf reports the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if stderrors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Describe formats err as "Kind: message" for user-facing output.
// Unclassified errors are returned as their message alone.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	k := KindOf(err)
	if k == KindUnknown {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", k, err)
}
