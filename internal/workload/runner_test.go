package workload

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/uxperf/internal/deps"
	"github.com/daryltucker/uxperf/internal/device"
	"github.com/daryltucker/uxperf/internal/device/devicetest"
	"github.com/daryltucker/uxperf/internal/failure"
)

// fakeAutomator records invocations and writes the instrumentation log the
// real automation would produce.
type fakeAutomator struct {
	dev   *devicetest.Fake
	log   string
	err   error
	calls []Invocation
}

func (f *fakeAutomator) Run(ctx context.Context, inv Invocation) error {
	f.calls = append(f.calls, inv)
	if f.err != nil {
		return f.err
	}
	if f.log != "" {
		f.dev.Put(inv.Params["output_file"], f.log)
	}
	return nil
}

type metric struct {
	Name  string
	Value int64
	Unit  string
}

type sink struct{ got []metric }

func (s *sink) AddMetric(name string, value int64, unit string) {
	s.got = append(s.got, metric{name, value, unit})
}

func demoDescriptor() *Descriptor {
	return &Descriptor{
		Name:    "demo",
		Package: "com.example.demo",
		Parameters: []Parameter{
			DumpsysEnabled,
			{Name: "use_test_file", Kind: KindBool, Default: false},
			{Name: "mode", Kind: KindString, Default: "home", AllowedValues: []string{"home", "search"}},
			{Name: "term", Kind: KindString},
		},
		Validate: func(b Bag) error {
			if b.String("mode") == "search" && !Opt[string](b, "term").IsSome() {
				return failure.New(failure.Configuration, "term must be set when mode is search")
			}
			return nil
		},
		AutomationParams: func(b Bag, p Paths) map[string]string {
			return map[string]string{"mode": b.String("mode")}
		},
		Dependencies: func(b Bag, p Paths) []deps.Policy {
			if !b.Bool("use_test_file") {
				return nil
			}
			return []deps.Policy{deps.ByExtension{Ext: ".xlsx", RemoteDir: p.WorkingDir}}
		},
		Teardown: func(b Bag, p Paths) []deps.CleanupRule {
			return []deps.CleanupRule{
				{Dir: p.WorkingDir, Match: deps.Suffix(".log"), Pull: true},
				{Dir: p.WorkingDir, Match: deps.Suffix(".xlsx")},
			}
		},
	}
}

func newRunner(t *testing.T, log string) (*Runner, *devicetest.Fake, *fakeAutomator) {
	t.Helper()
	dev := devicetest.New()
	auto := &fakeAutomator{dev: dev, log: log}
	return &Runner{Device: dev, Automator: auto, DependenciesDir: t.TempDir()}, dev, auto
}

func TestExecuteHappyPath(t *testing.T) {
	r, dev, auto := newRunner(t, "I/noise\nopen 100 350 250\n")
	depDir := filepath.Join(r.DependenciesDir, "demo")
	require.NoError(t, os.MkdirAll(depDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(depDir, "wa_test.xlsx"), []byte("xlsx"), 0644))
	out := t.TempDir()
	s := &sink{}

	rc, err := r.Execute(context.Background(), demoDescriptor(), map[string]interface{}{"use_test_file": true}, out, s)
	require.NoError(t, err)
	assert.Equal(t, Finalized, rc.State)
	assert.NotEmpty(t, rc.ID)

	want := []metric{{"open_start", 100, "ms"}, {"open_finish", 350, "ms"}, {"open_duration", 250, "ms"}}
	if diff := cmp.Diff(want, s.got); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, rc.Records, 3)

	require.Len(t, auto.calls, 1)
	inv := auto.calls[0]
	assert.Equal(t, DefaultRunTimeout, inv.Timeout)
	assert.Equal(t, map[string]string{
		"package":         "com.example.demo",
		"output_dir":      "/sdcard/wa-working",
		"output_file":     "/sdcard/wa-working/demo_instrumentation.log",
		"dumpsys_enabled": "true",
		"mode":            "home",
	}, inv.Params)

	require.Len(t, dev.Pushes, 1)
	assert.Equal(t, "/sdcard/wa-working/wa_test.xlsx", dev.Pushes[0].Remote)

	// Teardown pulled and removed the log and removed the pushed workbook.
	assert.False(t, dev.Has("/sdcard/wa-working/demo_instrumentation.log"))
	assert.False(t, dev.Has("/sdcard/wa-working/wa_test.xlsx"))
	_, err = os.Stat(filepath.Join(out, "demo_instrumentation.log"))
	assert.NoError(t, err)
}

func TestExecuteDumpsysDisabled(t *testing.T) {
	r, dev, _ := newRunner(t, "")
	s := &sink{}
	rc, err := r.Execute(context.Background(), demoDescriptor(), map[string]interface{}{"dumpsys_enabled": false}, t.TempDir(), s)
	require.NoError(t, err)
	assert.Equal(t, Finalized, rc.State)
	assert.Empty(t, rc.Records)
	assert.Empty(t, s.got)
	assert.Empty(t, dev.Pulls, "results collection must not pull the log")
	assert.Empty(t, dev.Commands, "frame statistics are only reset for dumpsys captures")
	assert.Equal(t, "false", rc.AutomationParams["dumpsys_enabled"])
}

func TestExecuteConditionalMandatory(t *testing.T) {
	t.Run("violated", func(t *testing.T) {
		r, dev, auto := newRunner(t, "")
		rc, err := r.Execute(context.Background(), demoDescriptor(), map[string]interface{}{"mode": "search"}, t.TempDir(), &sink{})
		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.Configuration))
		assert.Equal(t, Failed, rc.State)
		assert.Equal(t, Created, rc.FailedIn)
		assert.Empty(t, auto.calls)
		assert.Empty(t, dev.Commands)
		assert.Empty(t, dev.Pushes)
	})

	t.Run("satisfied", func(t *testing.T) {
		r, _, _ := newRunner(t, "")
		_, err := r.Execute(context.Background(), demoDescriptor(),
			map[string]interface{}{"mode": "search", "term": "cats", "dumpsys_enabled": false}, t.TempDir(), &sink{})
		require.NoError(t, err)
	})

	t.Run("not applicable", func(t *testing.T) {
		r, _, _ := newRunner(t, "")
		_, err := r.Execute(context.Background(), demoDescriptor(),
			map[string]interface{}{"mode": "home", "dumpsys_enabled": false}, t.TempDir(), &sink{})
		require.NoError(t, err)
	})
}

func TestExecuteUnclassifiedValidateError(t *testing.T) {
	r, _, _ := newRunner(t, "")
	d := demoDescriptor()
	d.Validate = func(Bag) error { return errors.New("bad combination") }
	_, err := r.Execute(context.Background(), d, nil, t.TempDir(), &sink{})
	assert.True(t, failure.Is(err, failure.Configuration))
}

func TestExecuteNetworkRequired(t *testing.T) {
	r, dev, auto := newRunner(t, "")
	dev.Connected = false
	d := demoDescriptor()
	d.RequiresNetwork = true

	rc, err := r.Execute(context.Background(), d, nil, t.TempDir(), &sink{})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.Device))
	assert.Equal(t, Validated, rc.FailedIn)
	assert.Empty(t, auto.calls)
}

func TestExecuteMissingDependency(t *testing.T) {
	r, _, auto := newRunner(t, "")
	rc, err := r.Execute(context.Background(), demoDescriptor(), map[string]interface{}{"use_test_file": true}, t.TempDir(), &sink{})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.DependencyNotFound))
	assert.Equal(t, Initialized, rc.FailedIn)
	assert.Empty(t, auto.calls)
}

func TestExecuteAutomationFailure(t *testing.T) {
	r, dev, auto := newRunner(t, "")
	auto.err = errors.New("instrumentation crashed")
	dev.Put("/sdcard/wa-working/demo_instrumentation.log", "stale 1 2 3\n")

	rc, err := r.Execute(context.Background(), demoDescriptor(), nil, t.TempDir(), &sink{})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.Automation))
	assert.Equal(t, SetUp, rc.FailedIn)
	assert.Empty(t, rc.Records)
	// No rollback: teardown never ran, so device artifacts stay.
	assert.True(t, dev.Has("/sdcard/wa-working/demo_instrumentation.log"))
}

func TestExecutePullFailure(t *testing.T) {
	r, dev, _ := newRunner(t, "open 1 2 1\n")
	dev.FailOn["pull"] = true
	rc, err := r.Execute(context.Background(), demoDescriptor(), nil, t.TempDir(), &sink{})
	assert.True(t, failure.Is(err, failure.DeviceIO))
	assert.Equal(t, Running, rc.FailedIn)
}

func TestExecuteUnreadableLog(t *testing.T) {
	r, _, _ := newRunner(t, strings.Repeat("x", 5<<20))
	rc, err := r.Execute(context.Background(), demoDescriptor(), nil, t.TempDir(), &sink{})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.DeviceIO))
	assert.ErrorIs(t, err, bufio.ErrTooLong)
	assert.Equal(t, Running, rc.FailedIn)
}

func TestExecuteResetsFrameStats(t *testing.T) {
	r, dev, auto := newRunner(t, "open 1 2 1\n")
	d := demoDescriptor()
	d.Activity = ".MainActivity"
	d.Views = []string{"com.example.demo/.MainActivity", "com.example.demo/.EditorActivity"}

	_, err := r.Execute(context.Background(), d, nil, t.TempDir(), &sink{})
	require.NoError(t, err)
	require.Len(t, auto.calls, 1)
	assert.Equal(t, []string{
		"dumpsys gfxinfo 'com.example.demo' reset",
		"dumpsys SurfaceFlinger --latency-clear 'com.example.demo/.MainActivity'",
		"dumpsys SurfaceFlinger --latency-clear 'com.example.demo/.EditorActivity'",
	}, dev.Commands)
}

func TestExecuteHooks(t *testing.T) {
	r, dev, auto := newRunner(t, "")
	d := demoDescriptor()
	d.MediaRescan = true
	d.ResultsFileParam = "results_file"
	d.RunTimeout = func(b Bag) time.Duration { return 90 * time.Second }
	d.SetupCommands = func(Bag) []string { return []string{"am force-stop com.example.demo"} }
	d.DeviceDirs = func(p Paths) []string { return []string{device.Join(p.WorkingDir, "..", "Download")} }
	d.Finalize = func(b Bag, p Paths) []deps.CleanupRule {
		return []deps.CleanupRule{{Dir: p.WorkingDir, Match: deps.Suffix(".jpg")}}
	}
	dev.Put("/sdcard/wa-working/photo.jpg", "jpg")

	rc, err := r.Execute(context.Background(), d, map[string]interface{}{"dumpsys_enabled": false}, t.TempDir(), &sink{})
	require.NoError(t, err)
	assert.Equal(t, Finalized, rc.State)

	require.Len(t, auto.calls, 1)
	assert.Equal(t, 90*time.Second, auto.calls[0].Timeout)
	assert.Equal(t, "/sdcard/wa-working/demo_instrumentation.log", auto.calls[0].Params["results_file"])
	assert.NotContains(t, auto.calls[0].Params, "output_file")

	assert.Equal(t, []string{
		"mkdir -p '/sdcard/Download'",
		"am force-stop com.example.demo",
		device.MediaRescanCommand, // setup
		device.MediaRescanCommand, // teardown
		device.MediaRescanCommand, // finalize
	}, dev.Commands)
	assert.False(t, dev.Has("/sdcard/wa-working/photo.jpg"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ResultsCollected", ResultsCollected.String())
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "Unknown", State(42).String())
}
