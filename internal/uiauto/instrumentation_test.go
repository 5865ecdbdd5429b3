package uiauto

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/uxperf/internal/device/devicetest"
	"github.com/daryltucker/uxperf/internal/failure"
	"github.com/daryltucker/uxperf/internal/workload"
)

func TestCommand(t *testing.T) {
	dev := devicetest.New()
	in := &Instrumentation{Device: dev}
	cmd := in.Command(workload.Invocation{
		Workload: "youtube",
		Params: map[string]string{
			"video_source": "search",
			"search_term":  "big buck",
		},
	})
	assert.Equal(t,
		"uiautomator runtest '/sdcard/wa-working/com.arm.wlauto.uiauto.youtube.jar'"+
			" -e search_term 'big buck' -e video_source 'search' -e workdir '/sdcard/wa-working'"+
			" -c com.arm.wlauto.uiauto.UiAutomation#runUiAutomation",
		cmd)
}

func TestRunPassesTimeout(t *testing.T) {
	dev := devicetest.New()
	dev.Outputs["uiautomator"] = "INSTRUMENTATION_STATUS_CODE: 0\nOK (1 test)"
	in := &Instrumentation{Device: dev, JarDir: "/data/local/tmp"}

	err := in.Run(context.Background(), workload.Invocation{Workload: "skype", Timeout: 2 * time.Minute})
	require.NoError(t, err)
	require.Len(t, dev.Commands, 1)
	assert.Contains(t, dev.Commands[0], "'/data/local/tmp/com.arm.wlauto.uiauto.skype.jar'")
}

func TestRunFailures(t *testing.T) {
	for _, out := range []string{
		"Time: 12.1\nFAILURES!!!\nTests run: 1,  Failures: 1",
		"INSTRUMENTATION_STATUS_CODE: -2",
		"INSTRUMENTATION_FAILED: com.arm.wlauto.uiauto",
	} {
		dev := devicetest.New()
		dev.Outputs["uiautomator"] = out
		err := (&Instrumentation{Device: dev}).Run(context.Background(), workload.Invocation{Workload: "excel"})
		require.Error(t, err, out)
		assert.True(t, failure.Is(err, failure.Automation), out)
	}
}

func TestRunDeviceError(t *testing.T) {
	dev := devicetest.New()
	dev.FailOn["execute"] = true
	err := (&Instrumentation{Device: dev}).Run(context.Background(), workload.Invocation{Workload: "excel"})
	assert.True(t, failure.Is(err, failure.DeviceIO))
}

func TestRunDeviceErrorHidesCredentials(t *testing.T) {
	dev := devicetest.New()
	dev.FailCommands = []string{"uiautomator"}
	err := (&Instrumentation{Device: dev}).Run(context.Background(), workload.Invocation{
		Workload: "skype",
		Params:   map[string]string{"my_id": "alice", "my_pwd": "hunter2"},
	})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.DeviceIO))
	assert.NotContains(t, err.Error(), "hunter2")
	assert.NotContains(t, err.Error(), "uiautomator runtest")
	assert.Contains(t, err.Error(), "UI automation for skype")
}

func TestRunFailureOutputIsScrubbed(t *testing.T) {
	dev := devicetest.New()
	dev.Outputs["uiautomator"] = "INSTRUMENTATION_STATUS: my_pwd=hunter2\nFAILURES!!!"
	err := (&Instrumentation{Device: dev}).Run(context.Background(), workload.Invocation{
		Workload: "skype",
		Params:   map[string]string{"my_pwd": "hunter2"},
	})
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.Automation))
	assert.NotContains(t, err.Error(), "hunter2")
	assert.Contains(t, err.Error(), "my_pwd=***")
}

func TestRunTimeout(t *testing.T) {
	dev := &timeoutDevice{Fake: devicetest.New()}
	err := (&Instrumentation{Device: dev}).Run(context.Background(), workload.Invocation{
		Workload: "youtube",
		Timeout:  time.Second,
		Params:   map[string]string{"login_pass": "hunter2"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, failure.Is(err, failure.DeviceIO))
	assert.Equal(t, "UI automation for youtube did not finish within 1s: context deadline exceeded", err.Error())
}

func TestScrub(t *testing.T) {
	params := map[string]string{"login_pass": "s3cr3t", "login_name": "alice", "token": ""}
	assert.Equal(t, "user alice pass ***", Scrub(params, "user alice pass s3cr3t"))
	assert.Equal(t, "nothing here", Scrub(nil, "nothing here"))
}

// timeoutDevice fails every command the way ADB does when its timeout expires.
type timeoutDevice struct {
	*devicetest.Fake
}

func (d *timeoutDevice) Execute(ctx context.Context, command string, timeout time.Duration) (string, error) {
	return "", failure.Wrapf(failure.DeviceIO, errors.Wrapf(context.DeadlineExceeded, "after %v", timeout), "adb shell %s", command)
}
