package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/uxperf/internal/failure"
)

const agenda = `
device:
  serial: emulator-5554
dependencies_dir: /srv/deps
settle_delay: 2s
workloads:
  - name: youtube
    params:
      video_source: search
      search_term: cats
  - name: skype
    iterations: 3
    params:
      login_name: alice
      login_pass: ${SKYPE_PASS}
      duration: 30
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad(t *testing.T) {
	p := writeFile(t, t.TempDir(), "agenda.yaml", agenda)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "emulator-5554", cfg.Device.Serial)
	assert.Equal(t, "adb", cfg.Device.ADBPath, "unset fields keep defaults")
	assert.Equal(t, "/sdcard/wa-working", cfg.Device.WorkingDirectory)
	assert.Equal(t, "/srv/deps", cfg.DependenciesDir)
	assert.Equal(t, "results", cfg.OutputDir)
	assert.Equal(t, 2*time.Second, cfg.SettleDelay)

	require.Len(t, cfg.Workloads, 2)
	assert.Equal(t, 1, cfg.Workloads[0].Iterations)
	assert.Equal(t, 3, cfg.Workloads[1].Iterations)
	assert.Equal(t, 30, cfg.Workloads[1].Params["duration"])
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadSearchesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "agenda.yaml", "output_dir: out\n")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read agenda")

	p := writeFile(t, t.TempDir(), "bad.yaml", "workloads: [name: {")
	_, err = Load(p)
	assert.ErrorContains(t, err, "failed to parse agenda")
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, "test.env", "SKYPE_PASS=hunter2\nUXPERF_OUTPUT_DIR=/tmp/from-dotenv\n")
	t.Setenv("UXPERF_ENV_FILE", envFile)
	t.Setenv("UXPERF_SERIAL", "R58M123")
	// Already set: the .env value must not win.
	t.Setenv("UXPERF_OUTPUT_DIR", "/tmp/from-env")
	t.Cleanup(func() { os.Unsetenv("SKYPE_PASS") })

	cfg, err := Load(writeFile(t, dir, "agenda.yaml", agenda))
	require.NoError(t, err)
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, "R58M123", cfg.Device.Serial)
	assert.Equal(t, "/tmp/from-env", cfg.OutputDir)
	assert.Equal(t, "hunter2", cfg.Workloads[1].Params["login_pass"])
	assert.Equal(t, "alice", cfg.Workloads[1].Params["login_name"])
}

func TestApplyEnvMissingExplicitFile(t *testing.T) {
	t.Setenv("UXPERF_ENV_FILE", filepath.Join(t.TempDir(), "nope.env"))
	err := ApplyEnv(DefaultConfig())
	assert.ErrorContains(t, err, "failed to load env file")
}

func TestExpand(t *testing.T) {
	t.Setenv("UXPERF_TEST_USER", "bob")
	assert.Equal(t, "bob@example.com", Expand("${UXPERF_TEST_USER}@example.com"))
	assert.Equal(t, "pa$word", Expand("pa$word"), "bare $ is left alone")
	assert.Equal(t, "", Expand("${UXPERF_TEST_UNSET_VAR}"))
}

func TestValidate(t *testing.T) {
	known := []string{"skype", "youtube"}
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"unknown workload", func(c *Config) { c.Workloads[0].Name = "tetris" }, `unknown workload "tetris"`},
		{"iterations", func(c *Config) { c.Workloads[1].Iterations = -1 }, "iterations must be at least 1"},
		{"output dir", func(c *Config) { c.OutputDir = "" }, "output_dir must not be empty"},
		{"settle delay", func(c *Config) { c.SettleDelay = -time.Second }, "settle_delay"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Workloads = []WorkloadSpec{{Name: "youtube", Iterations: 1}, {Name: "skype", Iterations: 2}}
			tc.mutate(cfg)
			err := cfg.Validate(known)
			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.Configuration))
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
