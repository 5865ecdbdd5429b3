package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/uxperf/internal/model"
)

func sampleResult() model.Result {
	r := model.Result{
		RunID:     "run-1",
		Workload:  "excel",
		Iteration: 1,
		Device:    "emulator-5554",
		Timestamp: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
		Status:    model.StatusOK,
	}
	r.AddMetric("open_start", 10, "ms")
	r.AddMetric("open_finish", 20, "ms")
	return r
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Write(model.Result{
		RunID: "run-2", Workload: "skype", Iteration: 1, Status: model.StatusFailed,
		ErrorKind: "DeviceError", Error: "network is not connected",
	}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"run-1", "excel", "1", "emulator-5554", "2026-10-17T09:00:00Z", "ok", "open_start", "10", "ms", "", ""}, rows[1])
	assert.Equal(t, "open_finish", rows[2][6])
	assert.Equal(t, "failed", rows[3][5])
	assert.Equal(t, "", rows[3][6])
	assert.Equal(t, "DeviceError", rows[3][9])
}

func TestJSONWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")
	w, err := NewJSONWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleResult()))
	require.NoError(t, w.Write(model.Result{RunID: "run-2", Status: model.StatusFailed}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var got []model.Result
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r model.Result
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got = append(got, r)
	}
	require.Len(t, got, 2)
	assert.Len(t, got[0].Metrics, 2)
	assert.NotNil(t, got[1].Metrics)
	assert.Empty(t, got[1].Metrics)
}

func TestConfigure(t *testing.T) {
	defer SetLogger(Logger)

	var buf bytes.Buffer
	require.NoError(t, Configure(&buf, "debug", "json"))
	Logger.Debug("hello", "workload", "excel")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "excel", line["workload"])

	assert.Error(t, Configure(&buf, "loud", "text"))
	assert.Error(t, Configure(&buf, "info", "xml"))
}
