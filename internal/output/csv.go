/*
PURPOSE:
  Writes workload metrics to a CSV file, one row per metric.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV.

  Implementation-discovered:
  - A run produces a variable number of metrics, so rows are per metric,
    keyed by run id, workload and iteration.
  - Failed runs with no metrics still get one row so the failure is visible.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Mutex-guarded; callers may share one writer.

USAGE:
  w, err := output.NewCSVWriter("results.csv")
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Result struct changes.
*/

package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"github.com/daryltucker/uxperf/internal/model"
)

var csvHeader = []string{
	"run_id", "workload", "iteration", "device", "timestamp", "status",
	"metric", "value", "unit", "error_kind", "error",
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes the metrics of a single result to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	row := func(m model.Metric, value string) []string {
		return []string{
			r.RunID,
			r.Workload,
			strconv.Itoa(r.Iteration),
			r.Device,
			r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			r.Status,
			m.Name,
			value,
			m.Unit,
			r.ErrorKind,
			r.Error,
		}
	}

	if len(r.Metrics) == 0 {
		if err := cw.writer.Write(row(model.Metric{}, "")); err != nil {
			return err
		}
	}
	for _, m := range r.Metrics {
		if err := cw.writer.Write(row(m, strconv.FormatInt(m.Value, 10))); err != nil {
			return err
		}
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
