/*
PURPOSE:
  Parses the instrumentation log written by the on-device UI automation
  into timing records.

REQUIREMENTS:
  User-specified:
  - One record candidate per line: NAME START FINISH DURATION, anywhere in the line.
  - Each matching line yields exactly three records (start, finish, duration), unit ms.

  Implementation-discovered:
  - Logs interleave unrelated diagnostic lines; those are skipped, not errors.
  - Values are epoch milliseconds, so they need 64 bits.

ARCHITECTURE INTEGRATION:
  - Called by: internal/workload (CollectResults)
  - Dependencies: none

ERROR HANDLING:
  - Parse never fails. A line whose numbers overflow int64 is skipped whole.
  - ParseReader only returns read errors.

IMPLEMENTATION RULES:
  - No state across lines.
  - Parse is lazy and restartable; ranging twice yields the same records.

USAGE:
  for rec := range metrics.Parse(text) { sink.AddMetric(rec.MetricName(), rec.Value, rec.Unit) }

SELF-HEALING INSTRUCTIONS:
  - If the automation changes its output format, update Pattern and the tests together.

RELATED FILES:
  - internal/workload/runner.go

MAINTENANCE:
  - The format is fixed on purpose; do not add alternate patterns here.
*/

package metrics

import (
	"bufio"
	"io"
	"iter"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the unit of every parsed value.
const Unit = "ms"

// Phase is which of the three timing columns a record came from.
type Phase string

const (
	Start    Phase = "start"
	Finish   Phase = "finish"
	Duration Phase = "duration"
)

// Pattern matches a timing line: a name followed by three integers.
var Pattern = regexp.MustCompile(`(\w+)\s+(\d+)\s+(\d+)\s+(\d+)`)

// Record is one timing value parsed from the log.
type Record struct {
	Name  string
	Phase Phase
	Value int64
	Unit  string
}

// MetricName returns the name the record is reported under, e.g. "open_file_start".
func (r Record) MetricName() string {
	return r.Name + "_" + string(r.Phase)
}

// ParseLine returns the three records for line, or nil if the line does not match.
func ParseLine(line string) []Record {
	m := Pattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var vals [3]int64
	for i := range vals {
		v, err := strconv.ParseInt(m[i+2], 10, 64)
		if err != nil {
			return nil
		}
		vals[i] = v
	}
	return []Record{
		{Name: m[1], Phase: Start, Value: vals[0], Unit: Unit},
		{Name: m[1], Phase: Finish, Value: vals[1], Unit: Unit},
		{Name: m[1], Phase: Duration, Value: vals[2], Unit: Unit},
	}
}

// Parse returns the records in text in line order.
func Parse(text string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for line := range strings.Lines(text) {
			for _, r := range ParseLine(line) {
				if !yield(r) {
					return
				}
			}
		}
	}
}

// ParseReader reads r to EOF and returns its records.
func ParseReader(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		out = append(out, ParseLine(sc.Text())...)
	}
	return out, sc.Err()
}

// ParseFile parses the log at path.
func ParseFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(f)
}
