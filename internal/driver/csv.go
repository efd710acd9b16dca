// Package driver runs the per-worker event loop that draws an operation
// kind from a weighted.Source, dispatches it to ops.Handlers, and folds
// the result into fsstats.Counters — spec.md §4.7.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/distr1/fsdrift/internal/ops"
)

// csvWriters owns a worker's optional response-time and bandwidth CSV
// sinks. Either may be nil when its directory was not configured. Rows
// are flushed to disk after every append (spec.md §5's resource
// discipline note) rather than holding the file open across the whole
// run, which bounds this worker's contribution to the process's open-FD
// count to whatever a single write call needs.
type csvWriters struct {
	rspPath string
	bwPath  string
}

// newCSVWriters builds the filenames spec.md §6 prescribes:
// fs-drift_<start_epoch>_<pid>_<worker>_th_{rspt,bw}.csv. Either path is
// empty when its directory is unconfigured.
func newCSVWriters(rspDir, bwDir string, startEpoch int64, worker int) *csvWriters {
	name := fmt.Sprintf("fs-drift_%d_%d_%d_th", startEpoch, os.Getpid(), worker)
	w := &csvWriters{}
	if rspDir != "" {
		w.rspPath = filepath.Join(rspDir, name+"_rspt.csv")
	}
	if bwDir != "" {
		w.bwPath = filepath.Join(bwDir, name+"_bw.csv")
	}
	return w
}

func (w *csvWriters) appendRow(path, row string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeRow(f, row)
}

// writeRow writes row to sink. Split out from appendRow so tests can
// substitute an in-memory io.Writer (github.com/orcaman/writerseeker) for
// the real per-call file open/close.
func writeRow(sink io.Writer, row string) error {
	_, err := io.WriteString(sink, row)
	return err
}

// rspRow formats a response-time CSV row per spec.md §6:
// <seconds_since_start>,<op_precise_time_seconds>,<op_name>.
func rspRow(r ops.Result) string {
	return fmt.Sprintf("%f,%f,%s\n", r.TimeBefore, r.PreciseTime.Seconds(), r.Kind)
}

// bwRow formats a bandwidth CSV row per spec.md §6:
// <seconds_since_start>,<kb_per_second>,<op_name>. Callers must only
// call this when r.SizeBytes > 0, per the spec's "emitted only when
// size>0" rule.
func bwRow(r ops.Result) string {
	kbPerSec := (float64(r.SizeBytes) / 1024) / r.PreciseTime.Seconds()
	return fmt.Sprintf("%f,%f,%s\n", r.TimeBefore, kbPerSec, r.Kind)
}

// recordResult appends a response-time row, and a bandwidth row if the
// operation moved any bytes, per spec.md §6's CSV formats.
func (w *csvWriters) recordResult(r ops.Result) error {
	if err := w.appendRow(w.rspPath, rspRow(r)); err != nil {
		return err
	}
	if r.SizeBytes > 0 && r.PreciseTime > 0 {
		if err := w.appendRow(w.bwPath, bwRow(r)); err != nil {
			return err
		}
	}
	return nil
}
