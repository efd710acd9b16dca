package fsstats

import (
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/distr1/fsdrift/internal/weighted"
)

// Reporter prints periodic and final snapshots of Counters. On a real
// terminal it refreshes a fixed block of lines in place, the same way
// the teacher's batch scheduler redraws its status lines; piped to a
// file or log collector it just appends each snapshot, since cursor
// control sequences would otherwise corrupt the output.
type Reporter struct {
	w          io.Writer
	interactive bool
	lines      int
	startTime  time.Time
	short      bool
}

// NewReporter builds a Reporter writing to w. isatty.IsTerminal(fd) gates
// whether snapshots are drawn in place or simply appended.
func NewReporter(w io.Writer, fd uintptr, short bool, startTime time.Time) *Reporter {
	return &Reporter{
		w:           w,
		interactive: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		short:       short,
		startTime:   startTime,
	}
}

// Report prints one snapshot of c. lastCenter is the most recent gaussian
// center (0 under uniform distribution), shown as a diagnostic.
func (r *Reporter) Report(c *Counters, lastCenter float64) {
	var lines []string
	elapsed := time.Since(r.startTime).Seconds()
	lines = append(lines, fmt.Sprintf("elapsed time: %9.1f", elapsed))
	lines = append(lines, fmt.Sprintf("%9.0f = center", lastCenter))
	lines = append(lines, fmt.Sprintf("%9d = files created", c.Completions(weighted.Create)))
	lines = append(lines, fmt.Sprintf("%9d = files appended to", c.Completions(weighted.Append)))
	lines = append(lines, fmt.Sprintf("%9d = files randomly written", c.Completions(weighted.RandomWrite)))
	lines = append(lines, fmt.Sprintf("%9d = files read", c.Completions(weighted.Read)))
	lines = append(lines, fmt.Sprintf("%9d = files randomly read", c.Completions(weighted.RandomRead)))

	if !r.short {
		lines = append(lines, fmt.Sprintf("%9d = files truncated", c.Completions(weighted.Truncate)))
		lines = append(lines, fmt.Sprintf("%9d = files deleted", c.Completions(weighted.Delete)))
		lines = append(lines, fmt.Sprintf("%9d = files renamed", c.Completions(weighted.Rename)))
		lines = append(lines, fmt.Sprintf("%9d = softlinks created", c.Completions(weighted.Link)))
		lines = append(lines, fmt.Sprintf("%9d = hardlinks created", c.Completions(weighted.Hardlink)))
		lines = append(lines, fmt.Sprintf("%9d = read bytes", c.ReadBytes.Load()))
		lines = append(lines, fmt.Sprintf("%9d = write bytes", c.WriteBytes.Load()))
		lines = append(lines, fmt.Sprintf("%9d = random read bytes", c.RandReadBytes.Load()))
		lines = append(lines, fmt.Sprintf("%9d = random write bytes", c.RandWriteBytes.Load()))
		lines = append(lines, fmt.Sprintf("%9d = discard bytes", c.DiscardBytes.Load()))
		lines = append(lines, fmt.Sprintf("%9d = fdatasync calls", c.Fdatasyncs.Load()))
		lines = append(lines, fmt.Sprintf("%9d = fsync calls", c.Fsyncs.Load()))
		lines = append(lines, fmt.Sprintf("%9d = leaf directories created", c.DirsCreated.Load()))
		lines = append(lines, fmt.Sprintf("%9d = no create -- file already existed", c.EAlreadyExists.Load()))
		lines = append(lines, fmt.Sprintf("%9d = file not found", c.EFileNotFound.Load()))
		lines = append(lines, fmt.Sprintf("%9d = no directory space", c.ENoDirSpace.Load()))
		lines = append(lines, fmt.Sprintf("%9d = no space for new inode", c.ENoInodeSpace.Load()))
		lines = append(lines, fmt.Sprintf("%9d = no space for write data", c.ENoSpace.Load()))
	}
	lines = append(lines, fmt.Sprintf("%9d = total errors", c.TotalErrors.Load()))

	if r.interactive {
		r.refresh(lines)
		return
	}
	for _, line := range lines {
		fmt.Fprintln(r.w, line)
	}
}

func (r *Reporter) refresh(lines []string) {
	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	for _, line := range lines {
		if pad := maxLen - len(line); pad > 0 {
			line += spaces(pad)
		}
		fmt.Fprintln(r.w, line)
	}
	if r.lines > 0 {
		fmt.Fprintf(r.w, "\033[%dA", r.lines)
	}
	r.lines = len(lines)
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
