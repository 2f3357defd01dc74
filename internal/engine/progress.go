package engine

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/ivlev/librarycard/internal/logging"
	"github.com/ivlev/librarycard/internal/plan"
)

const progressInterval = 20

type reporter interface {
	Frame(index, total int)
	Finish(ok bool)
}

func (p *Pipeline) reporter(logger *slog.Logger, job plan.Job, total int) reporter {
	if p.Progress != nil && logging.IsTerminal(p.Progress) {
		return newBarReporter(p.Progress, fmt.Sprintf("%s / %s", job.Library, job.Animation), total)
	}
	return &logReporter{logger: logger, sampler: logging.NewProgressSampler(progressInterval)}
}

type logReporter struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

func (r *logReporter) Frame(index, total int) {
	if !r.sampler.ShouldLog(index, total) {
		return
	}
	r.logger.Info("frame",
		slog.Int("frame", index+1),
		slog.Int("total", total),
		slog.String("progress", fmt.Sprintf("%.0f%%", 100*float64(index+1)/float64(max(total, 1)))))
}

func (r *logReporter) Finish(bool) {}

type barReporter struct {
	pw      progress.Writer
	tracker *progress.Tracker
}

func newBarReporter(w io.Writer, message string, total int) *barReporter {
	pw := progress.NewWriter()
	pw.SetOutputWriter(w)
	pw.SetAutoStop(true)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)

	tracker := &progress.Tracker{Message: message, Total: int64(total), Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)
	go pw.Render()
	return &barReporter{pw: pw, tracker: tracker}
}

func (r *barReporter) Frame(int, int) { r.tracker.Increment(1) }

func (r *barReporter) Finish(ok bool) {
	if ok {
		r.tracker.MarkAsDone()
	} else {
		r.tracker.MarkAsErrored()
	}
	for r.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
