package practice

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/conorfennell/vocabdrill/internal/domain"
	"github.com/conorfennell/vocabdrill/internal/scheduler"
	"github.com/conorfennell/vocabdrill/internal/session"
)

// Summary describes one day's practice.
type Summary struct {
	Drawn   bool
	Batches int
	Retired int
}

// NewSessionID returns a fresh id grouping the review logs of one run.
func NewSessionID() string {
	return uuid.NewString()
}

// Options controls a practice run.
type Options struct {
	// NoNewBatch skips drawing a fresh batch from the word book.
	NoNewBatch bool
}

// Run draws today's new batch, then drills every due batch newest first and
// reschedules each one as soon as it is mastered. A batch that fails midway is
// left as it was; batches completed before it stay completed.
func Run(sched *scheduler.Scheduler, runner *session.Runner, p session.Presenter, opts Options) (Summary, error) {
	var summary Summary

	if !opts.NoNewBatch {
		batch, err := sched.EnsureNewBatch()
		switch {
		case errors.Is(err, scheduler.ErrOutOfWords):
			slog.Warn("No new batch drawn", "error", err)
		case err != nil:
			return summary, fmt.Errorf("failed to draw new batch: %w", err)
		default:
			summary.Drawn = true
			slog.Info("New batch ready", "batch", batch.ID, "items", len(batch.ItemIDs))
		}
	}

	for batch, err := range sched.DueBatches() {
		if err != nil {
			return summary, err
		}
		p.Announce(fmt.Sprintf("Today's practice: Batch %d", summary.Batches+1))

		retired, err := drill(sched, runner, batch)
		if err != nil {
			return summary, fmt.Errorf("batch %d: %w", batch.ID, err)
		}
		summary.Batches++
		if retired {
			summary.Retired++
		}
	}

	p.Announce("Today's practice complete! Good job!")
	slog.Info("Practice complete", "batches", summary.Batches, "retired", summary.Retired, "drawn", summary.Drawn)
	return summary, nil
}

func drill(sched *scheduler.Scheduler, runner *session.Runner, batch domain.Batch) (bool, error) {
	items, err := sched.Items(batch)
	if err != nil {
		return false, err
	}
	if err := runner.RunBatch(items); err != nil {
		return false, err
	}
	return sched.Complete(batch)
}
