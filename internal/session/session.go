// Package session drills the items of a batch until every one is answered
// correctly.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/conorfennell/vocabdrill/internal/compare"
	"github.com/conorfennell/vocabdrill/internal/domain"
)

// ErrPassLimit is returned when a batch is not mastered within Options.MaxPasses.
var ErrPassLimit = errors.New("session: pass limit reached")

// Presenter shows prompts to the learner and collects answers.
type Presenter interface {
	ShowWord(word string)
	ShowHint(hint string)
	ShowResult(correct bool, expected string)
	ShowExamples(target, base string)
	// ReadAnswer returns the raw answer, or "" at end of input.
	ReadAnswer() string
	// Announce shows a full-screen message and waits for the learner.
	Announce(text string)
	// Continue waits for the learner before moving on.
	Continue()
}

// Speaker reads text aloud.
type Speaker interface {
	Speak(text, voice string, speed int) error
}

// Recorder stores answered prompts.
type Recorder interface {
	RecordReview(log domain.ReviewLog) error
}

// Options configures a Runner.
type Options struct {
	Strategy   compare.Strategy
	ShowHint   bool
	Voice      string
	VoiceSpeed int
	// MaxPasses caps how many times the working set is drilled; 0 means no cap.
	MaxPasses int
	SessionID string
}

// Runner drives review passes over batches.
type Runner struct {
	presenter Presenter
	speaker   Speaker
	recorder  Recorder
	opts      Options
	rng       *rand.Rand
	now       func() time.Time
}

// NewRunner creates a Runner. speaker and recorder may be nil.
func NewRunner(p Presenter, speaker Speaker, recorder Recorder, opts Options) *Runner {
	return &Runner{
		presenter: p,
		speaker:   speaker,
		recorder:  recorder,
		opts:      opts,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:       time.Now,
	}
}

// WithRand replaces the shuffle source, for reproducible ordering.
func (r *Runner) WithRand(rng *rand.Rand) *Runner {
	r.rng = rng
	return r
}

// RunBatch drills items in shuffled passes. Each pass repeats only the items
// answered incorrectly in the previous one; the batch ends when a pass has no
// mistakes.
func (r *Runner) RunBatch(items []domain.Item) error {
	remaining := append([]domain.Item(nil), items...)
	for pass := 1; len(remaining) > 0; pass++ {
		if r.opts.MaxPasses > 0 && pass > r.opts.MaxPasses {
			return fmt.Errorf("%w: %d item(s) still wrong after %d pass(es)", ErrPassLimit, len(remaining), r.opts.MaxPasses)
		}

		r.rng.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})

		var incorrect []domain.Item
		for _, item := range remaining {
			correct, err := r.RunOne(item)
			if err != nil {
				return err
			}
			if !correct {
				incorrect = append(incorrect, item)
			}
		}
		slog.Debug("Pass finished", "pass", pass, "items", len(remaining), "incorrect", len(incorrect))
		remaining = incorrect
	}

	r.presenter.Announce("Congratulations!\nBatch complete!")
	return nil
}

// RunOne presents a single item and reports whether it was answered correctly.
func (r *Runner) RunOne(item domain.Item) (bool, error) {
	r.presenter.ShowWord(item.BaseWord)
	if r.opts.ShowHint {
		r.presenter.ShowHint(compare.Hint(item.TargetWord))
	}

	answer := r.presenter.ReadAnswer()
	correct, err := compare.Compare(answer, item.TargetWord, r.opts.Strategy)
	if err != nil {
		return false, err
	}
	r.presenter.ShowResult(correct, item.TargetWord)

	if r.recorder != nil {
		err := r.recorder.RecordReview(domain.ReviewLog{
			SessionID: r.opts.SessionID,
			ItemID:    item.ID,
			Answer:    answer,
			Correct:   correct,
			Timestamp: r.now(),
		})
		if err != nil {
			return false, err
		}
	}

	r.presenter.ShowExamples(item.TargetExample, item.BaseExample)
	if r.speaker != nil && item.TargetExample != "" {
		if err := r.speaker.Speak(item.TargetExample, r.opts.Voice, r.opts.VoiceSpeed); err != nil {
			slog.Warn("Failed to speak example", "item", item.ID, "error", err)
		}
	}
	r.presenter.Continue()

	return correct, nil
}
