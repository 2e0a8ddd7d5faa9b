package scheduler

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/conorfennell/vocabdrill/internal/domain"
	"github.com/conorfennell/vocabdrill/internal/interval"
	"github.com/conorfennell/vocabdrill/internal/storage"
	"github.com/conorfennell/vocabdrill/internal/wordbook"
)

// ErrOutOfWords is returned when the word book has fewer unread rows than a batch needs.
var ErrOutOfWords = errors.New("scheduler: out of words")

// Store is the persistence the scheduler needs.
type Store interface {
	Cursor() (int, error)
	DrawBatch(items []domain.Item, nextIndex int, today time.Time) (domain.Batch, error)
	DueBatches(today time.Time) ([]domain.Batch, error)
	FetchItems(ids []int64) ([]domain.Item, error)
	AdvanceOrRetire(batchID int64, maxRound int, nextDue func(round int) time.Time, today time.Time) (bool, error)
}

// Config holds the scheduling parameters of a profile.
type Config struct {
	BatchSize int
	Intervals interval.Table
	// Now defaults to time.Now.
	Now func() time.Time
}

// Scheduler moves batches through their review rounds. It keeps no copies of
// stored batches between calls.
type Scheduler struct {
	store     Store
	book      wordbook.Source
	batchSize int
	intervals interval.Table
	now       func() time.Time
}

// New creates a Scheduler drawing new batches from book.
func New(store Store, book wordbook.Source, cfg Config) (*Scheduler, error) {
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("scheduler: batch size %d must be positive", cfg.BatchSize)
	}
	if err := cfg.Intervals.Validate(); err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		store:     store,
		book:      book,
		batchSize: cfg.BatchSize,
		intervals: cfg.Intervals,
		now:       now,
	}, nil
}

// Today returns the current calendar day.
func (s *Scheduler) Today() time.Time {
	return interval.Day(s.now())
}

// EnsureNewBatch draws the next batch_size rows of the word book into a new
// batch due today and advances the progress cursor. Nothing is written when
// the word book runs out.
func (s *Scheduler) EnsureNewBatch() (domain.Batch, error) {
	cursor, err := s.store.Cursor()
	if err != nil {
		return domain.Batch{}, err
	}

	rows, err := s.book.Rows()
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to read word book: %w", err)
	}
	if cursor+s.batchSize > len(rows) {
		return domain.Batch{}, fmt.Errorf("%w: %d row(s) left after index %d, batch needs %d",
			ErrOutOfWords, max(len(rows)-cursor, 0), cursor, s.batchSize)
	}

	items := make([]domain.Item, 0, s.batchSize)
	for offset := cursor; offset < cursor+s.batchSize; offset++ {
		items = append(items, rows[offset].Item(offset))
	}

	batch, err := s.store.DrawBatch(items, cursor+s.batchSize, s.Today())
	if err != nil {
		return domain.Batch{}, err
	}
	slog.Info("Drew new batch", "batch", batch.ID, "from", cursor, "size", s.batchSize)
	return batch, nil
}

// DueBatches yields the newest due batch until none is left. The store is
// queried again before every yield, so the caller should Complete each batch
// before asking for the next one. A batch is yielded at most once per
// iteration even if completing it leaves it due today.
func (s *Scheduler) DueBatches() iter.Seq2[domain.Batch, error] {
	return func(yield func(domain.Batch, error) bool) {
		seen := make(map[int64]bool)
		for {
			due, err := s.store.DueBatches(s.Today())
			if err != nil {
				yield(domain.Batch{}, err)
				return
			}

			next, found := domain.Batch{}, false
			for _, batch := range due {
				if !seen[batch.ID] {
					next, found = batch, true
					break
				}
			}
			if !found {
				return
			}

			seen[next.ID] = true
			if !yield(next, nil) {
				return
			}
		}
	}
}

// Items fetches the items of a batch. Missing items are logged and skipped.
func (s *Scheduler) Items(batch domain.Batch) ([]domain.Item, error) {
	items, err := s.store.FetchItems(batch.ItemIDs)
	if errors.Is(err, storage.ErrPartialFetch) {
		slog.Warn("Batch references missing items", "batch", batch.ID, "error", err)
		return items, nil
	}
	return items, err
}

// Complete records that every item of the batch was answered correctly.
// It reports whether the batch was retired.
func (s *Scheduler) Complete(batch domain.Batch) (bool, error) {
	today := s.Today()
	nextDue := func(round int) time.Time {
		return s.intervals.NextDueDate(today, round)
	}
	retired, err := s.store.AdvanceOrRetire(batch.ID, s.intervals.MaxRound(), nextDue, today)
	if err != nil {
		return false, err
	}
	if retired {
		slog.Info("Batch retired", "batch", batch.ID)
	} else {
		slog.Info("Batch advanced", "batch", batch.ID, "round", batch.Round+1)
	}
	return retired, nil
}
