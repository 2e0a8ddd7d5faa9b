package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/vocabdrill/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// dateLayout is how calendar days are stored in the batches table.
const dateLayout = "2006-01-02"

var (
	// ErrStore wraps every failure of the underlying database.
	ErrStore = errors.New("storage: i/o failure")
	// ErrNotFound is returned when a batch referenced by id no longer exists.
	ErrNotFound = errors.New("storage: batch not found")
	// ErrPartialFetch reports that some requested items do not exist.
	ErrPartialFetch = errors.New("storage: partial fetch")
)

// PartialFetchError lists the item ids FetchItems could not find.
// It matches ErrPartialFetch with errors.Is.
type PartialFetchError struct {
	Missing []int64
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("storage: %d requested item(s) not found: %v", len(e.Missing), e.Missing)
}

func (e *PartialFetchError) Is(target error) bool {
	return target == ErrPartialFetch
}

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrStore, err)
	}

	// A single connection serialises every statement and transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrStore, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to apply schema: %w", ErrStore, err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// withTx runs fn inside a transaction, committing only if fn succeeds.
func (db *DB) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrStore, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrStore, err)
	}
	return nil
}

// InsertBatchItems inserts all items in a single transaction.
func (db *DB) InsertBatchItems(items []domain.Item) error {
	return db.withTx(func(tx *sql.Tx) error {
		return insertItems(tx, items)
	})
}

func insertItems(q querier, items []domain.Item) error {
	for _, item := range items {
		_, err := q.Exec(`
			INSERT INTO items (id, base_word, target_word, target_example, base_example)
			VALUES (?, ?, ?, ?, ?)
		`,
			item.ID,
			item.BaseWord,
			item.TargetWord,
			item.TargetExample,
			item.BaseExample,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert item %d: %w", ErrStore, item.ID, err)
		}
	}
	return nil
}

// FetchItems retrieves items by id, ordered by id.
// Ids with no stored item are reported through a *PartialFetchError returned
// together with the items that were found.
func (db *DB) FetchItems(ids []int64) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idList, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item ids: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT id, base_word, target_word, COALESCE(target_example, ''), COALESCE(base_example, '')
		FROM items
		WHERE id IN (SELECT value FROM json_each(?))
		ORDER BY id
	`, string(idList))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch items: %w", ErrStore, err)
	}
	defer rows.Close()

	var items []domain.Item
	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(
			&item.ID,
			&item.BaseWord,
			&item.TargetWord,
			&item.TargetExample,
			&item.BaseExample,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan item row: %w", ErrStore, err)
		}
		items = append(items, item)
		found[item.ID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to fetch items: %w", ErrStore, err)
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return items, &PartialFetchError{Missing: missing}
	}
	return items, nil
}

// CreateBatch creates a batch in round 0 that is due today.
func (db *DB) CreateBatch(itemIDs []int64, today time.Time) (domain.Batch, error) {
	var batch domain.Batch
	err := db.withTx(func(tx *sql.Tx) error {
		var err error
		batch, err = insertBatch(tx, itemIDs, today)
		return err
	})
	return batch, err
}

func insertBatch(q querier, itemIDs []int64, today time.Time) (domain.Batch, error) {
	idList, err := json.Marshal(itemIDs)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to encode item ids: %w", err)
	}
	res, err := q.Exec(`
		INSERT INTO batches (items, round, last_practiced, due_date)
		VALUES (?, 0, NULL, ?)
	`, string(idList), today.Format(dateLayout))
	if err != nil {
		return domain.Batch{}, fmt.Errorf("%w: failed to insert batch: %w", ErrStore, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Batch{}, fmt.Errorf("%w: failed to get last insert ID for batch: %w", ErrStore, err)
	}
	return domain.Batch{
		ID:      id,
		ItemIDs: append([]int64(nil), itemIDs...),
		DueDate: today,
	}, nil
}

// DrawBatch stores newly drawn items, a batch referencing them and the
// advanced word-book cursor in one transaction.
func (db *DB) DrawBatch(items []domain.Item, nextIndex int, today time.Time) (domain.Batch, error) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var batch domain.Batch
	err := db.withTx(func(tx *sql.Tx) error {
		if err := insertItems(tx, items); err != nil {
			return err
		}
		var err error
		if batch, err = insertBatch(tx, ids, today); err != nil {
			return err
		}
		return setCursor(tx, nextIndex)
	})
	return batch, err
}

// DueBatches retrieves every batch due on or before today, newest first.
func (db *DB) DueBatches(today time.Time) ([]domain.Batch, error) {
	return db.queryBatches(`
		SELECT id, items, round, last_practiced, due_date
		FROM batches
		WHERE due_date <= ?
		ORDER BY id DESC
	`, today.Format(dateLayout))
}

// AllBatches retrieves every stored batch, soonest due first.
func (db *DB) AllBatches() ([]domain.Batch, error) {
	return db.queryBatches(`
		SELECT id, items, round, last_practiced, due_date
		FROM batches
		ORDER BY due_date, id
	`)
}

// FindBatchByID retrieves a batch by its id. It returns nil if there is none.
func (db *DB) FindBatchByID(id int64) (*domain.Batch, error) {
	row := db.conn.QueryRow(`
		SELECT id, items, round, last_practiced, due_date
		FROM batches WHERE id = ?
	`, id)
	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Batch not found
		}
		return nil, fmt.Errorf("%w: failed to find batch %d: %w", ErrStore, id, err)
	}
	return &batch, nil
}

func (db *DB) queryBatches(query string, args ...any) ([]domain.Batch, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query batches: %w", ErrStore, err)
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan batch row: %w", ErrStore, err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to query batches: %w", ErrStore, err)
	}
	return batches, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (domain.Batch, error) {
	var (
		b             domain.Batch
		idList        string
		lastPracticed sql.NullString
		dueDate       string
	)
	if err := row.Scan(&b.ID, &idList, &b.Round, &lastPracticed, &dueDate); err != nil {
		return domain.Batch{}, err
	}
	if err := json.Unmarshal([]byte(idList), &b.ItemIDs); err != nil {
		return domain.Batch{}, fmt.Errorf("batch %d has malformed item list %q: %w", b.ID, idList, err)
	}
	due, err := time.ParseInLocation(dateLayout, dueDate, time.Local)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("batch %d has malformed due date %q: %w", b.ID, dueDate, err)
	}
	b.DueDate = due
	if lastPracticed.Valid {
		last, err := time.ParseInLocation(dateLayout, lastPracticed.String, time.Local)
		if err != nil {
			return domain.Batch{}, fmt.Errorf("batch %d has malformed practice date %q: %w", b.ID, lastPracticed.String, err)
		}
		b.LastPracticed = last
	}
	return b, nil
}

// AdvanceOrRetire records a completed round of a batch. A batch already at
// maxRound is deleted together with its items and retired is true. Otherwise
// its round is incremented, it is marked practised today and it becomes due
// on nextDue(previous round).
func (db *DB) AdvanceOrRetire(batchID int64, maxRound int, nextDue func(round int) time.Time, today time.Time) (retired bool, err error) {
	err = db.withTx(func(tx *sql.Tx) error {
		var (
			round  int
			idList string
		)
		err := tx.QueryRow(`SELECT round, items FROM batches WHERE id = ?`, batchID).Scan(&round, &idList)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %d", ErrNotFound, batchID)
			}
			return fmt.Errorf("%w: failed to read batch %d: %w", ErrStore, batchID, err)
		}

		if round >= maxRound {
			if _, err := tx.Exec(`DELETE FROM batches WHERE id = ?`, batchID); err != nil {
				return fmt.Errorf("%w: failed to delete batch %d: %w", ErrStore, batchID, err)
			}
			if _, err := tx.Exec(`DELETE FROM items WHERE id IN (SELECT value FROM json_each(?))`, idList); err != nil {
				return fmt.Errorf("%w: failed to delete items of batch %d: %w", ErrStore, batchID, err)
			}
			retired = true
			return nil
		}

		due := nextDue(round)
		_, err = tx.Exec(`
			UPDATE batches
			SET round = round + 1, last_practiced = ?, due_date = ?
			WHERE id = ?
		`, today.Format(dateLayout), due.Format(dateLayout), batchID)
		if err != nil {
			return fmt.Errorf("%w: failed to advance batch %d: %w", ErrStore, batchID, err)
		}
		return nil
	})
	return retired, err
}

// Cursor returns how many word-book rows have been drawn into batches.
func (db *DB) Cursor() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT current_index FROM progress WHERE id = 1`).Scan(&n)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: failed to read progress cursor: %w", ErrStore, err)
	}
	return n, nil
}

// SeedCursor sets the cursor only if the profile has none yet.
func (db *DB) SeedCursor(n int) error {
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO progress (id, current_index) VALUES (1, ?)`, n)
	if err != nil {
		return fmt.Errorf("%w: failed to seed progress cursor: %w", ErrStore, err)
	}
	return nil
}

func setCursor(q querier, n int) error {
	_, err := q.Exec(`
		INSERT INTO progress (id, current_index) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET current_index = excluded.current_index
	`, n)
	if err != nil {
		return fmt.Errorf("%w: failed to update progress cursor: %w", ErrStore, err)
	}
	return nil
}

// RecordReview appends an answered prompt to the review log.
func (db *DB) RecordReview(log domain.ReviewLog) error {
	_, err := db.conn.Exec(`
		INSERT INTO review_log (session_id, item_id, answer, correct, reviewed_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		log.SessionID,
		log.ItemID,
		log.Answer,
		log.Correct,
		log.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to record review of item %d: %w", ErrStore, log.ItemID, err)
	}
	return nil
}

// ReviewStats summarises the review log.
type ReviewStats struct {
	Attempts int
	Correct  int
	Sessions int
}

// Stats counts logged answers across all sessions.
func (db *DB) Stats() (ReviewStats, error) {
	var s ReviewStats
	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(correct), 0), COUNT(DISTINCT session_id)
		FROM review_log
	`).Scan(&s.Attempts, &s.Correct, &s.Sessions)
	if err != nil {
		return ReviewStats{}, fmt.Errorf("%w: failed to read review stats: %w", ErrStore, err)
	}
	return s, nil
}
