package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/vocabdrill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.Local)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testItems(start, n int) []domain.Item {
	items := make([]domain.Item, n)
	for i := range items {
		id := int64(start + i)
		items[i] = domain.Item{
			ID:            id,
			BaseWord:      "hello",
			TargetWord:    "hai",
			BaseExample:   "Good morning!",
			TargetExample: "Selamat pagi!",
		}
	}
	return items
}

func TestInsertAndFetchItems(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.InsertBatchItems(testItems(0, 3)))

	items, err := db.FetchItems([]int64{2, 0, 1})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(0), items[0].ID)
	assert.Equal(t, "Selamat pagi!", items[2].TargetExample)

	t.Run("duplicate ids roll back the whole insert", func(t *testing.T) {
		err := db.InsertBatchItems(append(testItems(10, 2), testItems(0, 1)...))
		assert.ErrorIs(t, err, ErrStore)

		items, err := db.FetchItems([]int64{10, 11})
		assert.ErrorIs(t, err, ErrPartialFetch)
		assert.Empty(t, items)
	})

	t.Run("missing ids are reported", func(t *testing.T) {
		items, err := db.FetchItems([]int64{1, 99})
		require.ErrorIs(t, err, ErrPartialFetch)

		var partial *PartialFetchError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, []int64{99}, partial.Missing)
		require.Len(t, items, 1)
		assert.Equal(t, int64(1), items[0].ID)
	})

	t.Run("no ids", func(t *testing.T) {
		items, err := db.FetchItems(nil)
		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestCreateBatch(t *testing.T) {
	db := openTestDB(t)

	batch, err := db.CreateBatch([]int64{0, 1, 2}, today)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, batch.ItemIDs)

	stored, err := db.FindBatchByID(batch.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 0, stored.Round)
	assert.True(t, stored.LastPracticed.IsZero())
	assert.True(t, stored.DueDate.Equal(today))
	assert.Equal(t, []int64{0, 1, 2}, stored.ItemIDs)

	missing, err := db.FindBatchByID(batch.ID + 100)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDueBatches(t *testing.T) {
	db := openTestDB(t)

	first, err := db.CreateBatch([]int64{0}, today)
	require.NoError(t, err)
	second, err := db.CreateBatch([]int64{1}, today.AddDate(0, 0, -3))
	require.NoError(t, err)
	_, err = db.CreateBatch([]int64{2}, today.AddDate(0, 0, 1))
	require.NoError(t, err)

	due, err := db.DueBatches(today)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, second.ID, due[0].ID, "newest batch comes first")
	assert.Equal(t, first.ID, due[1].ID)

	again, err := db.DueBatches(today)
	require.NoError(t, err)
	assert.Equal(t, due, again)

	all, err := db.AllBatches()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAdvanceOrRetire(t *testing.T) {
	intervals := []int{0, 1, 2, 3, 2, 1, 4}
	nextDue := func(round int) time.Time { return today.AddDate(0, 0, intervals[round]) }

	t.Run("due date follows the completed round", func(t *testing.T) {
		db := openTestDB(t)
		batch, err := db.CreateBatch([]int64{0}, today)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			retired, err := db.AdvanceOrRetire(batch.ID, len(intervals)-1, nextDue, today)
			require.NoError(t, err)
			require.False(t, retired)
		}

		stored, err := db.FindBatchByID(batch.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Round)
		assert.True(t, stored.LastPracticed.Equal(today))
		assert.True(t, stored.DueDate.Equal(today.AddDate(0, 0, intervals[2])))
	})

	t.Run("retired on the seventh advance", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.InsertBatchItems(testItems(0, 2)))
		batch, err := db.CreateBatch([]int64{0, 1}, today)
		require.NoError(t, err)

		for i := 1; i <= len(intervals); i++ {
			retired, err := db.AdvanceOrRetire(batch.ID, len(intervals)-1, nextDue, today)
			require.NoError(t, err)
			assert.Equal(t, i == len(intervals), retired, "advance %d", i)
		}

		stored, err := db.FindBatchByID(batch.ID)
		require.NoError(t, err)
		assert.Nil(t, stored)

		items, err := db.FetchItems([]int64{0, 1})
		assert.ErrorIs(t, err, ErrPartialFetch)
		assert.Empty(t, items)

		_, err = db.AdvanceOrRetire(batch.ID, len(intervals)-1, nextDue, today)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCursor(t *testing.T) {
	db := openTestDB(t)

	n, err := db.Cursor()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, db.SeedCursor(20))
	require.NoError(t, db.SeedCursor(40))
	n, err = db.Cursor()
	require.NoError(t, err)
	assert.Equal(t, 20, n, "seeding is a no-op once a cursor exists")

	batch, err := db.DrawBatch(testItems(20, 5), 25, today)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 21, 22, 23, 24}, batch.ItemIDs)

	n, err = db.Cursor()
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func TestDrawBatchIsAtomic(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.InsertBatchItems(testItems(3, 1)))

	_, err := db.DrawBatch(testItems(0, 5), 5, today)
	require.ErrorIs(t, err, ErrStore)

	n, err := db.Cursor()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	batches, err := db.AllBatches()
	require.NoError(t, err)
	assert.Empty(t, batches)

	items, err := db.FetchItems([]int64{0, 1, 2})
	assert.ErrorIs(t, err, ErrPartialFetch)
	assert.Empty(t, items)
}

func TestRecordReview(t *testing.T) {
	db := openTestDB(t)

	logs := []domain.ReviewLog{
		{SessionID: "a", ItemID: 0, Answer: "hai", Correct: true, Timestamp: time.Now()},
		{SessionID: "a", ItemID: 1, Answer: "", Correct: false, Timestamp: time.Now()},
		{SessionID: "b", ItemID: 1, Answer: "kasih", Correct: true, Timestamp: time.Now()},
	}
	for _, log := range logs {
		require.NoError(t, db.RecordReview(log))
	}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, ReviewStats{Attempts: 3, Correct: 2, Sessions: 2}, stats)
}
