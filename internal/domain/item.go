package domain

import "time"

// Item is a single vocabulary entry drawn from the word book.
// Its ID is the absolute row offset of the entry in the word book.
type Item struct {
	ID            int64
	BaseWord      string
	TargetWord    string
	BaseExample   string
	TargetExample string
}

// Batch is a fixed group of items reviewed together on the same schedule.
type Batch struct {
	ID            int64
	ItemIDs       []int64
	Round         int
	LastPracticed time.Time // zero until the first completed round
	DueDate       time.Time
}

// IsDue reports whether the batch should be drilled on the given day.
func (b Batch) IsDue(today time.Time) bool {
	return !b.DueDate.After(today)
}

// ReviewLog records a single answered prompt.
type ReviewLog struct {
	SessionID string
	ItemID    int64
	Answer    string
	Correct   bool
	Timestamp time.Time
}
