package storage

const schema = `
-- The 'items' table stores vocabulary entries drawn from the word book.
-- The id is the entry's row offset in the word book.
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY,
    base_word TEXT NOT NULL,
    target_word TEXT NOT NULL,
    target_example TEXT,
    base_example TEXT
);

-- The 'batches' table groups items reviewed on the same schedule.
CREATE TABLE IF NOT EXISTS batches (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    items TEXT NOT NULL, -- JSON array of item ids
    round INTEGER NOT NULL DEFAULT 0,
    last_practiced TEXT, -- YYYY-MM-DD
    due_date TEXT NOT NULL -- YYYY-MM-DD
);

CREATE INDEX IF NOT EXISTS batches_due_date ON batches (due_date);

-- The 'progress' table holds a single row: how far into the word book batches have been drawn.
CREATE TABLE IF NOT EXISTS progress (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    current_index INTEGER NOT NULL
);

-- The 'review_log' table records every answered prompt.
CREATE TABLE IF NOT EXISTS review_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    item_id INTEGER NOT NULL,
    answer TEXT NOT NULL,
    correct INTEGER NOT NULL,
    reviewed_at DATETIME NOT NULL
);
`
