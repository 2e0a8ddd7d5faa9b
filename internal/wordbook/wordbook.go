package wordbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/vocabdrill/internal/domain"
)

const (
	baseWordColumn      = "base_word"
	targetWordColumn    = "target_word"
	targetExampleColumn = "target_example"
	baseExampleColumn   = "base_example"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("wordbook: missing column")
	// ErrEmptyWord is returned when a row leaves a required column blank.
	ErrEmptyWord = errors.New("wordbook: empty word")
)

// Row is one entry of a word book.
type Row struct {
	BaseWord      string
	TargetWord    string
	TargetExample string
	BaseExample   string
}

// Item converts the row at the given offset into a vocabulary item.
func (r Row) Item(offset int) domain.Item {
	return domain.Item{
		ID:            int64(offset),
		BaseWord:      r.BaseWord,
		TargetWord:    r.TargetWord,
		BaseExample:   r.BaseExample,
		TargetExample: r.TargetExample,
	}
}

// ReadFile reads a word book from the given path.
func ReadFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

// Read parses a CSV word book. The first record is a header naming the
// columns; only base_word and target_word are required and extra columns are
// ignored. Every row must fill in both words. Rows keep the order in which
// they appear.
func Read(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[strings.ToLower(name)] = i
	}
	for _, required := range []string{baseWordColumn, targetWordColumn} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		row := Row{
			BaseWord:      field(record, baseWordColumn),
			TargetWord:    field(record, targetWordColumn),
			TargetExample: field(record, targetExampleColumn),
			BaseExample:   field(record, baseExampleColumn),
		}
		if row.BaseWord == "" {
			return nil, fmt.Errorf("%w: row %d has no %s", ErrEmptyWord, len(rows)+1, baseWordColumn)
		}
		if row.TargetWord == "" {
			return nil, fmt.Errorf("%w: row %d has no %s", ErrEmptyWord, len(rows)+1, targetWordColumn)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Source supplies the rows of a word book.
type Source interface {
	Rows() ([]Row, error)
}

// File is a Source backed by a CSV file on disk. The file is re-read on every
// call, so the rows reflect its current contents.
type File string

// Rows reads the word book file.
func (f File) Rows() ([]Row, error) {
	return ReadFile(string(f))
}
