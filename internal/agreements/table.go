package agreements

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/transcript-transfer/internal/transcript"
)

// IndexThreshold is the table size from which Table.Match uses an index.
const IndexThreshold = 256

// Table is the immutable reference table of transfer agreements.
type Table struct {
	Rows []TransferAgreement
	// Skipped counts rows dropped at load time because they could not be decoded.
	Skipped int
	Source  string

	index *Index
}

// NewTable wraps the provided rows. The slice must not be modified afterwards.
func NewTable(rows []TransferAgreement) *Table {
	t := &Table{Rows: rows}
	if len(rows) >= IndexThreshold {
		t.index = NewIndex(rows)
	}
	return t
}

// Parse decodes a JSON array or YAML sequence of flat agreement records.
func Parse(data []byte) (*Table, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode agreements: %w", err)
	}

	raw, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("decode agreements: expected a list of records, got %T", doc)
	}

	records := make([]map[string]any, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		record, ok := item.(map[string]any)
		if !ok {
			skipped++
			continue
		}
		records = append(records, record)
	}

	t := decodeRows(records)
	t.Skipped += skipped
	return t, nil
}

// ParseCSV decodes a CSV export whose header row carries the record keys.
func ParseCSV(data []byte) (*Table, error) {
	csvRows, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode agreements csv: %w", err)
	}

	records := make([]map[string]any, 0, len(csvRows))
	for _, m := range csvRows {
		record := make(map[string]any, len(m))
		for k, v := range m {
			record[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
		records = append(records, record)
	}

	return decodeRows(records), nil
}

func decodeRows(records []map[string]any) *Table {
	rows := make([]TransferAgreement, 0, len(records))
	skipped := 0
	for _, record := range records {
		row, err := decodeRow(record)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	t := NewTable(rows)
	t.Skipped = skipped
	return t
}

// LoadFile reads and parses an agreements file. Files ending in .csv are read
// as CSV, everything else as JSON or YAML.
func LoadFile(path string) (*Table, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("agreements file is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agreements file %q: %w", path, err)
	}

	parse := Parse
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		parse = ParseCSV
	}

	t, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Source = path

	return t, nil
}

func decodeRow(item map[string]any) (TransferAgreement, error) {
	var row TransferAgreement
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &row,
	})
	if err != nil {
		return row, err
	}

	if err := decoder.Decode(item); err != nil {
		return row, err
	}

	return row, nil
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Match joins the parsed courses against the table.
func (t *Table) Match(courses []transcript.ParsedCourse) []TransferAgreement {
	if t == nil {
		return []TransferAgreement{}
	}
	if t.index != nil {
		return t.index.Match(courses)
	}
	return Match(courses, t.Rows)
}

// Incomplete returns the number of rows that can never match because the
// sender subject or number is blank.
func (t *Table) Incomplete() int {
	if t == nil {
		return 0
	}
	count := 0
	for _, row := range t.Rows {
		if row.Key() == "" {
			count++
		}
	}
	return count
}
