package agreements

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/spigell/transcript-transfer/internal/transcript"
)

// Match returns, for each course in order, every agreement whose sender
// subject+number equals it, in table order. Rows with a blank subject or
// number are skipped. Repeated courses yield repeated blocks.
func Match(courses []transcript.ParsedCourse, rows []TransferAgreement) []TransferAgreement {
	matched := make([]TransferAgreement, 0)
	if len(courses) == 0 {
		return matched
	}

	for _, course := range courses {
		key := course.Key()
		if key == "" {
			continue
		}
		for _, row := range rows {
			if row.Key() == key {
				matched = append(matched, row)
			}
		}
	}

	return matched
}

// Index groups agreements by normalized sender key, preserving table order.
type Index struct {
	byKey map[string][]TransferAgreement
}

func NewIndex(rows []TransferAgreement) *Index {
	idx := &Index{byKey: make(map[string][]TransferAgreement)}
	for _, row := range rows {
		key := row.Key()
		if key == "" {
			continue
		}
		idx.byKey[key] = append(idx.byKey[key], row)
	}
	return idx
}

// Match produces the same output as the package-level Match.
func (idx *Index) Match(courses []transcript.ParsedCourse) []TransferAgreement {
	matched := make([]TransferAgreement, 0)
	for _, course := range courses {
		matched = append(matched, idx.byKey[course.Key()]...)
	}
	return matched
}

// Suggestion is an agreement whose sender course is close to a parsed course.
type Suggestion struct {
	Agreement TransferAgreement
	Distance  int
}

const maxSuggestionDistance = 1

// Suggest returns up to limit agreements whose sender key is within one edit
// of the course. Exact matches are excluded.
func Suggest(course transcript.ParsedCourse, t *Table, limit int) []Suggestion {
	key := course.Key()
	if key == "" || t == nil || limit <= 0 {
		return nil
	}

	var found []Suggestion
	for _, row := range t.Rows {
		rowKey := row.Key()
		if rowKey == "" || rowKey == key {
			continue
		}
		d := fuzzy.LevenshteinDistance(key, rowKey)
		if d <= maxSuggestionDistance {
			found = append(found, Suggestion{Agreement: row, Distance: d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Distance < found[j].Distance
	})

	if len(found) > limit {
		found = found[:limit]
	}
	return found
}
