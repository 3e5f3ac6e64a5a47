package transcript

import (
	"reflect"
	"testing"
)

func TestParsePassedCourses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect []ParsedCourse
	}{
		{
			name:   "empty input",
			input:  "",
			expect: []ParsedCourse{},
		},
		{
			name:  "dash bullet",
			input: "- SUBJ 101: A",
			expect: []ParsedCourse{
				{Subject: "SUBJ", Number: "101", Grade: "A", Line: 1},
			},
		},
		{
			name:  "star bullet with indentation and lower case subject",
			input: "   * engl 101A: B-",
			expect: []ParsedCourse{
				{Subject: "engl", Number: "101A", Grade: "B-", Line: 1},
			},
		},
		{
			name:  "percentage and pass grades",
			input: "- CHEM 210: 87%\n- ART 100: P\n- HIST 1010: 9",
			expect: []ParsedCourse{
				{Subject: "CHEM", Number: "210", Grade: "87%", Line: 1},
				{Subject: "ART", Number: "100", Grade: "P", Line: 2},
				{Subject: "HIST", Number: "1010", Grade: "9", Line: 3},
			},
		},
		{
			name:   "withdrawal is skipped",
			input:  "- ENGL 2XX: W",
			expect: []ParsedCourse{},
		},
		{
			name:   "lower case grade is skipped",
			input:  "- ENGL 201: b",
			expect: []ParsedCourse{},
		},
		{
			name:   "four digit score is skipped",
			input:  "- MATH 101: 1000",
			expect: []ParsedCourse{},
		},
		{
			name:   "subject too long",
			input:  "- ENGLISH 101: A",
			expect: []ParsedCourse{},
		},
		{
			name:   "subject too short",
			input:  "- E 101: A",
			expect: []ParsedCourse{},
		},
		{
			name:   "number too long",
			input:  "- MATH 101ABC: A",
			expect: []ParsedCourse{},
		},
		{
			name:   "no bullet",
			input:  "MATH 101: A",
			expect: []ParsedCourse{},
		},
		{
			name:  "prose and trailing note",
			input: "Courses:\r\n\r\n- PHYS 150: C+ (repeated)\r\nStudent performed well overall.",
			expect: []ParsedCourse{
				{Subject: "PHYS", Number: "150", Grade: "C+", Line: 3},
			},
		},
		{
			name:  "trailing punctuation after the grade",
			input: "- MATH 101: A, retake\n- BIOL 101: A.\n- CHEM 210: 85%.\n- HIST 110: B-;",
			expect: []ParsedCourse{
				{Subject: "MATH", Number: "101", Grade: "A", Line: 1},
				{Subject: "BIOL", Number: "101", Grade: "A", Line: 2},
				{Subject: "CHEM", Number: "210", Grade: "85%", Line: 3},
				{Subject: "HIST", Number: "110", Grade: "B-", Line: 4},
			},
		},
		{
			name:   "word grade is skipped",
			input:  "- MATH 101: Pass\n- MATH 102: Fail.",
			expect: []ParsedCourse{},
		},
		{
			name:  "duplicates pass through",
			input: "- MATH 101: F\n- MATH 101: B",
			expect: []ParsedCourse{
				{Subject: "MATH", Number: "101", Grade: "F", Line: 1},
				{Subject: "MATH", Number: "101", Grade: "B", Line: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParsePassedCourses(tt.input)
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %+v, got %+v", tt.expect, got)
			}
		})
	}
}

func TestParsePassedCoursesSubjectCaseDoesNotMatter(t *testing.T) {
	upper := ParsePassedCourses("- MATH 101: A")
	lower := ParsePassedCourses("- math 101: A")

	if len(upper) != 1 || len(lower) != 1 {
		t.Fatalf("expected one course each, got %d and %d", len(upper), len(lower))
	}

	if upper[0].Key() != lower[0].Key() {
		t.Fatalf("expected equal keys, got %q and %q", upper[0].Key(), lower[0].Key())
	}
}

func TestParsePassedCoursesIsIdempotent(t *testing.T) {
	text := "- MATH 101: A+\n- ENGL 2XX: W\nStudent performed well overall."

	first := ParsePassedCourses(text)
	second := ParsePassedCourses(text)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}

	if len(first) != 1 || first[0].Key() != "MATH 101" {
		t.Fatalf("unexpected courses: %+v", first)
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey(" engl ", " 101a"); got != "ENGL 101A" {
		t.Fatalf("unexpected key: %q", got)
	}

	if got := NormalizeKey("ENGL", "  "); got != "" {
		t.Fatalf("expected empty key for blank number, got %q", got)
	}
}
