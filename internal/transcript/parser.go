package transcript

import (
	"regexp"
	"strings"
)

// ParsedCourse is a course the summary reports as passed.
type ParsedCourse struct {
	Subject string `json:"subject"`
	Number  string `json:"number"`
	Grade   string `json:"grade,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// passedCourseLine matches "- MATH 101: A+" style bullets. A bare W never
// matches the grade group. The grade may be followed by punctuation but not by
// more grade characters, so "1000" and "Pass" are rejected.
var passedCourseLine = regexp.MustCompile(
	`^\s*[*-]\s*([A-Za-z]{2,6})\s+([A-Za-z0-9]{3,5})\s*:\s*(A[+-]?|[B-DFP][+-]?|\d{1,3}%?)(?:[^A-Za-z0-9+%-]|$)`,
)

// ParsePassedCourses returns one ParsedCourse per recognized bullet line in
// input order. Other lines are ignored.
func ParsePassedCourses(summary string) []ParsedCourse {
	courses := make([]ParsedCourse, 0)
	if summary == "" {
		return courses
	}

	for idx, line := range strings.Split(summary, "\n") {
		line = strings.TrimRight(line, "\r")

		m := passedCourseLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		courses = append(courses, ParsedCourse{
			Subject: strings.TrimSpace(m[1]),
			Number:  strings.TrimSpace(m[2]),
			Grade:   m[3],
			Line:    idx + 1,
		})
	}

	return courses
}

// Key returns the normalized subject+number pair used for comparisons.
func (c ParsedCourse) Key() string {
	return NormalizeKey(c.Subject, c.Number)
}

// String renders the course the way it appears in transcripts.
func (c ParsedCourse) String() string {
	return strings.TrimSpace(c.Subject) + " " + strings.TrimSpace(c.Number)
}

// NormalizeKey trims and upper-cases both parts. It returns "" when either part is blank.
func NormalizeKey(subject, number string) string {
	subject = strings.ToUpper(strings.TrimSpace(subject))
	number = strings.ToUpper(strings.TrimSpace(number))
	if subject == "" || number == "" {
		return ""
	}
	return subject + " " + number
}
