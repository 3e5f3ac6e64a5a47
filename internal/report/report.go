package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spigell/transcript-transfer/internal/agreements"
	"github.com/spigell/transcript-transfer/internal/session"
	"github.com/spigell/transcript-transfer/internal/transcript"
)

const maxSuggestions = 3

// Report is the presentable form of a session result.
type Report struct {
	State   string   `json:"state"`
	Status  string   `json:"status"`
	Courses []Course `json:"courses,omitempty"`
}

// Course lists the agreements found for one parsed course.
type Course struct {
	Course      string                         `json:"course"`
	Grade       string                         `json:"grade,omitempty"`
	Agreements  []agreements.TransferAgreement `json:"agreements"`
	Suggestions []string                       `json:"suggestions,omitempty"`
}

// StatusLine returns the one-line user-facing status for a result. Blocked and
// Computed-Empty always read differently.
func StatusLine(r session.Result) string {
	switch r.State {
	case session.Uncomputed:
		return "Waiting for the transcript summary and the agreements table."
	case session.ComputedEmpty:
		if len(r.Courses) == 0 {
			return "No passed courses were found in the summary."
		}
		return fmt.Sprintf("No transfer agreements found for %d passed courses.", len(r.Courses))
	case session.ComputedNonEmpty:
		return fmt.Sprintf("Found %d transfer agreements for %d passed courses.", len(r.Matches), len(r.Courses))
	case session.Blocked:
		if r.Err != nil {
			return fmt.Sprintf("Transfer agreements are unavailable (%v); matching was not run.", r.Err)
		}
		return "Transfer agreements are unavailable; matching was not run."
	default:
		return r.State.String()
	}
}

// Build groups the result by parsed course. table is used to look up the
// per-course blocks and near-miss suggestions and may be nil.
func Build(r session.Result, table *agreements.Table) *Report {
	rep := &Report{State: r.State.String(), Status: StatusLine(r)}

	if r.State != session.ComputedEmpty && r.State != session.ComputedNonEmpty {
		return rep
	}

	for _, course := range r.Courses {
		entry := Course{
			Course:     course.String(),
			Grade:      course.Grade,
			Agreements: []agreements.TransferAgreement{},
		}

		if table != nil {
			entry.Agreements = table.Match([]transcript.ParsedCourse{course})
			if len(entry.Agreements) == 0 {
				for _, s := range agreements.Suggest(course, table, maxSuggestions) {
					entry.Suggestions = append(entry.Suggestions, s.Agreement.SenderCourse())
				}
			}
		}

		rep.Courses = append(rep.Courses, entry)
	}

	return rep
}

// ByReceiver groups matched agreements by receiving institution.
func ByReceiver(matches []agreements.TransferAgreement) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, a := range matches {
		key := strings.TrimSpace(a.RcvrInstitutionName)
		if key == "" {
			key = "unknown institution"
		}

		entry := map[string]string{
			"sender course": a.SenderCourse(),
			"title":         a.SndrCourseTitle,
			"credits":       strconv.FormatFloat(a.SndrCourseCredits, 'f', -1, 64),
			"receives":      a.RcvrDetail,
			"from":          a.SndrInstitutionName,
		}
		if a.HasCondition() {
			entry["condition"] = a.Condition
		}

		report[key] = append(report[key], entry)
	}
	return report
}

// Render writes a plain-text report.
func Render(w io.Writer, rep *Report) error {
	var b strings.Builder
	b.WriteString(rep.Status)
	b.WriteString("\n")

	for _, c := range rep.Courses {
		b.WriteString("\n")
		b.WriteString(c.Course)
		if c.Grade != "" {
			fmt.Fprintf(&b, " (%s)", c.Grade)
		}
		b.WriteString("\n")

		if len(c.Agreements) == 0 {
			b.WriteString("  no transfer agreements")
			if len(c.Suggestions) > 0 {
				fmt.Fprintf(&b, "; did you mean %s?", strings.Join(c.Suggestions, ", "))
			}
			b.WriteString("\n")
			continue
		}

		for _, a := range c.Agreements {
			fmt.Fprintf(&b, "  -> %s: %s", a.RcvrInstitutionName, a.RcvrDetail)
			if a.HasCondition() {
				fmt.Fprintf(&b, " [%s]", a.Condition)
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// DumpToTmpFile writes the report as indented JSON into a new temp file.
func DumpToTmpFile(rep *Report) (string, error) {
	file, err := os.CreateTemp("", "transfer_report_*.json")
	if err != nil {
		return "", err
	}
	return dump(file, rep)
}

type namedWriteCloser interface {
	io.WriteCloser
	Name() string
}

// dump writes rep into file and closes it. A failed close is reported since
// buffered data may not have reached the disk.
func dump(file namedWriteCloser, rep *Report) (string, error) {
	if err := writeJSON(file, rep); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	return file.Name(), nil
}

func writeJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
