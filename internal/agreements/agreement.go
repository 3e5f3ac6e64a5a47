package agreements

import (
	"fmt"
	"strings"

	"github.com/spigell/transcript-transfer/internal/transcript"
)

// TransferAgreement is one row of the reference table. Field names follow the
// keys used by the published agreement exports.
type TransferAgreement struct {
	ID int64 `json:"Id" yaml:"Id" mapstructure:"Id"`

	SndrInstitutionName string  `json:"SndrInstitutionName" yaml:"SndrInstitutionName" mapstructure:"SndrInstitutionName"`
	SndrSubjectCode     string  `json:"SndrSubjectCode" yaml:"SndrSubjectCode" mapstructure:"SndrSubjectCode"`
	SndrCourseNumber    string  `json:"SndrCourseNumber" yaml:"SndrCourseNumber" mapstructure:"SndrCourseNumber"`
	SndrCourseTitle     string  `json:"SndrCourseTitle,omitempty" yaml:"SndrCourseTitle,omitempty" mapstructure:"SndrCourseTitle"`
	SndrCourseCredits   float64 `json:"SndrCourseCredits,omitempty" yaml:"SndrCourseCredits,omitempty" mapstructure:"SndrCourseCredits"`

	RcvrInstitutionName string `json:"RcvrInstitutionName" yaml:"RcvrInstitutionName" mapstructure:"RcvrInstitutionName"`
	RcvrDetail          string `json:"RcvrDetail,omitempty" yaml:"RcvrDetail,omitempty" mapstructure:"RcvrDetail"`

	Condition string `json:"Condition,omitempty" yaml:"Condition,omitempty" mapstructure:"Condition"`
}

// Key returns the normalized sender subject+number, or "" for incomplete rows.
func (a TransferAgreement) Key() string {
	return transcript.NormalizeKey(a.SndrSubjectCode, a.SndrCourseNumber)
}

// Matches reports whether the agreement's sender course is the parsed course.
func (a TransferAgreement) Matches(course transcript.ParsedCourse) bool {
	key := a.Key()
	return key != "" && key == course.Key()
}

func (a TransferAgreement) HasCondition() bool {
	return strings.TrimSpace(a.Condition) != ""
}

// SenderCourse renders the sender side as "ENGL 101 (Composition)".
func (a TransferAgreement) SenderCourse() string {
	course := strings.TrimSpace(a.SndrSubjectCode) + " " + strings.TrimSpace(a.SndrCourseNumber)
	if title := strings.TrimSpace(a.SndrCourseTitle); title != "" {
		course = fmt.Sprintf("%s (%s)", course, title)
	}
	return course
}
