package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/spigell/transcript-transfer/internal/agreements"
	"github.com/spigell/transcript-transfer/internal/report"
	"github.com/spigell/transcript-transfer/internal/session"
	"github.com/spigell/transcript-transfer/internal/transcript"
)

// MetadataParsePassedCourses describes the parse_passed_courses tool.
var MetadataParsePassedCourses = &mcp.Tool{
	Name: "parse_passed_courses",
	Description: "Extract passed courses from a transcript summary. " +
		"Only bullet lines shaped like \"- SUBJ NUM: GRADE\" are recognized; " +
		"withdrawals (W) and prose are ignored. Output order follows the input.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"summary"},
		"properties": map[string]interface{}{
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "Free-text transcript summary, one course per bullet line",
			},
		},
	},
}

// MetadataMatchAgreements describes the match_agreements tool.
var MetadataMatchAgreements = &mcp.Tool{
	Name: "match_agreements",
	Description: "Match the passed courses of a transcript summary against the configured " +
		"transfer agreement table. Returns every agreement whose sender course equals a parsed " +
		"course, grouped per course in input order, plus the result state " +
		"(computed-empty, computed-non-empty or blocked when the table could not be loaded).",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"summary"},
		"properties": map[string]interface{}{
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "Free-text transcript summary, one course per bullet line",
			},
			"agreements": map[string]interface{}{
				"type":        "string",
				"description": "Optional JSON array or YAML sequence of agreement rows used instead of the configured table.",
			},
		},
	},
}

// InputParsePassedCourses is the input for the ParsePassedCourses tool.
type InputParsePassedCourses struct {
	Summary string `json:"summary"`
}

// OutputParsePassedCourses is the output for the ParsePassedCourses tool.
type OutputParsePassedCourses struct {
	Courses []transcript.ParsedCourse `json:"courses"`
}

// InputMatchAgreements is the input for the MatchAgreements tool.
type InputMatchAgreements struct {
	Summary    string `json:"summary"`
	Agreements string `json:"agreements"`
}

// OutputMatchAgreements is the output for the MatchAgreements tool.
type OutputMatchAgreements struct {
	State   string                         `json:"state"`
	Status  string                         `json:"status"`
	Courses []report.Course                `json:"courses"`
	Matches []agreements.TransferAgreement `json:"matches"`
}

// TableSource supplies the configured agreement table.
type TableSource interface {
	Wait(ctx context.Context) (agreements.Status, error)
}

// Toolset holds the state shared by the tool handlers.
type Toolset struct {
	tables TableSource
	logger *zap.Logger
}

func New(tables TableSource, logger *zap.Logger) *Toolset {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Toolset{tables: tables, logger: logger}
}

// Register adds all tools to server.
func (ts *Toolset) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataParsePassedCourses, ts.ParsePassedCourses)
	mcp.AddTool(server, MetadataMatchAgreements, ts.MatchAgreements)
}

// ParsePassedCourses returns the courses recognized in the summary.
// An empty summary yields an empty list.
func (ts *Toolset) ParsePassedCourses(_ context.Context, _ *mcp.CallToolRequest, input InputParsePassedCourses) (*mcp.CallToolResult, OutputParsePassedCourses, error) {
	return nil, OutputParsePassedCourses{Courses: transcript.ParsePassedCourses(input.Summary)}, nil
}

// MatchAgreements evaluates the summary against the table and reports the result state.
// A summary without courses is computed-empty unless the table is unavailable.
func (ts *Toolset) MatchAgreements(ctx context.Context, _ *mcp.CallToolRequest, input InputMatchAgreements) (*mcp.CallToolResult, OutputMatchAgreements, error) {
	status, err := ts.tableStatus(ctx, input.Agreements)
	if err != nil {
		return nil, OutputMatchAgreements{}, err
	}

	result := session.Evaluate(&input.Summary, status)
	rep := report.Build(result, status.Table)

	ts.logger.Info("match_agreements evaluated",
		zap.String("state", result.State.String()),
		zap.Int("courses", len(result.Courses)),
		zap.Int("matches", len(result.Matches)),
	)

	matches := result.Matches
	if matches == nil {
		matches = []agreements.TransferAgreement{}
	}
	courses := rep.Courses
	if courses == nil {
		courses = []report.Course{}
	}

	return nil, OutputMatchAgreements{
		State:   rep.State,
		Status:  rep.Status,
		Courses: courses,
		Matches: matches,
	}, nil
}

func (ts *Toolset) tableStatus(ctx context.Context, inline string) (agreements.Status, error) {
	if strings.TrimSpace(inline) != "" {
		table, err := agreements.Parse([]byte(inline))
		if err != nil {
			return agreements.Failed(fmt.Errorf("parse inline agreements: %w", err)), nil
		}
		table.Source = "inline"
		return agreements.Loaded(table), nil
	}

	if ts.tables == nil {
		return agreements.Failed(fmt.Errorf("no agreements table is configured")), nil
	}

	return ts.tables.Wait(ctx)
}
