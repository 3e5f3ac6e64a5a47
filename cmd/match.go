package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/transcript-transfer/internal/ai"
	applog "github.com/spigell/transcript-transfer/internal/logger"
	"github.com/spigell/transcript-transfer/internal/pipeline"
	"github.com/spigell/transcript-transfer/internal/report"
	"github.com/spigell/transcript-transfer/internal/session"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match an existing transcript summary against the agreements table",
	Long: "Match reads a summary produced earlier (for example by the AI provider) " +
		"and prints the transfer agreements for its passed courses. " +
		"No PDF extraction or AI call is made.",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("summary", "s", "-", "summary file, - reads stdin")
	matchCmd.Flags().StringP("format", "f", formatText, "output format: text or json")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"), applog.Stderr)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	format := strings.ToLower(cmd.Flag("format").Value.String())
	if format != formatText && format != formatJSON {
		logger.Fatal("unsupported output format", zap.String("format", format))
	}

	summary, err := readSummary(cmd.Flag("summary").Value.String())
	if err != nil {
		logger.Fatal("reading summary", zap.Error(err))
	}

	tables := startTableLoad(ctx, config.Agreements, logger)

	stages := pipeline.Default()
	pipeline.DisableByName(stages, "extract", "summary supplied")
	pipeline.DisableByName(stages, "summarize", "summary supplied")
	for _, st := range pipeline.Describe(stages) {
		logger.Debug("stage plan",
			zap.String("name", st.Name),
			zap.Bool("enabled", st.Enabled),
			zap.String("reason", st.Reason),
		)
	}

	deps := pipeline.Deps{
		Tables:  tables,
		Session: session.New(logger),
		Logger:  logger,
	}

	c := &pipeline.Cycle{Summary: &ai.Summary{Text: summary}}
	if _, err := pipeline.Run(ctx, deps, stages, c); err != nil {
		logger.Fatal("matching summary", zap.Error(err))
	}

	table, _ := tables.Table()
	if err := writeReport(os.Stdout, format, report.Build(c.Result, table)); err != nil {
		logger.Fatal("writing report", zap.Error(err))
	}

	if c.Result.State == session.Blocked {
		os.Exit(2)
	}
}

func readSummary(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeReport(w io.Writer, format string, rep *report.Report) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return report.Render(w, rep)
}
