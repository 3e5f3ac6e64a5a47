package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/transcript-transfer/internal/agreements"
	"github.com/spigell/transcript-transfer/internal/ai"
	"github.com/spigell/transcript-transfer/internal/ai/gemini"
	applog "github.com/spigell/transcript-transfer/internal/logger"
	"github.com/spigell/transcript-transfer/internal/pdftext"
	"github.com/spigell/transcript-transfer/internal/pipeline"
	"github.com/spigell/transcript-transfer/internal/report"
	"github.com/spigell/transcript-transfer/internal/secrets"
	"github.com/spigell/transcript-transfer/internal/session"
)

const (
	PromptShowMatches      = "Show matches"
	PromptReportByReceiver = "Report by receiving institution"
	PromptReportToFile     = "Dump report to file"
	PromptAnotherFile      = "Match another transcript"
	PromptExit             = "Exit"

	providerGemini = "gemini"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowMatches, PromptReportByReceiver, PromptReportToFile, PromptAnotherFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run <transcript.pdf>",
	Short: "Extract, summarize and match a PDF transcript",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "print the report and exit without asking")
}

// run is the main command for the cli.
func run(cmd *cobra.Command, path string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"), applog.Stdout)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the transcript-transfer", zap.String("version", resolvedVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	tables := startTableLoad(ctx, config.Agreements, logger)

	summarizer, err := newSummarizer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building the summarizer",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	deps := pipeline.Deps{
		Extractor:  pdftext.New(config.MaxPDFBytes),
		Summarizer: summarizer,
		Tables:     tables,
		Session:    session.New(logger),
		Logger:     logger,
	}

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	for {
		rep := runCycle(ctx, deps, path, tables, logger)

		if autoApprove {
			if err := report.Render(os.Stdout, rep); err != nil {
				logger.Fatal("rendering report", zap.Error(err))
			}
			return
		}

		next, err := handleActions(rep, logger)
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
		path = next
	}
}

// runCycle runs one upload through the pipeline and returns the report for it.
func runCycle(ctx context.Context, deps pipeline.Deps, path string, tables *agreements.Loader, logger *zap.Logger) *report.Report {
	c := &pipeline.Cycle{Path: path}

	steps, err := pipeline.Run(ctx, deps, pipeline.Default(), c)
	for _, step := range steps {
		fmt.Printf("%-10s %s\n", step.Name, step.Status)
	}
	if err != nil {
		logger.Warn("cycle did not complete", zap.String("transcript", path), zap.Error(err))
	}

	table, _ := tables.Table()
	rep := report.Build(c.Result, table)
	fmt.Println(rep.Status)
	return rep
}

// handleActions loops over the prompt until the user exits or picks another
// transcript, whose path is returned.
func handleActions(rep *report.Report, logger *zap.Logger) (string, error) {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return "", err
		}

		switch action {
		case PromptShowMatches:
			if err := report.Render(os.Stdout, rep); err != nil {
				return "", fmt.Errorf("render report: %w", err)
			}
		case PromptReportByReceiver:
			pretty, _ := json.MarshalIndent(report.ByReceiver(reportMatches(rep)), "", "  ")
			logger.Info(string(pretty), zap.Int("courses count", len(rep.Courses)))
		case PromptReportToFile:
			filename, err := report.DumpToTmpFile(rep)
			if err != nil {
				return "", fmt.Errorf("dump report to file: %w", err)
			}
			logger.Info("dumping report to file", zap.String("filename", filename))
		case PromptAnotherFile:
			return askTranscriptPath()
		case PromptExit:
			logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return "", errExit
		default:
			return "", fmt.Errorf("invalid action: %s", action)
		}
	}
}

func askTranscriptPath() (string, error) {
	pathPrompt := promptui.Prompt{
		Label: "Transcript PDF",
		Validate: func(input string) error {
			input = strings.TrimSpace(input)
			if !pdftext.IsPDF(input) {
				return errors.New("a .pdf file is required")
			}
			if _, err := os.Stat(input); err != nil {
				return err
			}
			return nil
		},
	}

	path, err := pathPrompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

func reportMatches(rep *report.Report) []agreements.TransferAgreement {
	var matches []agreements.TransferAgreement
	for _, c := range rep.Courses {
		matches = append(matches, c.Agreements...)
	}
	return matches
}

// startTableLoad loads the agreement table in the background.
func startTableLoad(ctx context.Context, cfg *AgreementsConfig, logger *zap.Logger) *agreements.Loader {
	loader := agreements.NewLoader(logger)
	go loader.LoadFile(ctx, cfg.File)
	return loader
}

func newSummarizer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Summarizer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != providerGemini {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	genLogger := applog.WithCommonFields(logger, providerGemini, cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	summarizerLogger := applog.WithCommonFields(logger, providerGemini, generator.Model())

	return gemini.NewSummarizer(generator, summarizerLogger, cfg.Gemini.MaxLogLength), nil
}

// redacted returns a copy of config safe for logging.
func redacted(config *Config) *Config {
	copied := *config
	if config.AI != nil && config.AI.Gemini != nil && config.AI.Gemini.APIKey != "" {
		aiCfg := *config.AI
		gem := *config.AI.Gemini
		gem.APIKey = "***"
		aiCfg.Gemini = &gem
		copied.AI = &aiCfg
	}
	return &copied
}
