package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	applog "github.com/spigell/transcript-transfer/internal/logger"
	"github.com/spigell/transcript-transfer/internal/tool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve parse_passed_courses and match_agreements over MCP stdio",
	Run: func(_ *cobra.Command, _ []string) {
		serveMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func serveMCP() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// stdout carries the protocol.
	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"), applog.Stderr)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	tables := startTableLoad(ctx, config.Agreements, logger)

	server := mcp.NewServer(&mcp.Implementation{Name: app, Version: resolvedVersion()}, nil)
	tool.New(tables, logger).Register(server)

	logger.Info("serving mcp over stdio", zap.String("version", resolvedVersion()))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Fatal("mcp server stopped", zap.Error(err))
	}
}
