package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/threadlens/threadlens"
	"github.com/threadlens/threadlens/internal/log"
	"github.com/threadlens/threadlens/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This allows AI assistants to analyze reddit threads and scan subreddits
through threadlens. Configuration is loaded from environment variables and
the .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Stdout carries the MCP transport, so logs go to stderr.
	logger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel())
	slogger := logger.Slog()

	slogger.Info("starting MCP server", slog.String("version", version))

	client, err := threadlens.New(
		threadlens.WithAppConfig(cfg),
		threadlens.WithLogger(slogger),
	)
	if err != nil {
		return fmt.Errorf("create threadlens client: %w", err)
	}

	mcpServer := mcp.NewServer(client.Analyzer, client.Scanner, version, slogger)
	return mcpServer.ServeStdio()
}
