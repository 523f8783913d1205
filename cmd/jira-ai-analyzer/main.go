// jira-ai-analyzer serves a thin HTTP backend that proxies Jira
// issue CRUD and produces AI quality/duplicate/priority suggestions
// for issues.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hS71Ru/Jira-AI-Analyzer/internal/ai"
	"github.com/hS71Ru/Jira-AI-Analyzer/internal/api"
	"github.com/hS71Ru/Jira-AI-Analyzer/internal/config"
	"github.com/hS71Ru/Jira-AI-Analyzer/internal/tracker"
)

// shutdownGrace bounds how long in-flight requests get to finish
// after SIGINT/SIGTERM.
const shutdownGrace = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "jira-ai-analyzer",
	Short: "Jira AI Analyzer backend",
	Long: `Jira AI Analyzer proxies CRUD operations against a Jira Cloud site
and forwards issue text to an AI model for quality, duplicate, and
priority suggestions.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		addr, _ := cmd.Flags().GetString("addr")
		return serve(cmd.Context(), configPath, addr)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "optional YAML config file (env vars take precedence)")
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, configPath, addrOverride string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if addrOverride != "" {
		cfg.Addr = addrOverride
	}

	trackerClient, err := tracker.NewClient(tracker.Config{
		BaseURL:  cfg.JiraBaseURL,
		Email:    cfg.JiraEmail,
		APIToken: cfg.JiraAPIToken,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	analyzer, err := ai.NewAnalyzer(ai.Config{
		APIKey: cfg.AnthropicAPIKey,
		Model:  cfg.Model,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	router := api.NewRouter(&api.Handlers{
		Tracker:  trackerClient,
		Analyzer: analyzer,
		Log:      logger,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		color.Green("Jira AI Analyzer listening on %s", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
