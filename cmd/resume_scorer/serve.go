package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-scorer/internal/metrics"
	"github.com/jonathan/resume-scorer/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes the question generation, scoring and token estimate endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	jwtConfig, err := cfg.JWT()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	if !cfg.AuthEnabled() {
		log.Warn("APP_API_KEY is not set, authentication is disabled")
	}

	srv, err := server.New(server.Config{
		Port:                 cfg.Port,
		MaxJDChars:           cfg.MaxJDChars,
		MaxResumeChars:       cfg.MaxResumeChars,
		TopK:                 cfg.TopK,
		MaxRequestsPerMinute: cfg.MaxRequestsPerMinute,
		APIKeys:              cfg.APIKeys(),
		JWT:                  jwtConfig,
		Generator:            p.generator,
		Scorer:               p.scorer,
		Extractor:            p.extractor,
		Metrics:              metrics.NewRegistry(),
		Logger:               log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("configuration loaded",
		zap.String("llm_provider", cfg.LLMProvider),
		zap.String("llm_model", p.client.DefaultModel()),
		zap.String("embed_provider", cfg.EmbedProvider),
		zap.String("failure_policy", cfg.ScoringFailurePolicy),
		zap.Int("top_k", cfg.TopK),
	)
	return srv.Start(ctx)
}
