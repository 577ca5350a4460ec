// Command mcp-server is a standalone HTTP tool server for agent frameworks.
//
// Usage:
//
//	mcp-server --addr :8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
//
// Settings come from gocas.yaml, GOCAS_* environment variables and flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/internal/server"
)

func main() {
	flags := pflag.NewFlagSet("mcp-server", pflag.ExitOnError)
	cfgFile := flags.String("config", "", "config file (default gocas.yaml)")
	flags.String("addr", config.DefaultAddr, "listen address")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (text|json)")
	flags.Duration("read-timeout", 15*time.Second, "HTTP read timeout")
	flags.Duration("write-timeout", 15*time.Second, "HTTP write timeout")
	flags.Int64("max-body-bytes", config.DefaultMaxBodyBytes, "request body limit")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*cfgFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Addr:          cfg.Server.Addr,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		EngineOptions: cfg.EngineOptions(),
		Logger:        logger,
	})
	if err := srv.Serve(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
