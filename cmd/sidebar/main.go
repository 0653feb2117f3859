package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mchmarny/sidebar/pkg/host"
	"github.com/mchmarny/sidebar/pkg/logger"
	"github.com/mchmarny/sidebar/pkg/menu"
	"github.com/mchmarny/sidebar/pkg/server"
)

var (
	version = "dev"     // Set at build time via -ldflags "-X main.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X main.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X main.date=date"

	configPath  = flag.String("config", "", "Path to the config file (yaml, toml or json)")
	_           = flag.Int("port", server.DefaultPort, "Port to listen on (overrides config and SIDEBAR_PORT)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("sidebar %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	if err := run(); err != nil {
		slog.Error("sidebar error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(*configPath, flag.CommandLine)
	if err != nil {
		return err
	}

	logger.SetDefaultLoggerWithLevel("sidebar", version, cfg.LogLevel)
	slog.Info("starting sidebar", "commit", commit, "date", date)

	m := menu.Default()
	if cfg.MenuFile != "" {
		if m, err = menu.LoadFile(cfg.MenuFile); err != nil {
			return err
		}
		slog.Info("menu loaded", "file", cfg.MenuFile, "items", len(m.Items))
	}

	opts := host.Options{
		Menu:           m,
		Port:           cfg.Port,
		HostOrigin:     cfg.HostOrigin,
		WidgetOrigin:   cfg.WidgetOrigin,
		TargetOrigin:   cfg.TargetOrigin,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.TLSCert != "" {
		opts.TLS = &server.TLSConfig{CertFile: cfg.TLSCert, KeyFile: cfg.TLSKey}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return host.Run(ctx, opts)
}
