package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"rcon-go/internal/api"
	"rcon-go/internal/commands"
	"rcon-go/internal/config"
	"rcon-go/internal/logger"
	"rcon-go/rcon"
)

const version = "0.2.0"

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	showVersion := pflag.BoolP("version", "v", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("rcond %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.SetOutput(os.Stdout, cfg.Debug)
	logger.Info("Starting rcond...", "version", version, "port", cfg.Port)

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.Port))
	if err != nil {
		logger.Fatal("Failed to start listener", "port", cfg.Port, "error", err)
	}

	// The registry needs the server for its stats and the server needs the
	// registry as its handler.
	var srv *rcon.Server
	registry := commands.NewBuiltin(version, time.Now(), func() int {
		return srv.ActiveConnections()
	})
	srv = rcon.NewServer(cfg.Password, registry)

	var health *api.HealthServer
	if cfg.HealthServerPort != 0 {
		health = api.NewHealthServer(":"+strconv.Itoa(cfg.HealthServerPort), srv.ActiveConnections)
		health.Start()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	if health != nil {
		health.SetReady(true)
	}
	logger.Info("rcond is ready to accept connections")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down", "signal", sig.String())
	case err := <-serveErr:
		if !errors.Is(err, rcon.ErrServerClosed) {
			logger.Fatal("Server error", "error", err)
		}
	}

	if health != nil {
		health.SetReady(false)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := health.Stop(ctx); err != nil {
			logger.Warn("Health server shutdown failed", "error", err)
		}
		cancel()
	}

	if err := srv.Close(); err != nil {
		logger.Warn("Closing listener failed", "error", err)
	}
	logger.Info("rcond stopped")
}
