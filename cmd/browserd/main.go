// Command browserd runs the browser automation daemon: one shared headless
// page behind an HTTP action-dispatch API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
	"github.com/adminGCT4545/browserpilot/pkg/config"
	"github.com/adminGCT4545/browserpilot/pkg/logging"
	"github.com/adminGCT4545/browserpilot/pkg/server"
)

const version = "0.1.0"

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML config file")
		addr        = flag.String("addr", "", "listen address (overrides config)")
		headed      = flag.Bool("headed", false, "run the browser with a visible window")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("browserd v%s\n", version)
		return
	}

	// Best effort; a missing .env is normal.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *headed {
		cfg.Browser.Headless = false
	}

	logger, logErr := logging.NewLogger("browserd")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", logErr)
	}
	defer logger.Close()

	driver := automation.NewPlaywrightDriver(cfg.Browser.Headless)
	engine := automation.NewEngine(driver, automation.Options{
		LaunchTimeout: cfg.Browser.LaunchTimeout,
		TypeDelay:     cfg.Browser.TypeDelay,
		SettleDelay:   cfg.Browser.SettleDelay,
		Viewport: automation.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
	}, logger)

	srv := server.New(engine, cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			logger.Errorf("server: %v", err)
			fmt.Fprintf(os.Stderr, "server: %v\n", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	engine.Shutdown()
}
