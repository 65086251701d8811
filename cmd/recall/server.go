package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/recall/internal/backup"
	"github.com/tinytelemetry/recall/internal/duckdb"
	"github.com/tinytelemetry/recall/internal/httpserver"
	"github.com/tinytelemetry/recall/internal/review"
	"golang.org/x/sync/errgroup"
)

// runServer opens the card store and serves the HTTP API until interrupted.
func runServer(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	retentionCleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		RetentionDays: cfg.ReviewLogRetention,
	})
	if retentionCleaner != nil {
		defer retentionCleaner.Stop()
	}

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupLocalDir,
		KeepLast: cfg.BackupKeepLast,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}
	if backupManager != nil {
		defer backupManager.Stop()
	}

	svc := review.NewService(store, review.WithDueLimit(cfg.DueLimit))

	apiServer := httpserver.NewServer(cfg.APIAddr, svc)
	if err := apiServer.Listen(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	count, err := store.CardCount(ctx)
	if err != nil {
		log.Printf("server: card count: %v", err)
	}
	printStartupBanner(cfg, count)
	log.Printf("server: listening on %s with %d cards", cfg.APIAddr, count)

	err = serveUntilDone(ctx, apiServer)
	signal.Stop(sigCh)
	if err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
		return err
	}
	return nil
}

// lifecycleServer is the part of httpserver.Server the lifecycle drives.
type lifecycleServer interface {
	Serve() error
	Stop() error
}

// serveUntilDone runs api until ctx is canceled or serving fails. Either way
// the server is stopped before it returns; only a serving failure is an error.
func serveUntilDone(ctx context.Context, api lifecycleServer) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := api.Serve(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		if err := api.Stop(); err != nil {
			log.Printf("server: api shutdown: %v", err)
		}
		return nil
	})

	return g.Wait()
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "recall")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(logDir, "recall.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(cfg appConfig, cardCount int64) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╦═╗╔═╗╔═╗╔═╗╦  ╦
    ╠╦╝║╣ ║  ╠═╣║  ║
    ╩╚═╚═╝╚═╝╩ ╩╩═╝╩═╝`)

	separator := dim.Render("    ─────────────────────────────────")

	lines := []string{
		"",
		logo,
		"    " + dim.Render("v"+version),
		"",
		separator,
		"",
		bold.Render("    Gateway"),
		"",
		fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)),
		"",
		bold.Render("    Storage"),
		"",
		fmt.Sprintf("    %s  Cards          %s", check, dim.Render(fmt.Sprintf("%d in %s", cardCount, shortenPath(cfg.DBPath)))),
	}

	if cfg.BackupEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Snapshots      %s", check, dim.Render(shortenPath(cfg.BackupLocalDir))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Snapshots      %s", dot, dim.Render("disabled")))
	}
	if cfg.ReviewLogRetention > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Review Log     %s", check, dim.Render(fmt.Sprintf("%d days", cfg.ReviewLogRetention))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Review Log     %s", dot, dim.Render("kept forever")))
	}

	lines = append(lines, "", bold.Render("    Config"), "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines,
		"",
		separator,
		"",
		"    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"),
		"",
	)

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
