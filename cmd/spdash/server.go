package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tinytelemetry/spdash/internal/confwatch"
	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/httpserver"
	"github.com/tinytelemetry/spdash/internal/snapshot"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// runServer mounts one dashboard controller, serves it over HTTP and
// remounts it whenever the config file changes.
func runServer(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
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

	client, err := cfg.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to build SharePoint client: %w", err)
	}

	store, err := snapshot.NewStore(cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	ctrl := dashboard.New(client, nil, cfg.Schema(), dashboard.WithObserver(store.Observer()))
	defer ctrl.Close()

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, ctrl, store)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	// Each value requests one remount + load; a full buffer already has one pending.
	reloadCh := make(chan struct{}, 1)
	requestReload := func() {
		select {
		case reloadCh <- struct{}{}:
		default:
		}
	}

	if cfg.WatchConfig && cfg.ConfigPath != "" {
		watcher := confwatch.New(cfg.ConfigPath, requestReload)
		if err := watcher.Start(ctx); err != nil {
			log.Printf("server: config watch disabled: %v", err)
		}
	}

	printStartupBanner(cfg, client.SiteURL())

	// Use errgroup for concurrent goroutine lifecycle management.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		loadOnce(gctx, ctrl)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-reloadCh:
				remount(gctx, cfg.ConfigPath, ctrl, store)
				loadOnce(gctx, ctrl)
			}
		}
	})

	// Wait for context cancellation (from signal handler) in the errgroup
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
	}
	return nil
}

func loadOnce(ctx context.Context, ctrl *dashboard.Controller) {
	err := ctrl.Load(ctx)
	switch {
	case err == nil:
		log.Printf("server: list loaded (%d rows)", len(ctrl.Snapshot().Rows))
	case errors.Is(err, dashboard.ErrStale), errors.Is(err, dashboard.ErrClosed), errors.Is(err, dashboard.ErrNotIdle):
		// Another mount owns the state now.
	default:
		log.Printf("server: load failed: %v", err)
	}
}

// remount re-reads the config file and swaps in a client and schema for the
// new source. An invalid file keeps the current ones; the dashboard is
// reloaded either way.
func remount(ctx context.Context, configPath string, ctrl *dashboard.Controller, store *snapshot.Store) {
	err := reconfigure(ctx, configPath, ctrl)
	if err != nil && !errors.Is(err, dashboard.ErrClosed) {
		log.Printf("server: config reload rejected: %v", err)
		err = ctrl.Remount(nil)
	}
	if err != nil {
		log.Printf("server: remount: %v", err)
		return
	}
	if err := store.Clear(); err != nil {
		log.Printf("server: clear snapshot: %v", err)
	}
}

func reconfigure(ctx context.Context, configPath string, ctrl *dashboard.Controller) error {
	next, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	client, err := next.NewClient(ctx)
	if err != nil {
		return err
	}
	return ctrl.Reconfigure(client, next.Schema())
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "spdash")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "spdash.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(cfg appConfig, siteURL string) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╔═╗╔╦╗╔═╗╔═╗╦ ╦
    ╚═╗╠═╝ ║║╠═╣╚═╗╠═╣
    ╚═╝╩  ═╩╝╩ ╩╚═╝╩ ╩`)

	var lines []string
	lines = append(lines, "", logo, "    "+dim.Render("v"+version), "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator, "")

	lines = append(lines, bold.Render("    Source"), "")
	lines = append(lines, fmt.Sprintf("    %s  Site           %s", check, cyan.Render(siteURL)))
	lines = append(lines, fmt.Sprintf("    %s  List           %s", check, cyan.Render(cfg.ListTitle)))
	lines = append(lines, fmt.Sprintf("    %s  Auth           %s", check, dim.Render(authMode(cfg))))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"), "")
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, fmt.Sprintf("    %s  SQL Snapshot   %s", check, dim.Render("in-memory")))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"), "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}
	if cfg.WatchConfig && cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Watch          %s", check, dim.Render("remount on change")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Watch          %s", dot, dim.Render("disabled")))
	}

	lines = append(lines, "", separator, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	fmt.Println(strings.Join(lines, "\n"))
}

func authMode(cfg appConfig) string {
	switch {
	case cfg.ClientID != "":
		return "client credentials"
	case cfg.AccessToken != "":
		return "bearer token"
	default:
		return "anonymous"
	}
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
