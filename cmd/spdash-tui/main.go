package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/model"
	"github.com/tinytelemetry/spdash/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var initialTab string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/spdash/config.yml)")
	flag.StringVar(&initialTab, "tab", "", "tab shown first: table or charts (overrides initial-tab)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("spdash-tui - SharePoint List Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if initialTab != "" {
		cfg.InitialTab = initialTab
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	tab, ok := model.ParseTab(cfg.InitialTab)
	if !ok {
		return fmt.Errorf("invalid tab %q (want table or charts)", cfg.InitialTab)
	}

	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := cfg.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("cannot build SharePoint client: %w", err)
	}

	board := tui.NewChartBoard()
	ctrl := dashboard.New(client, board, cfg.Schema())
	if err := ctrl.SelectTab(tab); err != nil {
		return err
	}

	dash := tui.NewDashboardModel(ctx, ctrl, board, client.SiteURL()+" › "+cfg.ListTitle)
	app := tui.NewApp(tui.NewDashboardPage(dash))
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("tui: close: %v", err)
		}
	}()

	opts := []tea.ProgramOption{}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(app, opts...)
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// configureRuntimeLogger sends log output to a file; the terminal belongs to the TUI.
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

	f, err := os.OpenFile(filepath.Join(logDir, "spdash.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}
