package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/export"
)

// runExport performs one load and writes the snapshot to w. A failed load is
// still written (phase and error included) and reported as an error.
func runExport(cfg appConfig, format export.Format, w io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := cfg.NewClient(ctx)
	if err != nil {
		return err
	}

	ctrl := dashboard.New(client, nil, cfg.Schema())
	defer ctrl.Close()

	loadErr := ctrl.Load(ctx)
	snap := ctrl.Snapshot()
	if err := export.Write(w, export.Build(snap, client.SiteURL()), format); err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("load failed: %s", dashboard.UserMessage(loadErr))
	}
	return nil
}
