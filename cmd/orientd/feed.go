package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"orientd/internal/config"
	"orientd/internal/shm"
	"orientd/internal/sim"
)

// runFeed writes simulated readings into the configured shm buffers at the
// configured tick interval, standing in for the platform sensor service.
func runFeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Orientation.Source != "shm" {
		return fmt.Errorf("feed requires orientation.source=shm (got %q)", cfg.Orientation.Source)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var bufs [][]byte
	for _, path := range []string{cfg.Orientation.SHM.RelativePath, cfg.Orientation.SHM.AbsolutePath} {
		if path == "" {
			continue
		}
		buf, closeFn, err := shm.CreateBuffer(path)
		if err != nil {
			return err
		}
		defer closeFn()
		bufs = append(bufs, buf)
		log.WithField("path", path).Info("feeding sensor buffer")
	}

	start := time.Now()
	ticker := time.NewTicker(cfg.Orientation.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			r := sim.ReadingAt(now.Sub(start))
			for _, buf := range bufs {
				shm.WriteSnapshot(buf, r)
			}
		}
	}
}
