package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"orientd/internal/config"
	"orientd/internal/indicator"
	"orientd/internal/orientation"
	"orientd/internal/sensor"
	"orientd/internal/shm"
	"orientd/internal/sim"
	"orientd/internal/udp"
	"orientd/internal/web"
)

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logBuf := web.NewLogBuffer(1000)
	if err := setupLogging(cfg.Log.Level, logBuf); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now().UTC()
	log.WithFields(log.Fields{
		"mode":     cfg.Orientation.Mode,
		"source":   cfg.Orientation.Source,
		"interval": cfg.Orientation.Interval,
	}).Info("orientd starting")

	provider := buildProvider(cfg)

	events := web.NewBroadcaster()
	listeners := orientation.Listeners{events}

	// Anything besides SSE clients that consumes events keeps the pump
	// running via a persistent subscription.
	needAlwaysOn := !cfg.Web.Enable

	if cfg.UDP.Enable {
		ub, err := udp.NewBroadcaster(cfg.UDP.Dest)
		if err != nil {
			return err
		}
		defer ub.Close()
		log.WithField("dest", cfg.UDP.Dest).Info("udp event broadcaster enabled")
		listeners = append(listeners, orientation.ListenerFunc(func(sm orientation.Sample) {
			b, err := json.Marshal(sm)
			if err != nil {
				return
			}
			if err := ub.Send(b); err != nil {
				log.WithError(err).Debug("udp send failed")
			}
		}))
		needAlwaysOn = true
	}

	if cfg.Indicator.Enable {
		ind, err := indicator.New(indicator.Config{
			Enable:  true,
			GPIOPin: cfg.Indicator.GPIOPin,
			Pulse:   cfg.Indicator.Pulse,
		})
		if err != nil {
			return err
		}
		defer ind.Close()
		go ind.Run(ctx)
		log.WithField("pin", cfg.Indicator.GPIOPin).Info("gpio indicator enabled")
		listeners = append(listeners, ind)
		needAlwaysOn = true
	}

	svc := orientation.New(orientation.Config{
		Mode:     orientation.Mode(cfg.Orientation.Mode),
		Interval: cfg.Orientation.Interval,
		Provider: provider,
	}, listeners)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Close()

	if needAlwaysOn {
		svc.Subscribe()
		defer svc.Unsubscribe()
	}

	if cfg.Web.Enable {
		srv := &http.Server{
			Addr:    cfg.Web.Addr,
			Handler: web.Handler(svc, events, logBuf, startedAt),
		}
		go func() {
			log.WithField("addr", cfg.Web.Addr).Info("web server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("web server stopped")
				cancel()
			}
		}()
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	<-ctx.Done()
	log.Info("orientd stopping")
	return nil
}

func buildProvider(cfg config.Config) sensor.Provider {
	if cfg.Orientation.Source == "shm" {
		return shm.NewProvider(cfg.Orientation.SHM.RelativePath, cfg.Orientation.SHM.AbsolutePath)
	}
	return sim.NewProvider(sim.Config{RelativeAvailable: true, AbsoluteAvailable: true})
}

func setupLogging(level string, buf *web.LogBuffer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(io.MultiWriter(os.Stderr, buf))
	return nil
}
