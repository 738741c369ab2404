package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/l3lasx/poc-barcodescanner/camera"
	"github.com/l3lasx/poc-barcodescanner/camera/gstcam"
	"github.com/l3lasx/poc-barcodescanner/config"
	"github.com/l3lasx/poc-barcodescanner/internal/api"
	"github.com/l3lasx/poc-barcodescanner/scanner"
	"github.com/l3lasx/poc-barcodescanner/sink"
	"github.com/l3lasx/poc-barcodescanner/sink/mqttsink"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	backend, err := gstcam.New()
	if err != nil {
		slog.Error("camera backend unavailable", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sinks := map[string]sink.Sink{"log": sink.Log{}}
	var emitter *mqttsink.Emitter
	if cfg.MQTT.Broker != "" {
		emitter = mqttsink.New(mqttsink.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.InstanceID,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
		})
		if err := emitter.Connect(ctx); err != nil {
			slog.Error("mqtt connection failed", "error", err)
			os.Exit(1)
		}
		defer emitter.Disconnect()
		sinks["mqtt"] = emitter
	}

	svc, err := scanner.New(cfg, scanner.Options{Backend: backend, Sinks: sinks})
	if err != nil {
		slog.Error("failed to build scanner", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	if err := svc.Start(ctx); err != nil {
		var perm *camera.PermissionError
		if errors.As(err, &perm) {
			slog.Error("camera permission failed; grant access and start again", "error", err)
		} else {
			slog.Error("failed to start scanner", "error", err)
		}
		os.Exit(1)
	}

	handler := api.NewHandler(svc)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: handler.SetupRoutes(),
	}

	go func() {
		slog.Info("status server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status server failed", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("status server shutdown", "error", err)
	}
	if err := svc.Close(); err != nil {
		slog.Warn("scanner shutdown", "error", err)
	}
	if emitter != nil {
		stats := emitter.Stats()
		slog.Info("mqtt emitter final counts",
			"published", stats.Published,
			"errors", stats.Errors,
		)
	}
}
