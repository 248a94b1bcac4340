// Command homectl-mqtt bridges LEDNET WiFi lights to an MQTT broker.
//
// The bridge discovers lights periodically, accepts JSON commands on
// <prefix>/set/<device-ip> and publishes state to <prefix>/status/<device-ip>.
// With bridge.metrics_addr configured it also serves Prometheus metrics
// under /metrics.
//
// Usage:
//
//	homectl-mqtt [flags]
//
// Flags:
//
//	-config string   Configuration file path
//
// Broker credentials come from the config file or, preferably, from the
// environment (HOMECTL_MQTT_URI, HOMECTL_MQTT_USERNAME,
// HOMECTL_MQTT_PASSWORD). A .env file in the working directory is loaded
// first if present.
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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/homectl/homectl-go/internal/bridge"
	"github.com/homectl/homectl-go/internal/config"
)

var configPath = flag.String("config", "", "Configuration file path")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "homectl-mqtt: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBridge(); err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Bridge.MetricsAddr != "" {
		go serveMetrics(cfg.Bridge.MetricsAddr, log)
	}

	log.Info("starting bridge", "broker", cfg.Bridge.BrokerURI, "prefix", cfg.Bridge.TopicPrefix)
	return bridge.New(cfg, log).Run(ctx)
}

func serveMetrics(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server failed", "error", err)
	}
}
