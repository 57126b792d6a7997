package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"csvetl/internal/metrics"
	"csvetl/internal/metrics/datadog"
	"csvetl/internal/metrics/prompush"
)

func metricsFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(flagMetricsBackend, "none", "metrics backend: none, pushgateway or datadog")
	f.String(flagPushgatewayURL, "http://localhost:9091", "Prometheus Pushgateway base URL")
	f.String(flagDatadogAddr, "127.0.0.1:8125", "DogStatsD address")
}

// setupMetrics installs the selected backend. A backend that cannot be
// created is logged and metrics stay disabled; an unknown name is an error.
func setupMetrics(v *viper.Viper, job string) error {
	name := v.GetString(flagMetricsBackend)

	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "", "none":
		slog.Debug("metrics: disabled")
		return nil
	case "pushgateway":
		url := v.GetString(flagPushgatewayURL)
		b, err = prompush.NewBackend(job, url)
		if err == nil {
			slog.Info("metrics: pushgateway", "url", url, "job", job)
		}
	case "datadog":
		addr := v.GetString(flagDatadogAddr)
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "csvetl.",
			GlobalTags: []string{"job:" + job},
		})
		if err == nil {
			slog.Info("metrics: datadog", "addr", addr, "job", job)
		}
	default:
		return fmt.Errorf("unknown metrics backend %q; use none, pushgateway or datadog", name)
	}

	if err != nil {
		slog.Warn("metrics: backend unavailable; using nop", "backend", name, "err", err)
		return nil
	}
	metrics.SetBackend(b)
	return nil
}
