package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"csvetl/internal/config"
	"csvetl/internal/etl"
	"csvetl/internal/etlerr"
	"csvetl/internal/logging"
	"csvetl/internal/metrics"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline: extract, transform, load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, v)
		},
	}
	logFlags(cmd)
	metricsFlags(cmd)
	return cmd
}

func runPipeline(cmd *cobra.Command, v *viper.Viper) error {
	prev := slog.Default()
	_, closer, err := logging.Init(logging.Config{
		Path:    v.GetString(flagLogFile),
		Level:   v.GetString(flagLogLevel),
		Format:  v.GetString(flagLogFormat),
		Append:  v.GetBool(flagLogAppend),
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return etlerr.Configuration("logging", err)
	}
	defer func() {
		slog.SetDefault(prev)
		_ = closer.Close()
	}()

	cfg, issues, err := config.Load(v.GetString(flagDBConfig), v.GetString(flagPipeline))
	for _, iss := range issues {
		level := slog.LevelWarn
		if iss.Severity == config.SeverityError {
			level = slog.LevelError
		}
		slog.Log(cmd.Context(), level, iss.Message, "path", iss.Path)
	}
	if err != nil {
		return err
	}

	if err := setupMetrics(v, cfg.Pipeline.JobName()); err != nil {
		return etlerr.Configuration("metrics", err)
	}
	defer func() {
		if err := metrics.Close(); err != nil {
			slog.Warn("metrics: flush failed", "err", err)
		}
	}()

	sum, err := etl.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "loaded %s rows into %s (extracted %s, dropped %s) in %s\n",
		humanize.Comma(sum.Loaded),
		cfg.Pipeline.TableName,
		humanize.Comma(sum.Extracted),
		humanize.Comma(sum.Dropped),
		sum.Duration.Truncate(time.Millisecond),
	)
	return nil
}
