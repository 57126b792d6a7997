package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"csvetl/internal/logging"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// Flag names shared by the subcommands.
const (
	flagDBConfig  = "db-config"
	flagPipeline  = "pipeline"
	flagLogFile   = "log-file"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagLogAppend = "log-append"

	flagMetricsBackend = "metrics-backend"
	flagPushgatewayURL = "pushgateway-url"
	flagDatadogAddr    = "datadog-addr"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "csvetl",
		Short: "Load a CSV file into a relational table",
		Long: `csvetl extracts a CSV file into memory, cleans it with a configured chain of
transforms, and bulk-loads the result into PostgreSQL, MySQL, SQL Server or
SQLite inside a single transaction.

Two JSON files drive a run:
  --db-config   connection parameters (driver, host, port, user, password, dbname)
  --pipeline    source file, target table, parser options, transforms, load mode

Every flag can also be set from the environment as CSVETL_<FLAG>, with dashes
turned into underscores (CSVETL_LOG_LEVEL=debug). Database keys are
overridden with CSVETL_DB_<KEY> (CSVETL_DB_PASSWORD). A .env file in the
working directory is read first.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	pf := root.PersistentFlags()
	pf.String(flagDBConfig, "configs/database.json", "database connection file (JSON)")
	pf.String(flagPipeline, "configs/pipeline.json", "pipeline file (JSON)")

	v.SetEnvPrefix("CSVETL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(newRunCmd(v), newValidateCmd(v), newProbeCmd())
	return root
}

// logFlags adds the logging flags to cmd.
func logFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(flagLogFile, logging.DefaultPath, "log file; records also go to stderr")
	f.String(flagLogLevel, "info", "log level: debug, info, warn or error")
	f.String(flagLogFormat, "text", "log format: text or json")
	f.Bool(flagLogAppend, false, "append to the log file instead of truncating it")
}
