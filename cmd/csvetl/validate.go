package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"csvetl/internal/config"
	"csvetl/internal/etlerr"
	"csvetl/internal/transformer"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

func newValidateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration files without touching the source or database",
		Long: `validate decodes the pipeline file, checks every field and transform option,
and builds the transform chain. The database file is checked too when
--db-config (or CSVETL_DB_CONFIG) is given explicitly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checkDB := cmd.Flag(flagDBConfig).Changed || os.Getenv("CSVETL_DB_CONFIG") != ""
			return validateConfig(cmd.OutOrStdout(), v.GetString(flagPipeline), v.GetString(flagDBConfig), checkDB)
		},
	}
}

func validateConfig(w io.Writer, pipelinePath, dbPath string, checkDB bool) error {
	p, err := config.LoadPipeline(pipelinePath)
	if err != nil {
		return etlerr.Configuration("load pipeline", err)
	}
	issues := config.ValidatePipeline(p)

	if checkDB {
		db, err := config.LoadDatabase(dbPath)
		if err != nil {
			return etlerr.Configuration("load database", err)
		}
		issues = append(issues, config.ValidateDatabase(db)...)
	}

	printIssues(w, issues)
	if err := config.Errors(issues); err != nil {
		return etlerr.Configuration("validate", err)
	}

	// Field checks passed; make sure every step also constructs.
	chain, err := transformer.Build(p.Transform)
	if err != nil {
		errColor.Fprintf(w, "%-7s %v\n", config.SeverityError, err)
		return etlerr.Configuration("transforms", err)
	}

	okColor.Fprintf(w, "configuration is valid: %d transform(s) %v into %s\n",
		len(chain), chain.Names(), p.TableName)
	return nil
}

func printIssues(w io.Writer, issues []config.Issue) {
	for _, iss := range issues {
		c := warnColor
		if iss.Severity == config.SeverityError {
			c = errColor
		}
		c.Fprintf(w, "%-7s %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if len(issues) > 0 {
		fmt.Fprintln(w)
	}
}
