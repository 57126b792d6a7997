package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"csvetl/internal/datasource/file"
	"csvetl/internal/etlerr"
	"csvetl/internal/probe"
)

func newProbeCmd() *cobra.Command {
	var (
		comma    string
		maxBytes int
		table    string
		out      string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "probe <csv-file>",
		Short: "Sample a CSV file and draft a pipeline for it",
		Long: `probe reads the head of a CSV file, guesses a kind for every column and
prints a summary. With --out or --json it drafts a pipeline file that maps
the headers to SQL identifiers and coerces the typed columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len([]rune(comma)) != 1 {
				return etlerr.Configuration("probe", fmt.Errorf("--comma must be a single character, got %q", comma))
			}
			r, err := probe.Probe(cmd.Context(), file.NewLocal(args[0]), probe.Options{
				MaxBytes: maxBytes,
				Comma:    []rune(comma)[0],
			})
			if err != nil {
				return etlerr.Extraction("probe "+args[0], err)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writePipeline(w, r.Pipeline(table))
			}
			printReport(w, r)
			if out == "" {
				return nil
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := writePipeline(f, r.Pipeline(table)); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(w, "\npipeline written to %s\n", out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&comma, "comma", ",", "field delimiter")
	f.IntVar(&maxBytes, "max-bytes", probe.DefaultMaxBytes, "bytes to sample from the start of the file")
	f.StringVar(&table, "table", "", "target table of the drafted pipeline (default: file name)")
	f.StringVarP(&out, "out", "o", "", "write the drafted pipeline to this file")
	f.BoolVar(&asJSON, "json", false, "print the drafted pipeline instead of the summary")
	return cmd
}

func writePipeline(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r probe.Report) {
	sampled := humanize.Comma(int64(r.Rows)) + " rows"
	if r.Truncated {
		sampled += " (sample)"
	}
	fmt.Fprintf(w, "%s: %s, %d columns\n\n", r.Source, sampled, len(r.Columns))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HEADER\tCOLUMN\tKIND\tLAYOUT\tNULLS")
	for _, c := range r.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", c.Header, c.Name, c.Kind, c.Layout, c.Nulls)
	}
	tw.Flush()
}
