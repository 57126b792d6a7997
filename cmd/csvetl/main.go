// Command csvetl loads a CSV file into a relational table: it extracts the
// file into a record table, applies the configured transform chain, and
// bulk-loads the result in one transaction.
//
//	csvetl run --db-config configs/database.json --pipeline configs/pipeline.json
//	csvetl validate --pipeline configs/pipeline.json
//	csvetl probe data/AB_NYC_2019.csv --out configs/pipeline.json
//
// Exit status: 0 success, 2 configuration, 3 extraction, 4 transformation,
// 5 load failure, 1 anything else (usage errors).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"csvetl/internal/etlerr"

	// register all backends with the storage factory; the database file
	// picks one at run time.
	_ "csvetl/internal/storage/all"
)

func main() {
	// A .env file is optional; it only seeds CSVETL_* variables.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and maps the error to an exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "csvetl: %v\n", err)
	if stage := etlerr.StageOf(err); stage != "" {
		return stage.ExitCode()
	}
	return 1
}
