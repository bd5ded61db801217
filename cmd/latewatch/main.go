// Command latewatch fetches late-arrival feeds, normalizes them and writes
// the records to stdout, a file or a webhook.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/latewatch/internal/ingest"

	// Register connector implementations.
	_ "github.com/crimson-sun/latewatch/internal/connector/appsscript"
	_ "github.com/crimson-sun/latewatch/internal/connector/file"
	_ "github.com/crimson-sun/latewatch/internal/connector/mock"
)

const authHint = "the feed requires interactive login; reconfigure the script deployment"

// Exit codes let scripts tell failure classes apart.
const (
	exitError     = 1
	exitAuth      = 3
	exitTransport = 4
	exitDecode    = 5
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "latewatch",
	Short: "Normalize late-arrival feeds from a shared spreadsheet",
	Long: `latewatch pulls the late-arrival log a school keeps in a spreadsheet,
normalizes every row into a record (name, class, time, minutes late),
drops repeat entries for the same person and day, and writes the result.

Configuration comes from LATEWATCH_* environment variables, optionally
layered over the YAML file named by LATEWATCH_CONFIG.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LATEWATCH_LOG_LEVEL")
	rootCmd.AddCommand(fetchCmd, watchCmd, parseCmd, summaryCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "latewatch: %s\n", describe(err))
		stop()
		os.Exit(exitCode(err))
	}
}

// describe turns err into the message shown to the operator.
func describe(err error) string {
	if errors.Is(err, ingest.ErrAuthRequired) {
		return authHint
	}
	return err.Error()
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, ingest.ErrAuthRequired):
		return exitAuth
	case errors.Is(err, ingest.ErrTransportFailure):
		return exitTransport
	case errors.Is(err, ingest.ErrDecodeFailure):
		return exitDecode
	default:
		return exitError
	}
}
