package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/latewatch/internal/config"
	"github.com/crimson-sun/latewatch/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch every configured source once and write the records",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep fetching and write only records not seen before",
	Long: `Watch re-fetches the primary source every LATEWATCH_POLL_INTERVAL
(or whenever the file changes, for the file connector) and writes only
records whose person and day have not been written during this run.

Watch stops when the feed answers with a login page.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var parseContentType string

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Normalize a saved export without any network access",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseContentType, "content-type", "", "content type of FILE (default: by extension)")
}

func runFetch(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer closePipeline(p, &err)

	results, err := p.RunAll(cmd.Context(), connectorConfigs(cfg))
	if err != nil {
		return err
	}
	total := 0
	for _, res := range results {
		total += len(res.Records)
	}
	slog.Info("fetch finished", "sources", len(results), "records", total)
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer closePipeline(p, &err)

	slog.Info("watching", "connector", cfg.Connector.Provider, "interval", cfg.PollInterval)
	err = p.Watch(cmd.Context(), connectorConfigs(cfg)[0], cfg.PollInterval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runParse(cmd *cobra.Command, args []string) (err error) {
	path := args[0]
	cfg, err := loadConfig(localFile(path, parseContentType))
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer closePipeline(p, &err)

	res, err := p.Run(cmd.Context(), connectorConfigs(cfg)[0])
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	slog.Info("parse finished",
		"rows", res.InputRows,
		"records", len(res.Records),
		"rejected", res.Rejected,
		"duplicates", res.Duplicates,
		"date_fallbacks", res.DateFallbacks,
	)
	return nil
}

// closePipeline closes the outputs and folds a failed close (an unflushed
// file buffer, say) into the command's error.
func closePipeline(p *pipeline.Pipeline, err *error) {
	if cerr := p.Close(); cerr != nil {
		*err = errors.Join(*err, fmt.Errorf("close output: %w", cerr))
	}
}

func newPipeline(cfg config.Config) (*pipeline.Pipeline, error) {
	eng, err := buildEngine(cfg, time.Now)
	if err != nil {
		return nil, err
	}
	conn, err := buildConnector(cfg)
	if err != nil {
		return nil, err
	}
	out, err := buildOutput(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.New(conn, eng, out), nil
}
