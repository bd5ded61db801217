package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/latewatch/internal/config"
	"github.com/crimson-sun/latewatch/internal/ingest/dedup"
	"github.com/crimson-sun/latewatch/internal/model"
	"github.com/crimson-sun/latewatch/internal/pipeline"
	"github.com/crimson-sun/latewatch/internal/report"
)

var (
	summaryFile        string
	summaryContentType string
	summaryMonth       string
	summaryPerson      string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print dashboard figures for the current feed",
	Long: `Summary fetches the configured sources (or reads --file) and prints the
headline figures: totals, today's count, average lateness, the groups
with most late arrivals and the last seven days.

--month YYYY-MM adds that month's leader board; --person NAME adds one
person's history.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&summaryFile, "file", "", "read a saved export instead of fetching")
	f.StringVar(&summaryContentType, "content-type", "", "content type of --file (default: by extension)")
	f.StringVar(&summaryMonth, "month", "", "show the leader board for YYYY-MM")
	f.StringVar(&summaryPerson, "person", "", "show one person's history")
}

// collector keeps every record written to it.
type collector struct {
	mu      sync.Mutex
	records []model.LateRecord
}

func (c *collector) Write(_ context.Context, rec model.LateRecord) error {
	c.mu.Lock()
	c.records = append(c.records, rec)
	c.mu.Unlock()
	return nil
}

func (c *collector) Close() error { return nil }

func runSummary(cmd *cobra.Command, _ []string) error {
	var overrides []func(*config.Config)
	if summaryFile != "" {
		overrides = append(overrides, localFile(summaryFile, summaryContentType))
	}
	if summaryMonth != "" {
		if _, err := time.Parse("2006-01", summaryMonth); err != nil {
			return fmt.Errorf("--month must be YYYY-MM, got %q", summaryMonth)
		}
	}
	cfg, err := loadConfig(overrides...)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg, time.Now)
	if err != nil {
		return err
	}
	conn, err := buildConnector(cfg)
	if err != nil {
		return err
	}

	sink := &collector{}
	p := pipeline.New(conn, eng, sink)
	defer p.Close()
	if _, err := p.RunAll(cmd.Context(), connectorConfigs(cfg)); err != nil {
		return err
	}
	records := sink.records
	dedup.SortNewestFirst(records)

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, renderSummary(report.Summarize(records, time.Now(), loc)))
	if summaryMonth != "" {
		fmt.Fprintln(w, renderMonth(report.Monthly(records, summaryMonth, loc)))
	}
	if summaryPerson != "" {
		fmt.Fprintln(w, renderPerson(report.Person(records, summaryPerson), loc))
	}
	return nil
}
