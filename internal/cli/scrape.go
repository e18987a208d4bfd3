package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/fresque-scraper/internal/calendar"
	"github.com/pfrederiksen/fresque-scraper/internal/config"
	"github.com/pfrederiksen/fresque-scraper/internal/location"
	"github.com/pfrederiksen/fresque-scraper/internal/logger"
	"github.com/pfrederiksen/fresque-scraper/internal/metrics"
	"github.com/pfrederiksen/fresque-scraper/internal/pipeline"
	"github.com/pfrederiksen/fresque-scraper/internal/record"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
	"github.com/pfrederiksen/fresque-scraper/internal/scraper"
	"github.com/pfrederiksen/fresque-scraper/internal/storage"
)

type scrapeOptions struct {
	sources     []string
	outputDir   string
	timezone    string
	metricsFile string
	icsFile     string
	stdout      bool
	format      string
	sortOrder   string
}

func newScrapeCmd(a *app) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape every configured source and write the run output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScrape(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.sources, "source", nil, "Only scrape these sources (name or family, repeatable)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for run outputs (overrides config)")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "Origin timezone of scraped times (overrides config)")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write run counters to this Prometheus textfile")
	cmd.Flags().StringVar(&opts.icsFile, "ics", "", "Also export emitted records as an iCalendar file")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Print records to stdout instead of writing a file")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Summary format: text or json")
	cmd.Flags().StringVar(&opts.sortOrder, "sort", "", "Sort records by: date, workshop or id (default: scrape order)")

	return cmd
}

func (a *app) runScrape(cmd *cobra.Command, opts *scrapeOptions) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}
	sortOrder := SortOrder(strings.ToLower(opts.sortOrder))
	if !sortOrder.Valid() {
		return fmt.Errorf("invalid sort order: %s (must be 'date', 'workshop' or 'id')", opts.sortOrder)
	}

	cfg := a.cfg
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sources, err := cfg.SelectSources(opts.sources)
	if err != nil {
		return err
	}

	var store *storage.Storage
	if !opts.stdout {
		if store, err = storage.New(cfg.OutputDir); err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
	}

	startedAt := time.Now()
	m := metrics.New()
	geocoder := location.NewNominatim(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, cfg.Geocoder.MinInterval)
	resolver := location.NewResolver(geocoder, m)
	processor := pipeline.New(resolver, record.NewBuilder(loc), cfg.MaxEventDuration, m)
	sc := scraper.New(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, m)

	logger.Info("Starting scrape", logger.Fields{
		"sources":  len(sources),
		"timezone": loc.String(),
	})

	records, err := scrapeSources(cmd.Context(), sc, processor, sources)
	if err != nil {
		return err
	}
	sortRecords(records, sortOrder)

	summary := &Summary{
		RunID:      a.runID,
		StartedAt:  startedAt.UTC(),
		Records:    len(records),
		ByWorkshop: countByWorkshop(m, sources),
		Pages:      countPages(m, sources),
		Rejections: countRejections(m),
		CacheSize:  resolver.Cache().Size(),
	}

	if opts.stdout {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("writing records: %w", err)
		}
	} else {
		path, err := store.SaveRecords(records, startedAt)
		if err != nil {
			return err
		}
		summary.OutputPath = path
		logger.Info("Saved records", logger.Fields{"path": path, "count": len(records)})
	}

	if opts.icsFile != "" {
		if err := writeCalendar(opts.icsFile, records, startedAt); err != nil {
			return err
		}
	}

	if opts.metricsFile != "" {
		if err := m.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
	}

	// the summary goes to stderr when stdout carries the records
	out := cmd.OutOrStdout()
	if opts.stdout {
		out = cmd.ErrOrStderr()
	}
	if err := WriteSummary(out, summary, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// scrapeSources runs each source through the processor, one event page at
// a time. A source whose listing cannot be read is logged and skipped; an
// event page that fails to load is logged and skipped. Only cancellation
// and unexpected pipeline errors abort the run.
func scrapeSources(ctx context.Context, sc *scraper.Scraper, p *pipeline.Processor, sources []config.Source) ([]*record.Record, error) {
	records := make([]*record.Record, 0)
	var fatal error
	var log *logger.Logger

	handle := func(res scraper.Result) error {
		if res.Err != nil {
			if reject.IsRejection(res.Err) {
				p.Reject(res.Link, res.Err)
			} else {
				log.Error("Failed to scrape event", logger.Fields{"link": res.Link}, res.Err)
			}
			return nil
		}

		rec, err := p.Process(ctx, res.Candidate)
		if err != nil {
			if reject.IsRejection(err) {
				return nil
			}
			fatal = err
			return err
		}
		records = append(records, rec)
		return nil
	}

	for _, src := range sources {
		log = logger.Default().With(logger.Fields{"source": src.Name})
		err := sc.Scrape(ctx, src, handle)
		if ctx.Err() != nil {
			return records, ctx.Err()
		}
		if fatal != nil {
			return records, fatal
		}
		if err != nil {
			log.Error("Failed to scrape source", nil, err)
		}
	}

	return records, nil
}

func writeCalendar(path string, records []*record.Record, stamp time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating calendar: %w", err)
	}
	defer f.Close()

	skipped, err := calendar.WriteICS(f, records, stamp)
	if err != nil {
		return err
	}
	if skipped > 0 {
		logger.Warn("Records left out of calendar", logger.Fields{"skipped": skipped})
	}
	return f.Close()
}

func countByWorkshop(m *metrics.Metrics, sources []config.Source) map[string]int {
	counts := make(map[string]int)
	for _, src := range sources {
		name := record.WorkshopName(src.ID)
		if n := int(m.Emitted(name)); n > 0 {
			counts[name] = n
		}
	}
	return counts
}

func countPages(m *metrics.Metrics, sources []config.Source) map[string]int {
	counts := make(map[string]int)
	for _, src := range sources {
		family := string(src.Family)
		if n := int(m.Pages(family)); n > 0 {
			counts[family] = n
		}
	}
	return counts
}

func countRejections(m *metrics.Metrics) map[string]int {
	counts := make(map[string]int)
	for _, kind := range reject.Kinds() {
		if n := int(m.Rejections(kind.String())); n > 0 {
			counts[kind.String()] = n
		}
	}
	return counts
}
