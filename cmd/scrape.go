package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/scraper"
	"github.com/suvichaar/quotepipe/internal/table"
)

var (
	scrapeURLs   string
	scrapePrefix string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape quote pages into a raw quotes CSV",
	Long: `Walks each source's pages in order and collects quote/author rows.

Sources are given as full URLs; the first path segment is the slug. A failed
page ends that source's scan and the next source continues.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if scrapeURLs == "" || scrapePrefix == "" {
			return eris.New("scrape: both --urls and --prefix are required")
		}

		s := scraper.New(
			scraper.WithBaseURL(cfg.Scrape.BaseURL),
			scraper.WithMaxPages(cfg.Scrape.MaxPages),
			scraper.WithPageDelay(time.Duration(cfg.Scrape.PageDelayMS)*time.Millisecond),
		)

		var rows []model.QuoteRow
		for _, raw := range strings.Split(scrapeURLs, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			slug := scraper.SlugFromURL(raw)
			if slug == "" {
				zap.L().Warn("scrape: skipping URL without a slug", zap.String("url", raw))
				continue
			}

			zap.L().Info("scraping source", zap.String("slug", slug))
			slugRows := s.ScrapeSlug(ctx, slug)
			// Serial numbers restart per slug; renumber across the whole set.
			for i := range slugRows {
				slugRows[i].Serial = len(rows) + i + 1
			}
			rows = append(rows, slugRows...)
		}

		if len(rows) == 0 {
			zap.L().Warn("scrape: no quotes scraped")
			return nil
		}

		out := quotesTable(rows)
		name := artifactName(scrapePrefix, runTimestamp(), "csv")
		if err := out.WriteFile(name); err != nil {
			return err
		}

		zap.L().Info("scrape complete",
			zap.Int("quotes", len(rows)),
			zap.String("file", name),
		)
		return nil
	},
}

// quotesTable renders scraped rows as the raw quotes CSV.
func quotesTable(rows []model.QuoteRow) *table.Table {
	t := &table.Table{Header: []string{"Serial No", "Quote", "Link", "Author"}}
	for _, row := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(row.Serial), row.Quote, row.Link, row.Author,
		})
	}
	return t
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURLs, "urls", "", "comma-separated quote page URLs")
	scrapeCmd.Flags().StringVar(&scrapePrefix, "prefix", "quotes", "output filename prefix")
	rootCmd.AddCommand(scrapeCmd)
}
