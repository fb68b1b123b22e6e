package audit

import (
	"context"
	"time"

	"github.com/franz/netease-audit/internal/catalog"
	"github.com/franz/netease-audit/internal/report"
	"github.com/franz/netease-audit/internal/store"
	"github.com/franz/netease-audit/internal/util"
)

// CatalogStore persists enumerated catalogs
type CatalogStore interface {
	SaveCatalog(ctx context.Context, artistID int64, entries []store.CatalogEntry, raw map[int64]string) (int, error)
}

// CrawlResult summarizes a crawl
type CrawlResult struct {
	Artists  int
	Finished int
	Failed   int
	Entries  int
	Inserted int
}

// Crawler enumerates artist catalogs and checkpoints each artist
type Crawler struct {
	enum   *catalog.Enumerator
	store  CatalogStore
	logger *report.EventLogger
}

// NewCrawler creates a crawler
func NewCrawler(src catalog.Source, st CatalogStore, logger *report.EventLogger) *Crawler {
	return &Crawler{
		enum:   catalog.New(src),
		store:  st,
		logger: logger,
	}
}

// Crawl enumerates each artist's full catalog and stores it together with
// the artist's finished flag. An artist whose enumeration fails is logged
// and left unfinished; the crawl moves on to the next one.
func (c *Crawler) Crawl(ctx context.Context, artistIDs []int64) (*CrawlResult, error) {
	result := &CrawlResult{Artists: len(artistIDs)}
	if len(artistIDs) == 0 {
		util.InfoLog("No artists waiting to be crawled")
		return result, nil
	}

	util.InfoLog("Crawling %d artists", len(artistIDs))

	for i, id := range artistIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		start := time.Now()
		var entries []store.CatalogEntry
		raw := make(map[int64]string)
		var pageErr error

		for page, err := range c.enum.Pages(ctx, id) {
			if err != nil {
				pageErr = err
				break
			}
			entries = append(entries, page.Entries...)
			for songID, text := range page.Raw {
				raw[songID] = text
			}
		}

		if pageErr != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
			c.logger.LogCrawl(id, len(entries), 0, time.Since(start), pageErr)
			util.WarnLog("[%d/%d] Artist %d: %v", i+1, len(artistIDs), id, pageErr)
			continue
		}

		inserted, err := c.store.SaveCatalog(ctx, id, entries, raw)
		if err != nil {
			c.logger.LogCrawl(id, len(entries), 0, time.Since(start), err)
			return result, err
		}

		result.Finished++
		result.Entries += len(entries)
		result.Inserted += inserted
		c.logger.LogCrawl(id, len(entries), inserted, time.Since(start), nil)
		util.InfoLog("[%d/%d] Artist %d: %d entries, %d new songs", i+1, len(artistIDs), id, len(entries), inserted)
	}

	return result, nil
}
