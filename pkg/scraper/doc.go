// Package scraper drives the download of Pinterest pins.
//
// For every link the Scraper parses the pin reference, fetches the pin page,
// extracts the media candidates, selects the best one, fetches it and writes
// it to the output directory as pin-<id>.<ext>, adding a -N suffix when the
// name is taken. Each link produces exactly one DownloadResult; failures of
// one link never stop the batch.
//
// Usage:
//
//	s := scraper.NewFromConfig(cfg)
//	results := s.ProcessBatch(ctx, links, func(i int, r models.DownloadResult) {
//	    ui.PrintResult(i+1, len(links), r)
//	})
//
// The page fetcher, asset fetcher and storage writer are interfaces so tests
// can substitute mocks from the mocks package or an httptest server.
package scraper
