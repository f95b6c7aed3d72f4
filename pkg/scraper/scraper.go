package scraper

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"pinitdown/internal/downloader"
	"pinitdown/pkg/config"
	errs "pinitdown/pkg/errors"
	"pinitdown/pkg/extractor"
	"pinitdown/pkg/logger"
	"pinitdown/pkg/models"
	"pinitdown/pkg/pin"
	"pinitdown/pkg/pinterest"
	"pinitdown/pkg/selector"
	"pinitdown/pkg/storage"
)

// Scraper runs the per-link download pipeline: parse the link, fetch the
// pin page, extract and rank its assets, fetch the winner and save it under
// a collision-free name
type Scraper struct {
	pages       PageFetcher
	assets      AssetFetcher
	store       StorageWriter
	namer       *selector.Namer
	concurrency int
	logger      logger.Logger

	dirOnce sync.Once
	dirErr  error
}

// New creates a Scraper over the given collaborators. Names handed out are
// tracked for the lifetime of the Scraper, so links processed by the same
// instance never share a file name.
func New(pages PageFetcher, assets AssetFetcher, store StorageWriter, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		pages:       pages,
		assets:      assets,
		store:       store,
		namer:       selector.NewNamer(selector.NewLedger(), store.Exists),
		concurrency: 1,
		logger:      log,
	}
}

// NewFromConfig wires the HTTP client and the storage manager from cfg
func NewFromConfig(cfg *config.Config) *Scraper {
	log := logger.GetLogger()

	opts := pinterest.OptionsFromConfig(cfg.HTTP)
	opts.Logger = log
	client := pinterest.NewClient(opts)

	s := New(client, client, storage.NewManager(cfg.Output.Directory), log)
	s.SetConcurrency(cfg.Download.Concurrent)

	logger.LogComponentStart("scraper", map[string]interface{}{
		"output_dir":  cfg.Output.Directory,
		"concurrency": s.concurrency,
		"insecure":    cfg.HTTP.InsecureSkipVerify,
	})
	return s
}

// SetConcurrency sets how many links ProcessBatch works on at once
func (s *Scraper) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	if n > config.MaxConcurrent {
		n = config.MaxConcurrent
	}
	s.concurrency = n
}

// ProcessLink downloads the best asset of one pin. It never returns an
// error; every failure is recorded in the result.
func (s *Scraper) ProcessLink(ctx context.Context, link string) models.DownloadResult {
	start := time.Now()
	res := s.processLink(ctx, link)
	res.Duration = time.Since(start)
	logger.LogDownload(res)
	return res
}

func (s *Scraper) processLink(ctx context.Context, link string) models.DownloadResult {
	res := models.DownloadResult{Input: strings.TrimSpace(link)}
	log := s.logger.WithField("input", res.Input)

	ref, err := pin.Parse(link)
	if err != nil {
		return failed(res, err)
	}
	res.PinID = ref.ID

	page, err := s.pages.FetchPage(ctx, ref.URL)
	if err != nil {
		return failed(res, err)
	}

	if ref.Short() {
		ref.ID = pin.IDFromURL(page.URL)
		res.PinID = ref.ID
		log.WithFields(map[string]interface{}{
			"final_url": page.URL,
			"pin_id":    ref.ID,
		}).Debug("Resolved short link")
	}

	candidates := extractor.Extract(page.Body)
	winner, ok := selector.Select(candidates)
	if !ok {
		return failed(res, errs.NoAssetFound(page.URL))
	}
	res.AssetURL = winner.URL
	res.Kind = winner.Kind
	log.DebugWithFields("Selected asset", map[string]interface{}{
		"candidates": len(candidates),
		"url":        winner.URL,
		"kind":       string(winner.Kind),
	})

	asset, err := s.assets.FetchAsset(ctx, winner.URL)
	if err != nil {
		return failed(res, err)
	}

	if err := s.ensureDir(); err != nil {
		return failed(res, err)
	}

	name := s.namer.Reserve(selector.BaseName(ref, winner))
	if served := pinterest.ExtFromContentType(asset.ContentType); served != "" && served != strings.TrimPrefix(path.Ext(name), ".") {
		log.WithFields(map[string]interface{}{
			"content_type": asset.ContentType,
			"file":         name,
		}).Warn("Served format differs from file extension")
	}

	written, err := s.store.Write(name, asset.Data)
	if err != nil {
		s.namer.Release(name)
		if errs.TypeOf(err) == "" {
			err = errs.WriteFailed(errs.CauseIO, name, err)
		}
		return failed(res, err)
	}

	res.Outcome = models.OutcomeSuccess
	res.Path = written
	res.Bytes = int64(len(asset.Data))
	return res
}

// ensureDir creates the output directory once per Scraper. A failure is
// remembered and reported for every link.
func (s *Scraper) ensureDir() error {
	s.dirOnce.Do(func() {
		s.dirErr = s.store.EnsureDir()
		if s.dirErr != nil && errs.TypeOf(s.dirErr) == "" {
			s.dirErr = errs.WriteFailed(errs.CauseIO, "output directory", s.dirErr)
		}
	})
	return s.dirErr
}

// ProcessBatch processes links and returns one result per link in input
// order. onResult, when not nil, is called as each link finishes.
func (s *Scraper) ProcessBatch(ctx context.Context, links []string, onResult func(index int, res models.DownloadResult)) []models.DownloadResult {
	if s.concurrency > 1 && len(links) > 1 {
		return downloader.Run(ctx, s.concurrency, links, s, s.logger, onResult)
	}

	results := make([]models.DownloadResult, 0, len(links))
	for i, link := range links {
		res := s.ProcessLink(ctx, link)
		results = append(results, res)
		if onResult != nil {
			onResult(i, res)
		}
	}
	return results
}

// OutcomeOf maps a pipeline error onto the result outcome it produces
func OutcomeOf(err error) models.Outcome {
	switch errs.TypeOf(err) {
	case errs.ErrorTypeInvalidReference:
		return models.OutcomeInvalidReference
	case errs.ErrorTypeNoAsset:
		return models.OutcomeNoAsset
	case errs.ErrorTypeWriteFailed:
		return models.OutcomeWriteFailed
	}
	return models.OutcomeFetchFailed
}

func failed(res models.DownloadResult, err error) models.DownloadResult {
	res.Outcome = OutcomeOf(err)
	res.Reason = err.Error()
	return res
}
