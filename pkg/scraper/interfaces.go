package scraper

import (
	"context"

	"pinitdown/pkg/pinterest"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// PageFetcher retrieves the HTML of a pin page
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (pinterest.Page, error)
}

// AssetFetcher retrieves the bytes of a media asset
type AssetFetcher interface {
	FetchAsset(ctx context.Context, url string) (pinterest.Asset, error)
}

// StorageWriter persists assets in the output directory
type StorageWriter interface {
	EnsureDir() error
	Exists(name string) bool
	Write(name string, data []byte) (string, error)
}
