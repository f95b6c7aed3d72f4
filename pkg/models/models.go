package models

import (
	"time"
)

// MediaKind is the kind of asset a CDN URL points at
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// Image size tiers, highest wins
const (
	TierUnknown  = 0
	TierSized    = 1
	TierOriginal = 2
)

// Quality is the ranking tuple of a candidate. Fields are compared in
// declaration order; Format only breaks ties between otherwise equal images.
type Quality struct {
	Tier       int   `json:"tier,omitempty" yaml:"tier,omitempty"`
	Area       int64 `json:"area,omitempty" yaml:"area,omitempty"`
	Resolution int   `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Format     int   `json:"format,omitempty" yaml:"format,omitempty"`
}

// Compare returns -1, 0 or +1 when q ranks below, equal to or above o
func (q Quality) Compare(o Quality) int {
	switch {
	case q.Tier != o.Tier:
		return sign(int64(q.Tier - o.Tier))
	case q.Area != o.Area:
		return sign(q.Area - o.Area)
	case q.Resolution != o.Resolution:
		return sign(int64(q.Resolution - o.Resolution))
	case q.Format != o.Format:
		return sign(int64(q.Format - o.Format))
	}
	return 0
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// AssetCandidate is one media URL discovered on a pin page
type AssetCandidate struct {
	URL       string    `json:"url" yaml:"url"`
	Kind      MediaKind `json:"kind" yaml:"kind"`
	Quality   Quality   `json:"quality" yaml:"quality"`
	Extension string    `json:"extension" yaml:"extension"`
	// Order is the discovery index within the page
	Order int `json:"order" yaml:"order"`
}

// SelectedAsset is the winning candidate plus the file name reserved for it
type SelectedAsset struct {
	AssetCandidate
	Filename string `json:"filename" yaml:"filename"`
}

// Outcome is the final state of one processed link
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeNoAsset          Outcome = "no_asset"
	OutcomeInvalidReference Outcome = "invalid_reference"
	OutcomeFetchFailed      Outcome = "fetch_failed"
	OutcomeWriteFailed      Outcome = "write_failed"
)

// DownloadResult is the record of one processed link
type DownloadResult struct {
	Input    string        `json:"input" yaml:"input"`
	PinID    string        `json:"pin_id,omitempty" yaml:"pin_id,omitempty"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	Path     string        `json:"path,omitempty" yaml:"path,omitempty"`
	Reason   string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	AssetURL string        `json:"asset_url,omitempty" yaml:"asset_url,omitempty"`
	Kind     MediaKind     `json:"kind,omitempty" yaml:"kind,omitempty"`
	Bytes    int64         `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// OK reports whether the link was downloaded
func (r DownloadResult) OK() bool {
	return r.Outcome == OutcomeSuccess
}
