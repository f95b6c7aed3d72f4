// Package selector picks the single asset to download from a pin page and
// decides the file name it is saved under.
package selector

import (
	"pinitdown/pkg/models"
	"pinitdown/pkg/pin"
)

// Select returns the best candidate. Any video beats every image; within a
// kind the highest Quality wins and equal quality goes to the candidate
// discovered first. It reports false when there are no candidates.
func Select(cands []models.AssetCandidate) (models.AssetCandidate, bool) {
	var (
		best  models.AssetCandidate
		found bool
	)
	for _, c := range cands {
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func better(c, best models.AssetCandidate) bool {
	if c.Kind != best.Kind {
		return c.Kind == models.KindVideo
	}
	if cmp := c.Quality.Compare(best.Quality); cmp != 0 {
		return cmp > 0
	}
	return c.Order < best.Order
}

// Best selects the winning candidate and reserves a free file name for it
func Best(ref pin.Reference, cands []models.AssetCandidate, namer *Namer) (*models.SelectedAsset, bool) {
	winner, ok := Select(cands)
	if !ok {
		return nil, false
	}
	return &models.SelectedAsset{
		AssetCandidate: winner,
		Filename:       namer.Reserve(BaseName(ref, winner)),
	}, true
}
