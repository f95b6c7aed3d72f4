package selector

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"

	"pinitdown/pkg/models"
	"pinitdown/pkg/pin"
)

const (
	namePrefix   = "pin-"
	hashNameSize = 12
)

// BaseName is the preferred file name for an asset: pin-<id>.<ext>. Links
// without a pin ID fall back to a short hash of the asset URL so the name is
// still stable across runs.
func BaseName(ref pin.Reference, cand models.AssetCandidate) string {
	id := ref.ID
	if id == "" {
		sum := sha256.Sum256([]byte(cand.URL))
		id = hex.EncodeToString(sum[:])[:hashNameSize]
	}
	return namePrefix + id + "." + extension(cand)
}

// extension prefers the URL path, then the candidate's recorded extension,
// then a default for the media kind
func extension(cand models.AssetCandidate) string {
	var ext string
	if u, err := url.Parse(cand.URL); err == nil {
		ext = strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	}
	if ext == "" {
		ext = strings.ToLower(cand.Extension)
	}
	switch {
	case ext == "jpeg":
		return "jpg"
	case ext != "":
		return ext
	case cand.Kind == models.KindVideo:
		return "mp4"
	}
	return "jpg"
}

// Namer hands out file names that collide neither with files already in the
// output directory nor with names given out earlier in the same batch
type Namer struct {
	Ledger *Ledger
	// Exists reports whether a file with the given name is already present
	Exists func(name string) bool
}

// NewNamer returns a Namer backed by ledger and the exists check
func NewNamer(ledger *Ledger, exists func(name string) bool) *Namer {
	if ledger == nil {
		ledger = NewLedger()
	}
	return &Namer{Ledger: ledger, Exists: exists}
}

// Reserve returns base when it is free, otherwise the first free
// <stem>-N<ext> for N = 1, 2, ... The returned name is recorded in the
// ledger.
func (n *Namer) Reserve(base string) string {
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		if n.Exists != nil && n.Exists(name) {
			continue
		}
		if n.Ledger.Reserve(name) {
			return name
		}
	}
}

// Release gives a name back after its write failed
func (n *Namer) Release(name string) {
	n.Ledger.Release(name)
}
