package extractor

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pinitdown/pkg/models"
)

var (
	// pinimgURLRe matches CDN URLs anywhere in the page: markup, srcset
	// lists and the embedded state JSON once it has been unescaped
	pinimgURLRe = regexp.MustCompile(`(?i)https?://[a-z0-9.-]*pinimg\.com/[^\s"'<>()\\]+`)

	jsonUnescaper = strings.NewReplacer(
		`\/`, "/",
		`\u002F`, "/",
		`\u002f`, "/",
		`\u0026`, "&",
		`&amp;`, "&",
	)
)

var (
	imageExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	videoExtensions = map[string]bool{"mp4": true}
)

// Extract returns every downloadable media asset referenced by a pin page, in
// discovery order, with identical URLs collapsed onto their first occurrence.
// A page without recognisable assets yields an empty slice.
func Extract(page string) []models.AssetCandidate {
	text := jsonUnescaper.Replace(page)

	var urls []string
	hints := make(map[string]int)
	for _, loc := range pinimgURLRe.FindAllStringIndex(text, -1) {
		raw := strings.TrimRight(text[loc[0]:loc[1]], ".,;:")
		urls = append(urls, raw)
		if h := fieldResolution(text, loc[0], loc[1]); h > hints[raw] {
			hints[raw] = h
		}
	}
	urls = append(urls, metaMediaURLs(page)...)

	seen := make(map[string]bool, len(urls))
	candidates := make([]models.AssetCandidate, 0, len(urls))
	for _, raw := range urls {
		if seen[raw] {
			continue
		}
		seen[raw] = true

		cand, ok := classify(raw, hints[raw])
		if !ok {
			continue
		}
		cand.Order = len(candidates)
		candidates = append(candidates, cand)
	}
	return candidates
}

// metaMediaURLs collects OpenGraph and Twitter card media. These may point
// outside the pinimg CDN so the regex scan alone would miss them.
func metaMediaURLs(page string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var urls []string
	doc.Find("meta[content]").Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr("property", "")
		if key == "" {
			key = s.AttrOr("name", "")
		}
		key = strings.ToLower(key)
		if !strings.HasPrefix(key, "og:video") &&
			!strings.HasPrefix(key, "og:image") &&
			!strings.HasPrefix(key, "twitter:image") {
			return
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if strings.HasPrefix(content, "http://") || strings.HasPrefix(content, "https://") {
			urls = append(urls, content)
		}
	})
	return urls
}

// classify turns a raw URL into a scored candidate. URLs whose path does not
// end in a known image or video extension are not downloadable. fieldHint is
// the resolution read from the JSON object around the URL, used for videos
// whose path carries no hint.
func classify(raw string, fieldHint int) (models.AssetCandidate, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return models.AssetCandidate{}, false
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))

	switch {
	case videoExtensions[ext]:
		q := videoQuality(u.Path)
		if q.Resolution == 0 {
			q.Resolution = fieldHint
		}
		return models.AssetCandidate{
			URL:       raw,
			Kind:      models.KindVideo,
			Quality:   q,
			Extension: ext,
		}, true
	case imageExtensions[ext]:
		if ext == "jpeg" {
			ext = "jpg"
		}
		return models.AssetCandidate{
			URL:       raw,
			Kind:      models.KindImage,
			Quality:   imageQuality(u.Path, ext),
			Extension: ext,
		}, true
	}
	return models.AssetCandidate{}, false
}
