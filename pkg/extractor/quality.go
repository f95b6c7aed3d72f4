package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"pinitdown/pkg/models"
)

var (
	// sizeSegmentRe matches CDN size segments: 736x, 474x, 60x60, 140x140_RS
	sizeSegmentRe = regexp.MustCompile(`(?i)^(\d{2,5})x(\d{2,5})?(?:_[a-z0-9]+)?$`)

	// resolutionHintRe matches 720p style hints as a path segment or filename part
	resolutionHintRe = regexp.MustCompile(`(?i)(?:^|[/_.-])(\d{3,4})p(?:[/_.-]|$)`)

	// widthHintRe matches a _720w width suffix in a file name
	widthHintRe = regexp.MustCompile(`(?i)_(\d{3,4})w(?:[/_.-]|$)`)

	widthFieldRe  = regexp.MustCompile(`"width"\s*:\s*(\d{2,5})`)
	heightFieldRe = regexp.MustCompile(`"height"\s*:\s*(\d{2,5})`)
)

// maxObjectSpan bounds how far fieldResolution looks for the enclosing
// JSON object of a URL
const maxObjectSpan = 2048

const originalsSegment = "originals"

// imageQuality ranks an image by its size segment. The first directory
// segment that names a size decides; the filename itself is never a size.
func imageQuality(urlPath, ext string) models.Quality {
	q := models.Quality{Format: formatPriority(ext)}

	segments := strings.Split(strings.Trim(urlPath, "/"), "/")
	for _, seg := range segments[:len(segments)-1] {
		if strings.EqualFold(seg, originalsSegment) {
			q.Tier = models.TierOriginal
			return q
		}
		m := sizeSegmentRe.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		w, _ := strconv.ParseInt(m[1], 10, 64)
		h := w
		if m[2] != "" {
			h, _ = strconv.ParseInt(m[2], 10, 64)
		}
		q.Tier = models.TierSized
		q.Area = w * h
		return q
	}
	return q
}

// formatPriority prefers JPEG, then PNG, over the other encodings
func formatPriority(ext string) int {
	switch ext {
	case "jpg", "jpeg":
		return 2
	case "png":
		return 1
	}
	return 0
}

// videoQuality reads the largest resolution or width hint in the path. No
// hint leaves every video equal, so discovery order decides between them.
func videoQuality(urlPath string) models.Quality {
	best := 0
	for _, re := range []*regexp.Regexp{resolutionHintRe, widthHintRe} {
		for _, m := range re.FindAllStringSubmatch(urlPath, -1) {
			if v, err := strconv.Atoi(m[1]); err == nil && v > best {
				best = v
			}
		}
	}
	return models.Quality{Resolution: best}
}

// fieldResolution reads the "width" and "height" fields of the JSON object
// that holds the URL at text[start:end], as in the video_list renditions.
// The smaller side is returned so 720x1280 ranks like a 720p hint. URLs
// outside a JSON object yield 0.
func fieldResolution(text string, start, end int) int {
	from := max(0, start-maxObjectSpan)
	open := strings.LastIndexAny(text[from:start], "{}")
	if open < 0 || text[from+open] != '{' {
		return 0
	}
	to := min(len(text), end+maxObjectSpan)
	closing := strings.IndexAny(text[end:to], "{}")
	if closing < 0 || text[end+closing] != '}' {
		return 0
	}
	obj := text[from+open : end+closing+1]
	if strings.ContainsAny(obj, "<>") {
		return 0
	}

	w := intField(widthFieldRe, obj)
	h := intField(heightFieldRe, obj)
	switch {
	case w > 0 && h > 0:
		return min(w, h)
	case w > 0:
		return w
	default:
		return h
	}
}

func intField(re *regexp.Regexp, obj string) int {
	m := re.FindStringSubmatch(obj)
	if m == nil {
		return 0
	}
	v, _ := strconv.Atoi(m[1])
	return v
}
