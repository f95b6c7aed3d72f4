// Package pin parses Pinterest pin links into references the downloader can
// act on.
package pin

import (
	"net/url"
	"regexp"
	"strings"

	errs "pinitdown/pkg/errors"
)

// ShortLinkHost is the host of Pinterest's share short links
const ShortLinkHost = "pin.it"

// Reference identifies one pin page
type Reference struct {
	// ID is the numeric pin identifier, empty for short links that have not
	// been resolved yet
	ID string
	// URL is the normalised page URL to fetch
	URL string
	// Input is the string exactly as the user supplied it
	Input string
}

// Short reports whether the reference is an unresolved pin.it link
func (r Reference) Short() bool {
	return r.ID == ""
}

var (
	digitsRe     = regexp.MustCompile(`^\d+$`)
	slugDigitsRe = regexp.MustCompile(`--(\d+)$`)
	linkSplitRe  = regexp.MustCompile(`[\s,]+`)
)

// Parse validates raw as a pin link. Accepted shapes are
// https://<sub>.pinterest.<tld>/pin/<digits>/..., the same with a
// "<slug>--<digits>" segment, and https://pin.it/<code>.
func Parse(raw string) (Reference, error) {
	input := raw
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, errs.InvalidReference(input, "empty link")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Reference{}, errs.InvalidReference(input, "not a URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Reference{}, errs.InvalidReference(input, "unsupported scheme "+u.Scheme)
	}
	u.Scheme = "https"
	u.Fragment = ""

	host := strings.ToLower(u.Hostname())
	switch {
	case host == ShortLinkHost:
		code := strings.Trim(u.Path, "/")
		if code == "" || strings.Contains(code, "/") {
			return Reference{}, errs.InvalidReference(input, "malformed short link")
		}
		return Reference{URL: u.String(), Input: input}, nil
	case isPinterestHost(host):
		id := IDFromPath(u.Path)
		if id == "" {
			return Reference{}, errs.InvalidReference(input, "expected a /pin/<id>/ link")
		}
		return Reference{ID: id, URL: u.String(), Input: input}, nil
	default:
		return Reference{}, errs.InvalidReference(input, "not a Pinterest link")
	}
}

// IDFromPath returns the pin identifier in a /pin/<id>/ path, or ""
func IDFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] != "pin" {
			continue
		}
		seg := parts[i+1]
		if digitsRe.MatchString(seg) {
			return seg
		}
		if m := slugDigitsRe.FindStringSubmatch(seg); m != nil {
			return m[1]
		}
		return ""
	}
	return ""
}

// IDFromURL is IDFromPath for a full URL, used after short links redirect
func IDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !isPinterestHost(strings.ToLower(u.Hostname())) {
		return ""
	}
	return IDFromPath(u.Path)
}

// isPinterestHost matches pinterest.com, www.pinterest.com, pinterest.co.uk,
// de.pinterest.com and pinterest.com.au. The pinterest label must sit
// directly before the public suffix.
func isPinterestHost(host string) bool {
	labels := strings.Split(host, ".")
	n := len(labels)
	if n >= 2 && labels[n-2] == "pinterest" && labels[n-1] != "" {
		return true
	}
	if n >= 3 && labels[n-3] == "pinterest" && (labels[n-2] == "co" || labels[n-2] == "com") && len(labels[n-1]) == 2 {
		return true
	}
	return false
}

// SplitLinks breaks pasted text into link entries. Entries may be separated
// by newlines, spaces or commas. Only tokens that cannot be a URL at all
// (neither a dot nor a slash) are dropped; everything else is kept so Parse
// can reject it with a reason.
func SplitLinks(text string) []string {
	text = strings.ReplaceAll(text, "\r", "\n")
	var links []string
	for _, part := range linkSplitRe.Split(strings.TrimSpace(text), -1) {
		if strings.ContainsAny(part, "./") {
			links = append(links, part)
		}
	}
	return links
}
