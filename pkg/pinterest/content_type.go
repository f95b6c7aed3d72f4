package pinterest

import (
	"mime"
	"strings"
)

var contentTypeExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"video/mp4":       "mp4",
	"video/quicktime": "mov",
}

// ExtFromContentType maps a Content-Type header onto a file extension, or
// "" when the type is unknown
func ExtFromContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return contentTypeExtensions[strings.ToLower(mediaType)]
}
