package storage

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// Key prefixes for each kind of uploaded object.
const (
	PrefixPhotos      = "photos"
	PrefixVideos      = "videos"
	PrefixServices    = "services"
	PrefixVideoThumbs = "videos/thumbs"
)

// ObjectKey builds "<prefix>/<unix-ms>.<ext>". The extension is taken from
// the uploaded file name as-is; when the name has none it is derived from
// contentType, and "bin" is used as a last resort.
func ObjectKey(prefix, filename, contentType string, now time.Time) string {
	return fmt.Sprintf("%s/%d.%s", prefix, now.UnixMilli(), extension(filename, contentType))
}

func extension(filename, contentType string) string {
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return ext
	}
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if ext, ok := knownExt[mediaType]; ok {
				return ext
			}
			if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
				return strings.TrimPrefix(exts[0], ".")
			}
		}
	}
	return "bin"
}

// knownExt pins the extension for common media types; mime.ExtensionsByType
// depends on the host's mime tables and may return e.g. ".jfif" for JPEG.
var knownExt = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/quicktime": "mov",
	"video/x-msvideo": "avi",
	"video/avi":       "avi",
}
