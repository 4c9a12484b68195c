package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"gadgetsite/internal/storage"
)

// File is an uploaded file as received from a multipart form.
type File struct {
	Name        string
	Size        int64
	ContentType string // as declared by the client, may be empty
	Body        io.ReadSeeker
}

// mediaClass is the family of content types a field accepts.
type mediaClass string

const (
	classImage mediaClass = "image"
	classVideo mediaClass = "video"
)

var allowedTypes = map[mediaClass]map[string]bool{
	classImage: {
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	classVideo: {
		"video/mp4":       true,
		"video/webm":      true,
		"video/quicktime": true,
		"video/avi":       true,
		"video/x-msvideo": true,
	},
}

// Limits caps upload sizes in bytes per media class.
type Limits struct {
	Image int64
	Video int64
}

func (l Limits) max(c mediaClass) int64 {
	if c == classVideo {
		return l.Video
	}
	return l.Image
}

// upload is a File that passed validation.
type upload struct {
	file        *File
	contentType string
}

// checkFile validates f against class and limits without touching any
// remote service. The content type is sniffed from the first 512 bytes;
// containers the sniffer does not know (e.g. QuickTime) fall back to the
// declared type or the file extension.
func checkFile(field string, f *File, class mediaClass, limits Limits) (*upload, error) {
	if f.Size <= 0 {
		return nil, invalid(field, "The selected file is empty.")
	}
	if limit := limits.max(class); limit > 0 && f.Size > limit {
		return nil, invalid(field, fmt.Sprintf("File too large. Maximum size is %d MB.", limit>>20))
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(f.Body, sniff)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, invalid(field, "Failed to read the selected file.")
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return nil, invalid(field, "Failed to read the selected file.")
	}

	contentType := http.DetectContentType(sniff[:n])
	if contentType == "application/octet-stream" {
		contentType = declaredType(f)
	}
	if !allowedTypes[class][contentType] {
		return nil, invalid(field, fmt.Sprintf("File type %q is not allowed.", contentType))
	}
	return &upload{file: f, contentType: contentType}, nil
}

func declaredType(f *File) string {
	if f.ContentType != "" {
		if mediaType, _, err := mime.ParseMediaType(f.ContentType); err == nil {
			return mediaType
		}
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name))); t != "" {
		mediaType, _, _ := mime.ParseMediaType(t)
		return mediaType
	}
	return "application/octet-stream"
}

// put stores u under prefix and returns its public URL.
func (b *base) put(ctx context.Context, prefix string, u *upload) (string, string, error) {
	key := storage.ObjectKey(prefix, u.file.Name, u.contentType, b.now())
	if err := b.blobs.Put(ctx, key, u.contentType, u.file.Body, u.file.Size); err != nil {
		return "", "", &UploadError{Key: key, Err: err}
	}
	return key, b.blobs.PublicURL(key), nil
}

// orphaned logs blobs left without a referencing row after a failed write.
func orphaned(op string, err error, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		slog.Error("orphaned blob after failed write", "op", op, "key", key, "error", err)
	}
}

// cleanup removes blobs of a deleted row when enabled. Failures are
// logged and never fail the delete.
func (b *base) cleanup(ctx context.Context, urls ...string) {
	if !b.cleanupOnDelete {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		key, ok := b.blobs.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := b.blobs.Remove(ctx, key); err != nil {
			slog.Warn("blob cleanup failed", "key", key, "error", err)
		}
	}
}
