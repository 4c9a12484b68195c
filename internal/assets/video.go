package assets

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"gadgetsite/internal/models"
	"gadgetsite/internal/storage"
)

// VideoTable is the table store for videos, see store.VideoStore.
type VideoTable interface {
	List(ctx context.Context, categoryID *uuid.UUID) ([]models.Video, error)
	Create(ctx context.Context, in models.VideoInput, videoURL string, thumbnailURL *string) (*models.Video, error)
	Update(ctx context.Context, id uuid.UUID, p models.VideoPatch) (*models.Video, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Video, error)
}

// VideoService manages gallery videos and their optional thumbnails.
type VideoService struct {
	*base
	table VideoTable
}

// NewVideoService creates a VideoService.
func NewVideoService(table VideoTable, d Deps) *VideoService {
	return &VideoService{base: newBase(models.KindVideo, d), table: table}
}

// List returns videos newest first, restricted to f.CategoryID when set.
func (s *VideoService) List(ctx context.Context, f Filter) ([]models.Video, error) {
	return cachedList(ctx, s.base, models.KindVideo, Filter{CategoryID: f.CategoryID}.key(),
		func(ctx context.Context) ([]models.Video, error) {
			return s.table.List(ctx, f.CategoryID)
		})
}

// preparedThumb is a validated thumbnail already downscaled to JPEG.
type preparedThumb struct {
	data []byte
}

func (s *VideoService) prepareThumb(thumb *File) (*preparedThumb, error) {
	if thumb == nil {
		return nil, nil
	}
	if _, err := checkFile("thumbnail", thumb, classImage, s.limits); err != nil {
		return nil, err
	}
	data, err := makeThumbnail(thumb.Body, thumbMaxWidth)
	if err != nil {
		return nil, invalid("thumbnail", "The thumbnail could not be read as an image.")
	}
	return &preparedThumb{data: data}, nil
}

func (s *VideoService) putThumb(ctx context.Context, t *preparedThumb) (string, string, error) {
	key := storage.ObjectKey(storage.PrefixVideoThumbs, "thumb.jpg", "image/jpeg", s.now())
	if err := s.blobs.Put(ctx, key, "image/jpeg", bytes.NewReader(t.data), int64(len(t.data))); err != nil {
		return "", "", &UploadError{Key: key, Err: err}
	}
	return key, s.blobs.PublicURL(key), nil
}

// Create uploads the video (and thumbnail, if given) and inserts the row.
// A video file is required.
func (s *VideoService) Create(ctx context.Context, in models.VideoInput, file, thumb *File) (*models.Video, error) {
	title, err := requiredText("title", "Title", in.Title)
	if err != nil {
		return nil, err
	}
	in.Title = title
	in.Description = optionalText(in.Description)

	if file == nil {
		return nil, invalid("file", "Please select a video to upload.")
	}
	if err := s.requireBlobs("file"); err != nil {
		return nil, err
	}
	up, err := checkFile("file", file, classVideo, s.limits)
	if err != nil {
		return nil, err
	}
	pt, err := s.prepareThumb(thumb)
	if err != nil {
		return nil, err
	}

	videoKey, videoURL, err := s.put(ctx, storage.PrefixVideos, up)
	if err != nil {
		return nil, err
	}
	var thumbKey string
	var thumbURL *string
	if pt != nil {
		key, url, err := s.putThumb(ctx, pt)
		if err != nil {
			orphaned("create video", err, videoKey)
			return nil, err
		}
		thumbKey, thumbURL = key, &url
	}

	video, err := s.table.Create(ctx, in, videoURL, thumbURL)
	if err != nil {
		orphaned("create video", err, videoKey, thumbKey)
		return nil, &WriteError{Op: "create video", Err: err}
	}

	s.publish(ctx, video.ID, ActionCreate)
	return video, nil
}

// Update applies the provided fields. The video and thumbnail URLs change
// only when the matching file is uploaded.
func (s *VideoService) Update(ctx context.Context, id uuid.UUID, p models.VideoPatch, file, thumb *File) (*models.Video, error) {
	p.VideoURL, p.ThumbnailURL = nil, nil
	if p.Title != nil {
		title, err := requiredText("title", "Title", *p.Title)
		if err != nil {
			return nil, err
		}
		p.Title = &title
	}
	p.Description = patchText(p.Description)

	var up *upload
	if file != nil || thumb != nil {
		if err := s.requireBlobs("file"); err != nil {
			return nil, err
		}
	}
	if file != nil {
		var err error
		if up, err = checkFile("file", file, classVideo, s.limits); err != nil {
			return nil, err
		}
	}
	pt, err := s.prepareThumb(thumb)
	if err != nil {
		return nil, err
	}

	var videoKey, thumbKey string
	if up != nil {
		key, url, err := s.put(ctx, storage.PrefixVideos, up)
		if err != nil {
			return nil, err
		}
		videoKey, p.VideoURL = key, &url
	}
	if pt != nil {
		key, url, err := s.putThumb(ctx, pt)
		if err != nil {
			orphaned("update video", err, videoKey)
			return nil, err
		}
		thumbKey, p.ThumbnailURL = key, &url
	}

	video, err := s.table.Update(ctx, id, p)
	if err != nil {
		orphaned("update video", err, videoKey, thumbKey)
		return nil, &WriteError{Op: "update video", Err: err}
	}
	if video == nil {
		orphaned("update video", ErrNotFound, videoKey, thumbKey)
		return nil, ErrNotFound
	}

	s.publish(ctx, video.ID, ActionUpdate)
	return video, nil
}

// Delete removes the video row. Stored files are kept unless blob cleanup
// is enabled.
func (s *VideoService) Delete(ctx context.Context, id uuid.UUID) error {
	video, err := s.table.Delete(ctx, id)
	if err != nil {
		return &WriteError{Op: "delete video", Err: err}
	}
	if video == nil {
		return ErrNotFound
	}

	thumb := ""
	if video.ThumbnailURL != nil {
		thumb = *video.ThumbnailURL
	}
	s.cleanup(ctx, video.VideoURL, thumb)
	s.publish(ctx, id, ActionDelete)
	return nil
}
