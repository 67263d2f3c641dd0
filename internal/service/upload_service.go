package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/toystore_api/internal/storage"
	"github.com/GTDGit/toystore_api/internal/utils"
)

// UploadService stores admin product images.
type UploadService struct {
	store   storage.Storage
	maxSize int64
}

// NewUploadService constructs an UploadService accepting images up to maxSize bytes.
func NewUploadService(store storage.Storage, maxSize int64) *UploadService {
	return &UploadService{store: store, maxSize: maxSize}
}

// UploadResult lists stored URLs and the files that were rejected.
type UploadResult struct {
	URLs    []string `json:"urls"`
	Skipped []string `json:"skipped,omitempty"`
}

// Upload stores every file that is an image within the size limit. Other
// files are skipped; ErrNoFilesUploaded is returned when nothing was stored.
func (s *UploadService) Upload(ctx context.Context, files []*multipart.FileHeader) (*UploadResult, error) {
	res := &UploadResult{URLs: []string{}}
	for _, fh := range files {
		url, err := s.uploadOne(ctx, fh)
		if err != nil {
			log.Warn().Err(err).Str("filename", fh.Filename).Msg("Upload skipped")
			res.Skipped = append(res.Skipped, fh.Filename)
			continue
		}
		res.URLs = append(res.URLs, url)
	}
	if len(res.URLs) == 0 {
		return nil, utils.ErrNoFilesUploaded
	}
	return res, nil
}

func (s *UploadService) uploadOne(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", fmt.Errorf("file exceeds %d bytes", s.maxSize)
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("content type %q is not an image", ct)
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("detected type %q is not an image", mt.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	out, err := s.store.Put(ctx, f, storage.PutInput{
		Filename:    fh.Filename,
		ContentType: mt.String(),
		Size:        fh.Size,
	})
	if err != nil {
		return "", err
	}
	return out.URL, nil
}
