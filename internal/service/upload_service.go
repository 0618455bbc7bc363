package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/forepost/api/configs"
)

var allowedImageTypes = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {},
}

type UploadResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type UploadService interface {
	SaveImage(ctx context.Context, file []byte) (*UploadResult, error)
}

type uploadService struct {
	cfg *config.Config
	s3  *S3Service
}

func NewUploadService(cfg *config.Config, s3 *S3Service) UploadService {
	return &uploadService{cfg: cfg, s3: s3}
}

// SaveImage validates the file by content signature, writes it under the
// upload root (where the publisher resolves it at delivery time), and mirrors
// it to the bucket for the public URL when one is configured.
func (s *uploadService) SaveImage(ctx context.Context, file []byte) (*UploadResult, error) {
	if len(file) == 0 {
		return nil, fmt.Errorf("no file content provided")
	}

	fileType, err := filetype.Match(file)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type")
	}
	if _, ok := allowedImageTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	filename := fmt.Sprintf("%s.%s", id, fileType.Extension)

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.cfg.UploadDir, filename), file, 0o644); err != nil {
		slog.Error(err.Error())
		return nil, err
	}

	url := fmt.Sprintf("%s/files/%s", s.cfg.BaseURL, filename)
	if s.s3 != nil && s.s3.Enabled() {
		if err := s.s3.Upload(ctx, filename, file, fileType.MIME.Value); err != nil {
			slog.Warn("bucket mirror failed, serving image locally", "filename", filename, "error", err)
		} else {
			url = s.s3.PublicURL(filename)
		}
	}

	slog.Info("file saved", "filename", filename)
	return &UploadResult{Filename: filename, URL: url}, nil
}
