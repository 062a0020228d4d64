package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/storage"
)

// Fetcher downloads a stored image by its url
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

type ExportResult struct {
	Saved  []string // storage locations
	Failed map[int64]error
	Bytes  int64
}

// ExportProgressFunc is called after each image, successful or not
type ExportProgressFunc func(image *model.Image, done, total int, err error)

type ExportService struct {
	fetcher Fetcher
	storage storage.Storage
}

func NewExportService(fetcher Fetcher, storage storage.Storage) *ExportService {
	return &ExportService{
		fetcher: fetcher,
		storage: storage,
	}
}

// ExportName is the storage path of an image: {id}-{original_filename}
func ExportName(image *model.Image) string {
	name := path.Base(strings.ReplaceAll(image.OriginalFilename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = path.Base(image.FilePath)
	}
	return fmt.Sprintf("%d-%s", image.ID, name)
}

// Export copies every image to storage, one at a time.
// A failed image is recorded and the next one is still attempted.
func (s *ExportService) Export(ctx context.Context, images []*model.Image, progress ExportProgressFunc) *ExportResult {
	if progress == nil {
		progress = func(*model.Image, int, int, error) {}
	}

	result := &ExportResult{Failed: make(map[int64]error)}
	for i, image := range images {
		n, err := s.exportOne(ctx, image)
		if err != nil {
			slog.Warn("failed to export image", "id", image.ID, "error", err)
			result.Failed[image.ID] = err
		} else {
			result.Saved = append(result.Saved, s.storage.URL(ExportName(image)))
			result.Bytes += n
		}
		progress(image, i+1, len(images), err)
	}

	return result
}

func (s *ExportService) exportOne(ctx context.Context, image *model.Image) (int64, error) {
	if image.URL == "" {
		return 0, fmt.Errorf("image %d has no url", image.ID)
	}

	// images are capped at a few MiB; a buffered body gives S3 a known length
	var buf bytes.Buffer
	n, err := s.fetcher.Fetch(ctx, image.URL, &buf)
	if err != nil {
		return 0, fmt.Errorf("failed to export image %d: %w", image.ID, err)
	}

	err = s.storage.Save(ctx, ExportName(image), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return 0, fmt.Errorf("failed to export image %d: %w", image.ID, err)
	}
	return n, nil
}
