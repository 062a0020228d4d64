package gallery

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/templui/imagehost/internal/model"
)

// ReadUpload loads a file into an upload payload.
// The MIME type comes from the extension, falling back to content sniffing.
func ReadUpload(fs afero.Fs, path string) (*model.Upload, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &model.Upload{
		Filename:    filepath.Base(path),
		ContentType: DetectContentType(path, data),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func DetectContentType(path string, data []byte) string {
	byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if byExt != "" {
		mediaType, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mediaType
		}
	}

	sniffed := http.DetectContentType(data)
	mediaType, _, err := mime.ParseMediaType(sniffed)
	if err != nil {
		return sniffed
	}
	return mediaType
}
