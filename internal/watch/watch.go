// Package watch uploads images as they appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/templui/imagehost/internal/gallery"
	"github.com/templui/imagehost/internal/model"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// ErrSkipped is returned by Handle for files that are not watched images
var ErrSkipped = errors.New("not an image file")

type Uploader interface {
	UploadBatch(ctx context.Context, files []*model.Upload, description string, progress gallery.ProgressFunc) (*gallery.BatchReport, error)
}

type Recorder interface {
	Record(image *model.Image, source string) (*model.HistoryEntry, error)
}

type Config struct {
	Dir         string
	Description string
	ProjectName string        // uploaded names become {project}_{name}
	LogFile     string        // "filename:url" lines are appended here; empty disables
	Settle      time.Duration // quiet period after the last write before a file is uploaded
	Fs          afero.Fs
}

type Watcher struct {
	cfg      Config
	uploader Uploader
	recorder Recorder
	log      *slog.Logger
	uploaded func(*model.Image)
}

// New builds a watcher. recorder may be nil.
func New(uploader Uploader, recorder Recorder, cfg Config) *Watcher {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Settle <= 0 {
		cfg.Settle = 500 * time.Millisecond
	}
	return &Watcher{
		cfg:      cfg,
		uploader: uploader,
		recorder: recorder,
		log:      slog.Default().With("component", "watch"),
		uploaded: func(*model.Image) {},
	}
}

// OnUpload registers a callback run after each successful upload
func (w *Watcher) OnUpload(fn func(*model.Image)) {
	w.uploaded = fn
}

// Run blocks until ctx is done. Events are handled one at a time on the calling goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	err = fsw.Add(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.Dir, err)
	}
	w.log.Info("watching directory", "dir", w.cfg.Dir)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.cfg.Settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				if w.wanted(event.Name) {
					pending[event.Name] = time.Now()
				}
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				delete(pending, event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.cfg.Settle {
					continue
				}
				delete(pending, path)
				_, err := w.Handle(ctx, path)
				if err != nil && !errors.Is(err, ErrSkipped) {
					w.log.Error("failed to upload watched file", "path", path, "error", err)
				}
			}
		}
	}
}

func (w *Watcher) wanted(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".part") {
		return false
	}
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// UploadName applies the project prefix to a filename
func (w *Watcher) UploadName(name string) string {
	project := strings.TrimSpace(w.cfg.ProjectName)
	if project == "" || strings.HasPrefix(name, project+"_") {
		return name
	}
	return project + "_" + name
}

// Handle uploads one file as a single-file batch
func (w *Watcher) Handle(ctx context.Context, path string) (*model.Image, error) {
	if !w.wanted(path) {
		return nil, ErrSkipped
	}

	info, err := w.cfg.Fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, ErrSkipped
	}

	upload, err := gallery.ReadUpload(w.cfg.Fs, path)
	if err != nil {
		return nil, err
	}
	upload.Filename = w.UploadName(upload.Filename)

	report, err := w.uploader.UploadBatch(ctx, []*model.Upload{upload}, w.cfg.Description, nil)
	if err != nil {
		return nil, err
	}
	if report.Succeeded == 0 {
		if len(report.Failed) > 0 {
			return nil, report.Failed[0]
		}
		return nil, fmt.Errorf("upload of %s failed", upload.Filename)
	}

	image := report.Uploaded[0]
	w.log.Info("uploaded watched file", "filename", image.OriginalFilename, "url", image.URL)

	if w.recorder != nil {
		_, err = w.recorder.Record(image, model.HistorySourceWatch)
		if err != nil {
			w.log.Warn("failed to record upload", "error", err)
		}
	}

	err = w.appendLog(image)
	if err != nil {
		w.log.Warn("failed to write watch log", "file", w.cfg.LogFile, "error", err)
	}

	w.uploaded(image)
	return image, nil
}

func (w *Watcher) appendLog(image *model.Image) error {
	if w.cfg.LogFile == "" {
		return nil
	}

	f, err := w.cfg.Fs.OpenFile(w.cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s:%s\n", image.OriginalFilename, image.URL)
	return err
}
