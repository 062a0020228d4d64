package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"

	"github.com/templui/imagehost/internal/client"
	"github.com/templui/imagehost/internal/config"
	"github.com/templui/imagehost/internal/db"
	"github.com/templui/imagehost/internal/gallery"
	"github.com/templui/imagehost/internal/repository"
	"github.com/templui/imagehost/internal/service"
	"github.com/templui/imagehost/internal/storage"
)

const (
	ExportToDir = "dir"
	ExportToS3  = "s3"
)

type App struct {
	Cfg         *config.Config
	Fs          afero.Fs
	Client      *client.Client
	Gallery     *gallery.Gallery
	Conversions *gallery.Conversions

	db      *sqlx.DB
	history *service.HistoryService
}

// New wires the transport and both view-models. The history database is
// opened on first use so commands that never touch it work without it.
func New(cfg *config.Config, opts ...gallery.Option) (*App, error) {
	log := slog.Default()

	c, err := client.New(cfg.APIBaseURL,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithUserAgent(cfg.UserAgent),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	opts = append([]gallery.Option{gallery.WithLogger(log)}, opts...)

	return &App{
		Cfg:         cfg,
		Fs:          afero.NewOsFs(),
		Client:      c,
		Gallery:     gallery.New(c, opts...),
		Conversions: gallery.NewConversions(c, opts...),
	}, nil
}

func (a *App) History() (*service.HistoryService, error) {
	if a.history != nil {
		return a.history, nil
	}

	database, err := db.Open(a.Cfg.DBDriver, a.Cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	a.db = database
	a.history = service.NewHistoryService(repository.NewHistoryRepository(database), a.Cfg.HistoryLimit)
	return a.history, nil
}

// Storage returns the export target: "dir" writes below dir (EXPORT_DIR when empty), "s3" uses the S3_* settings
func (a *App) Storage(ctx context.Context, to, dir string) (storage.Storage, error) {
	switch to {
	case "", ExportToDir:
		if dir == "" {
			dir = a.Cfg.ExportDir
		}
		return storage.NewDirStorage(a.Fs, dir)
	case ExportToS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:    a.Cfg.S3Region,
			Bucket:    a.Cfg.S3Bucket,
			AccessKey: a.Cfg.S3AccessKey,
			SecretKey: a.Cfg.S3SecretKey,
			Endpoint:  a.Cfg.S3Endpoint,
			Prefix:    a.Cfg.S3Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown export target %q (use %s or %s)", to, ExportToDir, ExportToS3)
	}
}

func (a *App) Exporter(ctx context.Context, to, dir string) (*service.ExportService, error) {
	store, err := a.Storage(ctx, to, dir)
	if err != nil {
		return nil, err
	}
	return service.NewExportService(a.Client, store), nil
}

func (a *App) Close() error {
	return db.Close(a.db)
}
