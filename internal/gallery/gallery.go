// Package gallery holds the client-side state of an image gallery session.
//
// A Gallery owns the cached collection fetched from the server and the view
// derived from the current search term. The cache is a read-through copy of the
// server: it is replaced wholesale by every successful Refresh and is never
// edited locally. Uploads and deletes go to the server first and are followed by
// a full Refresh.
//
// A Gallery is not safe for concurrent use; callers run one operation at a time.
package gallery

import (
	"context"
	"fmt"

	"github.com/templui/imagehost/internal/client"
	"github.com/templui/imagehost/internal/model"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusUploading
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUploading:
		return "uploading"
	default:
		return "idle"
	}
}

// ImageAPI is the part of the transport the gallery needs
type ImageAPI interface {
	ListImages(ctx context.Context) ([]*model.Image, error)
	UploadImage(ctx context.Context, upload *model.Upload, description string) (*model.Image, error)
	DeleteImage(ctx context.Context, id int64) error
}

type Gallery struct {
	settings
	api      ImageAPI
	images   []*model.Image
	filtered []*model.Image
	term     string
	status   Status
}

func New(api ImageAPI, opts ...Option) *Gallery {
	return &Gallery{
		settings: newSettings(opts),
		api:      api,
		images:   []*model.Image{},
		filtered: []*model.Image{},
	}
}

// Images returns the cached collection in server order
func (g *Gallery) Images() []*model.Image {
	return g.images
}

// Filtered returns the cached records matching the current search term
func (g *Gallery) Filtered() []*model.Image {
	return g.filtered
}

func (g *Gallery) Term() string {
	return g.term
}

func (g *Gallery) Status() Status {
	return g.status
}

// Find looks an id up in the cache
func (g *Gallery) Find(id int64) (*model.Image, bool) {
	for _, image := range g.images {
		if image.ID == id {
			return image, true
		}
	}
	return nil, false
}

// Refresh replaces the cache with the server's collection.
// On failure the previous collection stays in place.
func (g *Gallery) Refresh(ctx context.Context) error {
	g.status = StatusLoading
	images, err := g.api.ListImages(ctx)
	g.status = StatusIdle

	if err != nil {
		g.log.Error("failed to fetch images", "error", err)
		g.notify(LevelError, "failed to load images: "+client.Message(err), err)
		return fmt.Errorf("failed to refresh gallery: %w", err)
	}

	g.images = images
	g.filtered = Filter(g.images, g.term)
	g.changed()
	return nil
}

// Search recomputes the filtered view from the cache. No network I/O.
func (g *Gallery) Search(term string) []*model.Image {
	g.term = term
	g.filtered = Filter(g.images, term)
	g.changed()
	return g.filtered
}

// Delete removes an image on the server and then reloads the whole collection.
// The request is sent even when id is not in the cache.
func (g *Gallery) Delete(ctx context.Context, id int64) error {
	err := g.api.DeleteImage(ctx, id)
	if err != nil {
		g.log.Error("failed to delete image", "id", id, "error", err)
		g.notify(LevelError, "failed to delete image: "+client.Message(err), err)
		return fmt.Errorf("failed to delete image %d: %w", id, err)
	}

	g.notify(LevelSuccess, "image deleted", nil)
	_ = g.Refresh(ctx)
	return nil
}
