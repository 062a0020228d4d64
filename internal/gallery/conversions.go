package gallery

import (
	"context"
	"fmt"

	"github.com/templui/imagehost/internal/client"
	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/validation"
)

// ConversionAPI is the part of the transport the conversions view needs
type ConversionAPI interface {
	ListConversions(ctx context.Context) ([]*model.Conversion, error)
	ConvertDocument(ctx context.Context, upload *model.Upload, description string) (*model.Conversion, error)
	DeleteConversion(ctx context.Context, id int64) error
}

// Conversions caches PDF conversion records the same way Gallery caches images:
// full reload after every mutation, previous list kept when a reload fails.
type Conversions struct {
	settings
	api    ConversionAPI
	items  []*model.Conversion
	status Status
}

func NewConversions(api ConversionAPI, opts ...Option) *Conversions {
	return &Conversions{
		settings: newSettings(opts),
		api:      api,
		items:    []*model.Conversion{},
	}
}

func (c *Conversions) Items() []*model.Conversion {
	return c.items
}

func (c *Conversions) Status() Status {
	return c.status
}

func (c *Conversions) Find(id int64) (*model.Conversion, bool) {
	for _, item := range c.items {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

func (c *Conversions) Refresh(ctx context.Context) error {
	c.status = StatusLoading
	items, err := c.api.ListConversions(ctx)
	c.status = StatusIdle

	if err != nil {
		c.log.Error("failed to fetch conversions", "error", err)
		c.notify(LevelError, "failed to load conversions: "+client.Message(err), err)
		return fmt.Errorf("failed to refresh conversions: %w", err)
	}

	c.items = items
	c.changed()
	return nil
}

// Convert uploads a PDF, waits for the server to convert it and reloads the list
func (c *Conversions) Convert(ctx context.Context, upload *model.Upload, description string) (*model.Conversion, error) {
	err := validation.ValidateFile(upload, validation.DocumentConstraints)
	if err != nil {
		c.notify(LevelError, client.Message(err), err)
		return nil, err
	}

	c.status = StatusUploading
	conversion, err := c.api.ConvertDocument(ctx, upload, description)
	c.status = StatusIdle

	if err != nil {
		c.log.Error("failed to convert document", "filename", upload.Filename, "error", err)
		c.notify(LevelError, "conversion failed: "+client.Message(err), err)
		return nil, fmt.Errorf("failed to convert %s: %w", upload.Filename, err)
	}

	c.notify(LevelSuccess, fmt.Sprintf("converted %s (%d pages)", conversion.OriginalFilename, conversion.PageCount), nil)
	_ = c.Refresh(ctx)
	return conversion, nil
}

func (c *Conversions) Delete(ctx context.Context, id int64) error {
	err := c.api.DeleteConversion(ctx, id)
	if err != nil {
		c.log.Error("failed to delete conversion", "id", id, "error", err)
		c.notify(LevelError, "failed to delete conversion: "+client.Message(err), err)
		return fmt.Errorf("failed to delete conversion %d: %w", id, err)
	}

	c.notify(LevelSuccess, "conversion deleted", nil)
	_ = c.Refresh(ctx)
	return nil
}
