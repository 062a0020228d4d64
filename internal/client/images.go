package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/validation"
)

// ListImages returns the full collection in server order
func (c *Client) ListImages(ctx context.Context) ([]*model.Image, error) {
	var images []*model.Image
	err := c.getJSON(ctx, c.endpoint("api", "images"), &images)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []*model.Image{}
	}
	return images, nil
}

func (c *Client) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	err := validation.ValidateID(id)
	if err != nil {
		return nil, err
	}

	image := &model.Image{}
	err = c.getJSON(ctx, c.endpoint("api", "images", strconv.FormatInt(id, 10)), image)
	if err != nil {
		return nil, err
	}
	return image, nil
}

// UploadImage uploads one file. An empty description is not sent.
func (c *Client) UploadImage(ctx context.Context, upload *model.Upload, description string) (*model.Image, error) {
	err := validation.ValidatePayload(upload)
	if err != nil {
		return nil, err
	}

	image := &model.Image{}
	err = c.postMultipart(ctx, c.endpoint("api", "images", "upload"), upload, map[string]string{
		"description": description,
	}, image)
	if err != nil {
		return nil, err
	}
	return image, nil
}

// DeleteImage deletes by id. Deleting an unknown id returns whatever the server answers.
func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	err := validation.ValidateID(id)
	if err != nil {
		return err
	}
	return c.delete(ctx, c.endpoint("api", "images", strconv.FormatInt(id, 10)))
}

// Fetch streams the bytes behind an image url. Relative urls resolve against the base URL.
func (c *Client) Fetch(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if rawURL == "" {
		return 0, validation.ErrMissingTarget
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("invalid image url %q: %w", rawURL, err)
	}

	return c.stream(ctx, c.baseURL.ResolveReference(u).String(), "*/*", w)
}
