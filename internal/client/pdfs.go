package client

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/validation"
)

const (
	DownloadWord     = "word"
	DownloadMarkdown = "markdown"
)

// ConvertDocument uploads a PDF for conversion and returns the finished record
func (c *Client) ConvertDocument(ctx context.Context, upload *model.Upload, description string) (*model.Conversion, error) {
	err := validation.ValidatePayload(upload)
	if err != nil {
		return nil, err
	}

	conversion := &model.Conversion{}
	err = c.postMultipart(ctx, c.endpoint("api", "pdfs", "convert"), upload, map[string]string{
		"description": description,
	}, conversion)
	if err != nil {
		return nil, err
	}
	return conversion, nil
}

func (c *Client) ListConversions(ctx context.Context) ([]*model.Conversion, error) {
	var conversions []*model.Conversion
	err := c.getJSON(ctx, c.endpoint("api", "pdfs"), &conversions)
	if err != nil {
		return nil, err
	}
	if conversions == nil {
		conversions = []*model.Conversion{}
	}
	return conversions, nil
}

func (c *Client) GetConversion(ctx context.Context, id int64) (*model.Conversion, error) {
	err := validation.ValidateID(id)
	if err != nil {
		return nil, err
	}

	conversion := &model.Conversion{}
	err = c.getJSON(ctx, c.endpoint("api", "pdfs", strconv.FormatInt(id, 10)), conversion)
	if err != nil {
		return nil, err
	}
	return conversion, nil
}

func (c *Client) DeleteConversion(ctx context.Context, id int64) error {
	err := validation.ValidateID(id)
	if err != nil {
		return err
	}
	return c.delete(ctx, c.endpoint("api", "pdfs", strconv.FormatInt(id, 10)))
}

// ConversionText returns the raw (model.TextKindRaw) or AI processed
// (model.TextKindProcessed) text of a conversion as plain text
func (c *Client) ConversionText(ctx context.Context, id int64, kind string) (string, error) {
	err := validation.ValidateID(id)
	if err != nil {
		return "", err
	}
	if kind != model.TextKindRaw && kind != model.TextKindProcessed {
		return "", fmt.Errorf("unknown text kind %q", kind)
	}
	return c.getText(ctx, c.endpoint("api", "pdfs", strconv.FormatInt(id, 10), kind))
}

func (c *Client) ConversionTextJSON(ctx context.Context, id int64) (*model.ConversionText, error) {
	err := validation.ValidateID(id)
	if err != nil {
		return nil, err
	}

	text := &model.ConversionText{}
	err = c.getJSON(ctx, c.endpoint("api", "pdfs", strconv.FormatInt(id, 10), "text_json"), text)
	if err != nil {
		return nil, err
	}
	return text, nil
}

// DownloadConversion streams a converted Word document or Markdown file into w
func (c *Client) DownloadConversion(ctx context.Context, filename, kind string, w io.Writer) (int64, error) {
	if strings.TrimSpace(filename) == "" {
		return 0, validation.ErrMissingTarget
	}

	// the route takes a bare file name, never a relative path
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))

	var target string
	switch kind {
	case DownloadWord:
		target = c.endpoint("api", "pdfs", "download", filename)
	case DownloadMarkdown:
		target = c.endpoint("api", "pdfs", "download-markdown", filename)
	default:
		return 0, fmt.Errorf("unknown download kind %q", kind)
	}

	return c.stream(ctx, target, "*/*", w)
}
