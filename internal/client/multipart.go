package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/templui/imagehost/internal/model"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// postMultipart sends upload as the "file" part plus optional text fields and decodes the JSON reply.
// The part carries the upload's own Content-Type; the server checks it.
func (c *Client) postMultipart(ctx context.Context, target string, upload *model.Upload, fields map[string]string, out any) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(upload.Filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	_, err = part.Write(upload.Data)
	if err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}

	for name, value := range fields {
		if value == "" {
			continue
		}
		err = w.WriteField(name, value)
		if err != nil {
			return fmt.Errorf("failed to write %s field: %w", name, err)
		}
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, target, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, out)
}
