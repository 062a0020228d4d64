package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/imagehost/internal/apitest"
	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/validation"
)

func newTestClient(t *testing.T) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c, srv
}

func pngUpload(name string) *model.Upload {
	data := []byte("\x89PNG\r\n\x1a\n fake")
	return &model.Upload{Filename: name, ContentType: "image/png", Size: int64(len(data)), Data: data}
}

func TestNew_BaseURL(t *testing.T) {
	c, err := New("127.0.0.1:8000")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", c.BaseURL())

	c, err = New("https://img.example.com/prefix/")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/prefix/api/images", c.endpoint("api", "images"))

	_, err = New("")
	assert.Error(t, err)
}

func TestNew_TimeoutSurvivesHTTPClient(t *testing.T) {
	c, err := New("127.0.0.1:8000", WithTimeout(5*time.Second), WithHTTPClient(&http.Client{}))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.http.Timeout)

	c, err = New("127.0.0.1:8000", WithHTTPClient(&http.Client{Timeout: time.Minute}))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.http.Timeout)

	c, err = New("127.0.0.1:8000", WithHTTPClient(&http.Client{Timeout: time.Minute}), WithTimeout(0))
	require.NoError(t, err)
	assert.Zero(t, c.http.Timeout)
}

func TestClient_UploadListRoundTrip(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	uploaded, err := c.UploadImage(ctx, pngUpload("cat.png"), "a cat")
	require.NoError(t, err)
	assert.Positive(t, uploaded.ID)
	assert.Equal(t, "cat.png", uploaded.OriginalFilename)
	assert.Equal(t, "a cat", uploaded.Description)

	images, err := c.ListImages(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, uploaded.ID, images[0].ID)
	assert.Equal(t, uploaded.CreatedAt.String(), images[0].CreatedAt.String())

	calls := srv.CallsTo(http.MethodPost, "/api/images/upload")
	require.Len(t, calls, 1)
	assert.Equal(t, "image/png", calls[0].ContentType)
	assert.Equal(t, "a cat", calls[0].Description)
}

func TestClient_UploadWithoutDescriptionOmitsField(t *testing.T) {
	c, srv := newTestClient(t)

	_, err := c.UploadImage(context.Background(), pngUpload("dog.png"), "")
	require.NoError(t, err)

	calls := srv.CallsTo(http.MethodPost, "/api/images/upload")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Description)
}

func TestClient_ValidationFailsBeforeIO(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	_, err := c.UploadImage(ctx, nil, "")
	assert.ErrorIs(t, err, validation.ErrMissingFile)

	err = c.DeleteImage(ctx, 0)
	assert.ErrorIs(t, err, validation.ErrInvalidID)

	_, err = c.DownloadConversion(ctx, "", DownloadWord, &bytes.Buffer{})
	assert.True(t, validation.IsValidation(err))

	assert.Empty(t, srv.Calls())
}

func TestClient_ServerDetailSurfaced(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	upload := &model.Upload{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hi")}
	_, err := c.UploadImage(ctx, upload, "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "only image files are allowed", apiErr.Detail)
	assert.Equal(t, "only image files are allowed", Message(err))

	err = c.DeleteImage(ctx, 42)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Len(t, srv.CallsTo(http.MethodDelete, "/api/images/42"), 1)
}

func TestClient_ValidationListDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","file"],"msg":"field required"},{"msg":"second"}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.ListImages(context.Background())
	assert.Equal(t, "field required; second", Message(err))
}

func TestClient_ErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.ListImages(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Detail)
	assert.Equal(t, "request failed with status 502", Message(err))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(addr)
	require.NoError(t, err)

	_, err = c.ListImages(context.Background())
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Equal(t, 0, StatusCode(err))
	assert.Contains(t, Message(err), "cannot reach")
}

func TestClient_Headers(t *testing.T) {
	var accept, ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept.Store(r.Header.Get("Accept"))
		ua.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithUserAgent("test-agent/2"))
	require.NoError(t, err)

	images, err := c.ListImages(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
	assert.Equal(t, "application/json", accept.Load())
	assert.Equal(t, "test-agent/2", ua.Load())
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.ListImages(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestClient_GetAndFetch(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	seeded := srv.Seed("sky.png", "", []byte("pixels"))

	image, err := c.GetImage(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "sky.png", image.OriginalFilename)

	var buf bytes.Buffer
	n, err := c.Fetch(ctx, image.URL, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, "pixels", buf.String())

	buf.Reset()
	_, err = c.Fetch(ctx, "/static/images/"+image.FilePath, &buf)
	require.NoError(t, err)
	assert.Equal(t, "pixels", buf.String())
}

func TestClient_Conversions(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	pdf := &model.Upload{Filename: "report.pdf", ContentType: "application/pdf", Size: 4, Data: []byte("%PDF")}
	conv, err := c.ConvertDocument(ctx, pdf, "quarterly")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", conv.OriginalFilename)
	assert.NotEmpty(t, conv.DownloadURL)
	assert.Equal(t, "quarterly", srv.CallsTo(http.MethodPost, "/api/pdfs/convert")[0].Description)

	list, err := c.ListConversions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].DownloadURL)

	got, err := c.GetConversion(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.OutputFilename, got.OutputFilename)

	raw, err := c.ConversionText(ctx, conv.ID, model.TextKindRaw)
	require.NoError(t, err)
	assert.Equal(t, "text of report.pdf", raw)

	processed, err := c.ConversionText(ctx, conv.ID, model.TextKindProcessed)
	require.NoError(t, err)
	assert.Equal(t, "TEXT OF REPORT.PDF", processed)

	text, err := c.ConversionTextJSON(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, text.TextContent)

	var md bytes.Buffer
	_, err = c.DownloadConversion(ctx, conv.MarkdownPath, DownloadMarkdown, &md)
	require.NoError(t, err)
	assert.Equal(t, "# report.pdf\n", md.String())

	err = c.DeleteConversion(ctx, conv.ID)
	require.NoError(t, err)

	_, err = c.GetConversion(ctx, conv.ID)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestClient_DownloadConversionUsesBaseName(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()
	conv := srv.SeedConversion("notes.pdf", "plain", "# notes\n")

	var md bytes.Buffer
	_, err := c.DownloadConversion(ctx, "markdown/nested/"+conv.MarkdownPath, DownloadMarkdown, &md)
	require.NoError(t, err)
	assert.Equal(t, "# notes\n", md.String())

	var docx bytes.Buffer
	_, err = c.DownloadConversion(ctx, `outputs\`+conv.OutputFilename, DownloadWord, &docx)
	require.NoError(t, err)
	assert.NotZero(t, docx.Len())

	assert.Len(t, srv.CallsTo(http.MethodGet, "/api/pdfs/download-markdown/"+conv.MarkdownPath), 1)
	assert.Len(t, srv.CallsTo(http.MethodGet, "/api/pdfs/download/"+conv.OutputFilename), 1)
}

func TestClient_ConvertRejectedByServer(t *testing.T) {
	c, _ := newTestClient(t)

	doc := &model.Upload{Filename: "report.docx", Data: []byte("x"), Size: 1}
	_, err := c.ConvertDocument(context.Background(), doc, "")
	assert.Equal(t, "only PDF files are accepted", Message(err))
}
