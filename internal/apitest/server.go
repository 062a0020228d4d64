// Package apitest runs an in-memory stand-in for the image server REST API.
// It is only used by tests.
package apitest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/templui/imagehost/internal/model"
)

const timeLayout = "2006-01-02T15:04:05.000000"

// Call is one request the fake server received
type Call struct {
	Method      string
	Path        string
	Filename    string
	ContentType string
	Description string
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	nextID      int64
	images      []*model.Image // newest first
	blobs       map[string][]byte
	conversions []*model.Conversion
	files       map[string][]byte
	calls       []Call
	failUploads map[string]bool
	failList    int
	failDelete  bool
}

// NewServer starts a fake API server that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		nextID:      1,
		blobs:       make(map[string][]byte),
		files:       make(map[string][]byte),
		failUploads: make(map[string]bool),
	}

	r := gin.New()
	r.Use(s.record)

	images := r.Group("/api/images")
	images.GET("", s.listImages)
	images.GET("/:id", s.getImage)
	images.POST("/upload", s.uploadImage)
	images.DELETE("/:id", s.deleteImage)

	pdfs := r.Group("/api/pdfs")
	pdfs.GET("", s.listConversions)
	pdfs.POST("/convert", s.convert)
	pdfs.GET("/:id", s.getConversion)
	pdfs.GET("/:id/text", s.conversionText)
	pdfs.GET("/:id/processed_text", s.conversionText)
	pdfs.GET("/:id/text_json", s.conversionTextJSON)
	pdfs.DELETE("/:id", s.deleteConversion)
	pdfs.GET("/download/:filename", s.download)
	pdfs.GET("/download-markdown/:filename", s.download)

	r.GET("/static/images/:name", s.blob)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// FailUploads makes uploads of the named files answer 500
func (s *Server) FailUploads(filenames ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range filenames {
		s.failUploads[name] = true
	}
}

// FailNextLists makes the next n list requests answer 500
func (s *Server) FailNextLists(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = n
}

// FailDeletes makes every delete answer 500
func (s *Server) FailDeletes(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete = fail
}

// Seed adds an image record directly, bypassing upload
func (s *Server) Seed(filename, description string, data []byte) *model.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addImage(filename, "image/png", description, data)
}

// SeedConversion adds a finished conversion with text and a markdown file
func (s *Server) SeedConversion(filename, text, markdown string) *model.Conversion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addConversion(filename, text, markdown)
}

// Calls returns the requests received so far, in order
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns recorded calls matching method and path prefix
func (s *Server) CallsTo(method, prefix string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) ImageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

func (s *Server) record(c *gin.Context) {
	call := Call{Method: c.Request.Method, Path: c.Request.URL.Path}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err == nil {
			if files := form.File["file"]; len(files) > 0 {
				call.Filename = files[0].Filename
				call.ContentType = files[0].Header.Get("Content-Type")
			}
			if d := form.Value["description"]; len(d) > 0 {
				call.Description = d[0]
			}
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	c.Next()
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

func (s *Server) nowString() string {
	return time.Now().Format(timeLayout)
}

func (s *Server) addImage(filename, contentType, description string, data []byte) *model.Image {
	id := s.nextID
	s.nextID++

	stored := fmt.Sprintf("%d%s", id, path.Ext(filename))
	s.blobs[stored] = data

	created, _ := model.ParseTimestamp(s.nowString())
	image := &model.Image{
		ID:               id,
		OriginalFilename: filename,
		FilePath:         stored,
		URL:              s.URL + "/static/images/" + stored,
		Size:             int64(len(data)),
		ContentType:      contentType,
		Description:      description,
		CreatedAt:        created,
	}
	s.images = append([]*model.Image{image}, s.images...)
	return image
}

func (s *Server) addConversion(filename, text, markdown string) *model.Conversion {
	id := s.nextID
	s.nextID++

	base := strings.TrimSuffix(filename, path.Ext(filename))
	docx := fmt.Sprintf("%s_%d.docx", base, id)
	md := fmt.Sprintf("%s_%d.md", base, id)
	s.files[docx] = []byte("docx:" + text)
	s.files[md] = []byte(markdown)

	created, _ := model.ParseTimestamp(s.nowString())
	conversion := &model.Conversion{
		ID:               id,
		OriginalFilename: filename,
		OutputFilename:   docx,
		FilePath:         docx,
		PageCount:        1,
		TextContent:      text,
		ProcessedText:    strings.ToUpper(text),
		MarkdownPath:     md,
		CreatedAt:        created,
		DownloadURL:      s.URL + "/api/pdfs/download/" + docx,
		MarkdownURL:      s.URL + "/api/pdfs/download-markdown/" + md,
	}
	s.conversions = append([]*model.Conversion{conversion}, s.conversions...)
	return conversion
}

func (s *Server) listImages(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failList > 0 {
		s.failList--
		detail(c, http.StatusInternalServerError, "database is locked")
		return
	}
	c.JSON(http.StatusOK, s.images)
}

func (s *Server) findImage(c *gin.Context) (int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"path", "image_id"}, "msg": "value is not a valid integer"}}})
		return 0, false
	}
	for i, image := range s.images {
		if image.ID == id {
			return i, true
		}
	}
	detail(c, http.StatusNotFound, "image not found")
	return 0, false
}

func (s *Server) getImage(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findImage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.images[i])
}

func (s *Server) uploadImage(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"body", "file"}, "msg": "field required"}}})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		detail(c, http.StatusBadRequest, "only image files are allowed")
		return
	}

	f, err := header.Open()
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failUploads[header.Filename] {
		detail(c, http.StatusInternalServerError, "upload failed: disk full")
		return
	}
	image := s.addImage(header.Filename, contentType, c.PostForm("description"), data)
	c.JSON(http.StatusCreated, image)
}

func (s *Server) deleteImage(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDelete {
		detail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	i, ok := s.findImage(c)
	if !ok {
		return
	}
	delete(s.blobs, s.images[i].FilePath)
	s.images = append(s.images[:i], s.images[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) blob(c *gin.Context) {
	s.mu.Lock()
	data, ok := s.blobs[c.Param("name")]
	s.mu.Unlock()

	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) listConversions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Conversion, 0, len(s.conversions))
	for _, conv := range s.conversions {
		item := *conv
		item.DownloadURL, item.MarkdownURL = "", ""
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) convert(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"body", "file"}, "msg": "field required"}}})
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		detail(c, http.StatusBadRequest, "only PDF files are accepted")
		return
	}
	if header.Size == 0 {
		detail(c, http.StatusBadRequest, "uploaded PDF is empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conversion := s.addConversion(header.Filename, "text of "+header.Filename, "# "+header.Filename+"\n")
	c.JSON(http.StatusCreated, conversion)
}

func (s *Server) findConversion(c *gin.Context) (int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"loc": []string{"path", "conversion_id"}, "msg": "value is not a valid integer"}}})
		return 0, false
	}
	for i, conv := range s.conversions {
		if conv.ID == id {
			return i, true
		}
	}
	detail(c, http.StatusNotFound, "conversion not found")
	return 0, false
}

func (s *Server) getConversion(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findConversion(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.conversions[i])
}

func (s *Server) conversionText(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findConversion(c)
	if !ok {
		return
	}
	text := s.conversions[i].TextContent
	if strings.HasSuffix(c.Request.URL.Path, "/processed_text") {
		text = s.conversions[i].ProcessedText
	}
	c.String(http.StatusOK, text)
}

func (s *Server) conversionTextJSON(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findConversion(c)
	if !ok {
		return
	}
	conv := s.conversions[i]
	c.JSON(http.StatusOK, model.ConversionText{
		ID:               conv.ID,
		OriginalFilename: conv.OriginalFilename,
		PageCount:        conv.PageCount,
		TextContent:      conv.TextContent,
		ProcessedText:    conv.ProcessedText,
	})
}

func (s *Server) deleteConversion(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.findConversion(c)
	if !ok {
		return
	}
	conv := s.conversions[i]
	delete(s.files, conv.OutputFilename)
	delete(s.files, conv.MarkdownPath)
	s.conversions = append(s.conversions[:i], s.conversions[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) download(c *gin.Context) {
	s.mu.Lock()
	data, ok := s.files[c.Param("filename")]
	s.mu.Unlock()

	if !ok {
		detail(c, http.StatusNotFound, "file not found")
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}
