package apitest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

// S3Server is a path-style S3 stand-in that keeps objects in memory.
// It understands bucket HEAD and PUT, and object PUT, GET and DELETE.
type S3Server struct {
	*httptest.Server

	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte // "bucket/key"
	puts    []string
}

// NewS3Server starts an S3 stand-in with the given buckets already created
func NewS3Server(t testing.TB, buckets ...string) *S3Server {
	t.Helper()

	s := &S3Server{
		buckets: make(map[string]bool),
		objects: make(map[string][]byte),
	}
	for _, b := range buckets {
		s.buckets[b] = true
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Object returns the stored body of bucket/key
func (s *S3Server) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[bucket+"/"+key]
	return data, ok
}

// Keys lists stored objects as "bucket/key", sorted
func (s *S3Server) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Puts returns every object PUT received, in order, as "bucket/key"
func (s *S3Server) Puts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.puts...)
}

func (s *S3Server) HasBucket(bucket string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buckets[bucket]
}

func (s *S3Server) serve(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	if key == "" {
		switch r.Method {
		case http.MethodHead:
			if !s.buckets[bucket] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			s.buckets[bucket] = true
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if !s.buckets[bucket] {
		s3Error(w, http.StatusNotFound, "NoSuchBucket")
		return
	}

	name := bucket + "/" + key
	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			s3Error(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		s.objects[name] = data
		s.puts = append(s.puts, name)
		w.Header().Set("ETag", `"stub"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := s.objects[name]
		if !ok {
			s3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(s.objects, name)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func s3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, "<Error><Code>"+code+"</Code></Error>")
}
