package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/imagehost/internal/apitest"
)

func newTestS3(t *testing.T, srv *apitest.S3Server, bucket string) *S3Storage {
	t.Helper()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	store, err := NewS3Storage(context.Background(), S3Config{
		Region:    "us-east-1",
		Bucket:    bucket,
		AccessKey: "test",
		SecretKey: "test",
		Endpoint:  srv.URL,
		Prefix:    "/images/",
	})
	require.NoError(t, err)
	return store
}

func TestS3Storage_SaveStream(t *testing.T) {
	srv := apitest.NewS3Server(t, "exports")
	store := newTestS3(t, srv, "exports")
	ctx := context.Background()

	// a pipe has no length and cannot seek
	pr, pw := io.Pipe()
	go func() {
		_, _ = io.WriteString(pw, "meow")
		_ = pw.Close()
	}()

	require.NoError(t, store.Save(ctx, "1-cat.png", pr))
	require.NoError(t, store.Save(ctx, "2-dog.png", strings.NewReader("woof")))

	assert.Equal(t, []string{"exports/images/1-cat.png", "exports/images/2-dog.png"}, srv.Puts())
	data, ok := srv.Object("exports", "images/1-cat.png")
	require.True(t, ok)
	assert.Equal(t, "meow", string(data))
	assert.Equal(t, srv.URL+"/exports/images/1-cat.png", store.URL("1-cat.png"))

	require.NoError(t, store.Delete(ctx, "1-cat.png"))
	assert.Equal(t, []string{"exports/images/2-dog.png"}, srv.Keys())
}

func TestS3Storage_CreatesMissingBucket(t *testing.T) {
	srv := apitest.NewS3Server(t)
	newTestS3(t, srv, "fresh")
	assert.True(t, srv.HasBucket("fresh"))
}

func TestS3Storage_BucketRequired(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{Region: "us-east-1"})
	assert.ErrorContains(t, err, "S3_BUCKET")
}

func TestS3Storage_SaveReadFailure(t *testing.T) {
	srv := apitest.NewS3Server(t, "exports")
	store := newTestS3(t, srv, "exports")

	err := store.Save(context.Background(), "broken.png", failingReader{})
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, srv.Puts())
}
