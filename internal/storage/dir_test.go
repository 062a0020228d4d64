package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestDirStorage_SaveDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewDirStorage(fs, "/export")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "1-cat.png", strings.NewReader("meow")))
	data, err := afero.ReadFile(fs, "/export/1-cat.png")
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))
	assert.Equal(t, "/export/1-cat.png", store.URL("1-cat.png"))

	require.NoError(t, store.Delete(ctx, "1-cat.png"))
	exists, err := afero.Exists(fs, "/export/1-cat.png")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, store.Delete(ctx, "never-there.png"))
}

func TestDirStorage_StaysInsideRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewDirStorage(fs, "/export")
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "../../etc/x.png", strings.NewReader("x")))
	exists, _ := afero.Exists(fs, "/export/etc/x.png")
	assert.True(t, exists)
}

func TestDirStorage_FailedCopyLeavesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewDirStorage(fs, "/export")
	require.NoError(t, err)

	err = store.Save(context.Background(), "2-dog.png", failingReader{})
	require.Error(t, err)

	files, err := afero.ReadDir(fs, "/export")
	require.NoError(t, err)
	assert.Empty(t, files)
}
