package app

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/imagehost/internal/config"
	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:       "development",
		APIBaseURL:   "127.0.0.1:9",
		DBDriver:     "sqlite",
		DBConnection: ":memory:",
		HistoryLimit: 3,
		ExportDir:    "/export",
	}
}

func TestNew_Wiring(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "http://127.0.0.1:9", a.Client.BaseURL())
	assert.NotNil(t, a.Gallery)
	assert.NotNil(t, a.Conversions)

	history, err := a.History()
	require.NoError(t, err)
	_, err = history.Record(&model.Image{ID: 1, OriginalFilename: "a.png"}, model.HistorySourceCLI)
	require.NoError(t, err)

	again, err := a.History()
	require.NoError(t, err)
	assert.Same(t, history, again)
}

func TestApp_Storage(t *testing.T) {
	a, err := New(testConfig())
	require.NoError(t, err)
	a.Fs = afero.NewMemMapFs()
	ctx := context.Background()

	store, err := a.Storage(ctx, "", "")
	require.NoError(t, err)
	assert.IsType(t, &storage.DirStorage{}, store)
	assert.Equal(t, "/export/x.png", store.URL("x.png"))

	store, err = a.Storage(ctx, ExportToDir, "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/x.png", store.URL("x.png"))

	_, err = a.Storage(ctx, ExportToS3, "")
	assert.Error(t, err)

	_, err = a.Storage(ctx, "ftp", "")
	assert.Error(t, err)
}
