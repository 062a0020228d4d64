package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MigratesInMemory(t *testing.T) {
	conn, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer Close(conn)

	version, err := Version(conn.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var count int
	require.NoError(t, conn.Get(&count, `SELECT COUNT(*) FROM uploads`))
	assert.Zero(t, count)

	require.NoError(t, MigrateDown(conn.DB, "sqlite"))
	version, err = Version(conn.DB, "sqlite")
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestInit_CreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	conn, err := Open("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer Close(conn)

	assert.FileExists(t, path)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}
