package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_NaiveServerFormat(t *testing.T) {
	raw := `{"id":7,"original_filename":"cat.png","created_at":"2024-05-01T12:30:45.123456"}`

	var img Image
	err := json.Unmarshal([]byte(raw), &img)
	require.NoError(t, err)

	assert.Equal(t, 2024, img.CreatedAt.Year())
	assert.Equal(t, time.May, img.CreatedAt.Month())
	assert.Equal(t, 123456000, img.CreatedAt.Nanosecond())
	assert.Equal(t, "2024-05-01T12:30:45.123456", img.CreatedAt.String())

	out, err := json.Marshal(img.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01T12:30:45.123456"`, string(out))
}

func TestTimestamp_RFC3339(t *testing.T) {
	ts, err := ParseTimestamp("2024-05-01T12:30:45Z")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestTimestamp_NullAndEmpty(t *testing.T) {
	var c Conversion
	err := json.Unmarshal([]byte(`{"id":1,"created_at":null}`), &c)
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.IsZero())

	out, err := json.Marshal(c.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestTimestamp_Invalid(t *testing.T) {
	var img Image
	err := json.Unmarshal([]byte(`{"created_at":"yesterday"}`), &img)
	assert.Error(t, err)
}
