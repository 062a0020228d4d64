package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_Levels(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := Init(Options{Dev: true, Output: &buf})
	log.Info("hidden")
	log.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "key=value")

	buf.Reset()
	log = Init(Options{Verbose: true, Output: &buf})
	log.Debug("detail")
	assert.Contains(t, buf.String(), `"msg":"detail"`)
	assert.Same(t, Log, log)
}
