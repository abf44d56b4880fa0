package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "debug", JSON: true, Output: &buf})
	defer Configure(Options{Level: "info"})

	Info("movie created", "key", "alien", "owner", 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "movie created", entry["@message"])
	assert.Equal(t, "alien", entry["key"])
	assert.Equal(t, "info", entry["@level"])
}

func TestPrintfStyleLogging(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "info", Output: &buf})
	defer Configure(Options{Level: "info"})

	Warn("Module %s registered after initialization", "movies")
	assert.Contains(t, buf.String(), "Module movies registered after initialization")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "warn", Output: &buf})
	defer Configure(Options{Level: "info"})

	Debug("hidden")
	Info("hidden too")
	assert.Empty(t, buf.String())

	Error("visible", "code", "NOT_FOUND")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "code=NOT_FOUND")
}

func TestOddKeyValueArgs(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "info", Output: &buf})
	defer Configure(Options{Level: "info"})

	Info("odd", "key")
	assert.Contains(t, buf.String(), "<missing>")
}
