package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).With("component", "registry")

	log.Info("Client admitted", "room", "1:5:alice:bob", "members", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Client admitted", entry["message"])
	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "1:5:alice:bob", entry["room"])
	assert.Equal(t, float64(2), entry["members"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("loud", &buf)

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
