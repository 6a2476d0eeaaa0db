package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Options{Level: "debug", Format: "json"}, &buf))
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	log.WithField("step", 2).Debug("answer accepted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "answer accepted", entry["message"])
	assert.Contains(t, entry, "@timestamp")
	assert.Equal(t, float64(2), entry["step"])
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup(Options{Level: "loud"}, nil)
	assert.Error(t, err)
}

func TestFormatterSelection(t *testing.T) {
	_, isText := Formatter("text").(*log.TextFormatter)
	assert.True(t, isText)
	_, isJSON := Formatter("anything").(*log.JSONFormatter)
	assert.True(t, isJSON)
}
