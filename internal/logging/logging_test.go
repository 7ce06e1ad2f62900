package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantLevel logrus.Level
		wantErr   bool
	}{
		{name: "defaults", cfg: Config{}, wantLevel: logrus.InfoLevel},
		{name: "debug text", cfg: Config{Level: "debug", Format: "text"}, wantLevel: logrus.DebugLevel},
		{name: "warn json", cfg: Config{Level: "warn", Format: "json"}, wantLevel: logrus.WarnLevel},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, log.GetLevel())
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Format: "json"}, &buf)
	require.NoError(t, err)

	log.WithField("bucket", "b").Info("Upload complete")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Upload complete", entry["msg"])
	assert.Equal(t, "b", entry["bucket"])
}

func TestLevels(t *testing.T) {
	assert.Contains(t, Levels(), "info")
	assert.Len(t, Levels(), len(logrus.AllLevels))
}
