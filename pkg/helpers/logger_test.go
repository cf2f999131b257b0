package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, env, level string
		want             logrus.Level
	}{
		{"development default", "development", "", logrus.DebugLevel},
		{"production default", "production", "", logrus.InfoLevel},
		{"override", "production", "warn", logrus.WarnLevel},
		{"unknown level ignored", "development", "loud", logrus.DebugLevel},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l := NewLogger("messagely", tc.env, tc.level)
			assert.Equal(t, tc.want, l.GetLevel())
		})
	}
}

func TestNewLogger_Formatter(t *testing.T) {
	t.Parallel()

	_, isText := NewLogger("a", "development", "").Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
	_, isJSON := NewLogger("a", "production", "").Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestLogError_AddsErrorField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	decode := func() map[string]any {
		t.Helper()
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		buf.Reset()
		return line
	}

	LogError(l, "store failed", errors.New("boom"), logrus.Fields{"op": "create"})
	line := decode()
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "create", line["op"])
	assert.Equal(t, "store failed", line["msg"])
	assert.Equal(t, "error", line["level"])

	LogError(l, "nil fields", nil, nil)
	line = decode()
	assert.Equal(t, "nil fields", line["msg"])
	assert.NotContains(t, line, "error")
}

func TestNewLogger_StartupFieldsAreNotClobbered(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(&buf, "messagely", "production", "debug")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "logger ready", line["msg"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "debug", line["log_level"])
	assert.Equal(t, "messagely", line["app"])
	assert.NotContains(t, line, "fields.level")
}
