package view_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gen3utils/internal/view"
)

func setupHumanLogger(level view.LogLevel) (*bytes.Buffer, *bytes.Buffer, view.Logger) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	humanView := view.NewHumanView(view.NewStream(out, errOut), level)

	return out, errOut, humanView.Logger()
}

func TestHumanLogger_WritesToErrorStream(t *testing.T) {
	out, errOut, logger := setupHumanLogger(view.LogLevelDebug)
	logger.Debug("test debug message")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "DEBUG")
	assert.Contains(t, errOut.String(), "test debug message")
}

func TestHumanLogger_InfoLevelFiltersDebug(t *testing.T) {
	_, errOut, logger := setupHumanLogger(view.LogLevelInfo)

	logger.Debug("debug message")
	logger.Info("info message")

	assert.NotContains(t, errOut.String(), "debug message")
	assert.Contains(t, errOut.String(), "info message")
}

func TestHumanLogger_SilentLevelFiltersAll(t *testing.T) {
	_, errOut, logger := setupHumanLogger(view.LogLevelSilent)

	logger.Error("error message")
	logger.Slog().Error("slog message")

	assert.Empty(t, errOut.String())
}

func TestHumanLogger_SlogSharesHandler(t *testing.T) {
	_, errOut, logger := setupHumanLogger(view.LogLevelWarn)

	logger.Slog().Info("hidden")
	logger.Slog().Warn("shown", "file", "etl.yaml")

	assert.NotContains(t, errOut.String(), "hidden")
	assert.Contains(t, errOut.String(), "shown")
	assert.Contains(t, errOut.String(), "etl.yaml")
}

func TestJSONLogger_EmitsJSONLines(t *testing.T) {
	errOut := &bytes.Buffer{}
	jsonView := view.NewJSONView(view.NewStream(&bytes.Buffer{}, errOut), view.LogLevelInfo)

	jsonView.Logger().Debug("debug message")
	jsonView.Logger().Info("info message", "count", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "info message", entry["msg"])
	assert.InDelta(t, 2, entry["count"], 0)
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    view.ViewType
		wantErr bool
	}{
		{in: "", want: view.ViewHuman},
		{in: "human", want: view.ViewHuman},
		{in: "JSON", want: view.ViewJSON},
		{in: "yaml", want: view.ViewNone, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := view.ParseOutputFormat(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want view.LogLevel
		ok   bool
	}{
		{in: "debug", want: view.LogLevelDebug, ok: true},
		{in: "INFO", want: view.LogLevelInfo, ok: true},
		{in: "warning", want: view.LogLevelWarn, ok: true},
		{in: "error", want: view.LogLevelError, ok: true},
		{in: "silent", want: view.LogLevelSilent, ok: true},
		{in: "loud", want: view.LogLevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := view.ParseLogLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestViewTypeString(t *testing.T) {
	assert.Equal(t, "human", view.ViewHuman.String())
	assert.Equal(t, "json", view.ViewJSON.String())
	assert.Equal(t, "none", view.ViewNone.String())
	assert.Equal(t, "unknown", view.ViewType('X').String())
}

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}
