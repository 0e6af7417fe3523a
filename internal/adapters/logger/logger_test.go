package logger_adapter

import (
	"bytes"
	"dreamsquare-service/internal/core/port"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFluent struct {
	tags    []string
	records []map[string]interface{}
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.tags = append(f.tags, tag)
	f.records = append(f.records, message.(port.Fields))
	return nil
}

func (f *fakeFluent) Close() error { return nil }

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"use_case": "SubmitOffer"}).
		Error("Repository returned an error", errors.New("boom"), port.Fields{"offer_id": "o-1"})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "Repository returned an error", record["msg"])
	assert.Equal(t, "SubmitOffer", record["use_case"])
	assert.Equal(t, "o-1", record["offer_id"])
	assert.Equal(t, "boom", record["err"])
}

func TestSlogAdapterLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: ParseLevel("warn")})

	logger.Info("hidden", nil)
	logger.Warn("shown", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFluentAdapter(t *testing.T) {
	client := &fakeFluent{}
	adapter, err := NewFluentLoggerAdapter(client, slog.LevelInfo)
	require.NoError(t, err)

	logger := adapter.WithFields(port.Fields{"service_name": "dreamsquare-service"})
	logger.Debug("dropped", nil)
	logger.Error("failed", errors.New("boom"), port.Fields{"component": "OfferRepository"})

	require.Equal(t, []string{"error"}, client.tags)
	rec := client.records[0]
	assert.Equal(t, "failed", rec["message"])
	assert.Equal(t, "boom", rec["error"])
	assert.Equal(t, "dreamsquare-service", rec["service_name"])
	assert.Equal(t, "OfferRepository", rec["component"])

	_, err = NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLogger(t *testing.T) {
	a, b := &fakeFluent{}, &fakeFluent{}
	la, _ := NewFluentLoggerAdapter(a, slog.LevelDebug)
	lb, _ := NewFluentLoggerAdapter(b, slog.LevelDebug)

	multi, err := NewMultiloggerAdapter(la, nil, lb)
	require.NoError(t, err)
	multi.WithFields(port.Fields{"k": "v"}).Info("hello", nil)

	assert.Len(t, a.records, 1)
	assert.Len(t, b.records, 1)
	assert.Equal(t, "v", b.records[0]["k"])

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}
