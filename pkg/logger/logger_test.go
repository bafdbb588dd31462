package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-api/pkg/logger"
)

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Service: "procurement-api", Output: &buf})

	l.Component("lifecycle").Info().Str("request_id", "r1").Msg("aprobada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "procurement-api", line["service"])
	assert.Equal(t, "lifecycle", line["component"])
	assert.Equal(t, "r1", line["request_id"])
	assert.Equal(t, "info", line["level"])
}

func TestNew_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Level: "WARN", Output: &buf})

	l.Info().Msg("no")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("si")
	assert.NotZero(t, buf.Len())
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Level: "verbose", Output: &buf})

	l.Debug().Msg("no")
	assert.Zero(t, buf.Len())
	l.Info().Msg("si")
	assert.NotZero(t, buf.Len())
}
