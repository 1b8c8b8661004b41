package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	cases := []struct {
		level int
		want  zerolog.Level
	}{
		{LevelInfo, zerolog.InfoLevel},
		{LevelLive, zerolog.InfoLevel},
		{LevelVerbose, zerolog.DebugLevel},
		{LevelTrace, zerolog.TraceLevel},
	}
	for _, tc := range cases {
		logger := New(tc.level, &bytes.Buffer{})
		assert.Equal(t, tc.want, logger.GetLevel(), "level %d", tc.level)
	}
}

func TestNew_OffIsSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelOff, &buf)
	logger.Error().Msg("should not appear")
	assert.Zero(t, buf.Len())
}

func TestNew_Writes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)
	logger.Info().Str("model", "DSLR").Msg("camera initialized")
	out := buf.String()
	assert.Contains(t, out, "camera initialized")
	assert.Contains(t, out, "DSLR")

	buf.Reset()
	logger.Debug().Msg("hidden at info")
	assert.Zero(t, buf.Len())
}
