package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "debug", Format: "json"})

	require.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewLoggerDefaultsToInfoOnBadLevel(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "chatty", Format: "json"})

	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
