package main

import (
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

func TestParseVerbosity(t *testing.T) {
	for s, exp := range map[string]log.Lvl{
		"fatal":   log.LvlCrit,
		"error":   log.LvlError,
		"warning": log.LvlWarn,
		"info":    log.LvlInfo,
		"debug":   log.LvlDebug,
		" INFO ":  log.LvlInfo,
	} {
		got, err := parseVerbosity(s)
		require.NoError(t, err, s)
		require.Equal(t, exp, got, s)
	}

	_, err := parseVerbosity("trace")
	require.Error(t, err)
}
