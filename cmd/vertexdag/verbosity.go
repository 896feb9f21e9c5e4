package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

// verbosity levels accepted by the --verbosity flag
var verbosityLevels = map[string]log.Lvl{
	"fatal":   log.LvlCrit,
	"error":   log.LvlError,
	"warning": log.LvlWarn,
	"info":    log.LvlInfo,
	"debug":   log.LvlDebug,
}

func parseVerbosity(s string) (log.Lvl, error) {
	lvl, ok := verbosityLevels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown verbosity %q, possible values: [fatal, error, warning, info, debug]", s)
	}
	return lvl, nil
}

func setupLogging(w io.Writer, verbosity string) error {
	lvl, err := parseVerbosity(verbosity)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(w, log.TerminalFormat(false))))
	return nil
}
