package main

import (
	"github.com/DaGoOfMaN/solarcoin/infrastructure/config"
	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BINF")

// initLog starts the log backend and applies the configured levels. Logs go
// to stdout, and to log files when --logfile is set.
func initLog(debugFlags *config.DebugFlags) error {
	if debugFlags.LogFile != "" {
		logger.InitLog(debugFlags.LogFile, debugFlags.ErrLogFile())
	} else {
		logger.InitLogStdout(logger.LevelTrace)
	}
	return logger.ParseAndSetLogLevels(debugFlags.EffectiveLogLevel())
}
