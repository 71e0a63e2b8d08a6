package config

import (
	"strings"

	"github.com/DaGoOfMaN/solarcoin/domain/consensus/blockcache"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/misbehavior"
	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
	"github.com/pkg/errors"
)

const (
	defaultLogLevel = "info"
)

// DebugFlags holds the logging and diagnostics configuration shared by
// commands.
type DebugFlags struct {
	Debug              bool   `long:"debug" description:"Log at debug level in all subsystems; overrides --loglevel"`
	PrintStakeModifier bool   `long:"printstakemodifier" description:"Log the stake entropy bit of every block"`
	LogLevel           string `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogFile            string `long:"logfile" description:"Write logs to this file in addition to stdout; errors also go to <logfile>_err"`
}

// DefaultDebugFlags returns the debug flags commands start from.
func DefaultDebugFlags() DebugFlags {
	return DebugFlags{LogLevel: defaultLogLevel}
}

// EffectiveLogLevel returns the log level string to pass to
// logger.ParseAndSetLogLevels.
func (debugFlags *DebugFlags) EffectiveLogLevel() string {
	if debugFlags.Debug {
		return "debug"
	}
	if debugFlags.LogLevel == "" {
		return defaultLogLevel
	}
	return debugFlags.LogLevel
}

// ErrLogFile returns the path of the error log that accompanies LogFile, or
// an empty string when file logging is off.
func (debugFlags *DebugFlags) ErrLogFile() string {
	if debugFlags.LogFile == "" {
		return ""
	}
	return debugFlags.LogFile + "_err"
}

// ValidateDebugFlags makes sure the log level is well formed. Subsystem
// names are only known once every package registered its logger, so they are
// checked when the levels are applied.
func (debugFlags *DebugFlags) ValidateDebugFlags() error {
	if debugFlags.Debug {
		return nil
	}
	if debugFlags.LogLevel == "" {
		return nil
	}
	if strings.Contains(debugFlags.LogLevel, "=") {
		return nil
	}
	_, err := logger.ParseLevel(debugFlags.LogLevel)
	return errors.Wrap(err, "The specified debug level is invalid")
}

// PolicyFlags holds the local policy applied while validating blocks.
type PolicyFlags struct {
	BanScore        uint32 `long:"banscore" description:"Misbehavior score at which a block is banned"`
	MerkleCacheSize int    `long:"merklecachesize" description:"Number of block merkle trees and validation results kept in memory"`
}

// DefaultPolicyFlags returns the policy flags commands start from.
func DefaultPolicyFlags() PolicyFlags {
	return PolicyFlags{
		BanScore:        misbehavior.DefaultBanThreshold,
		MerkleCacheSize: blockcache.DefaultCapacity,
	}
}

// ValidatePolicyFlags makes sure the policy values are usable.
func (policyFlags *PolicyFlags) ValidatePolicyFlags() error {
	if policyFlags.BanScore == 0 {
		return errors.New("--banscore must be positive")
	}
	if policyFlags.MerkleCacheSize <= 0 {
		return errors.Errorf("--merklecachesize must be positive, got %d", policyFlags.MerkleCacheSize)
	}
	return nil
}
