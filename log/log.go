// Package log provides the runtime's subsystem logging backend, in the
// same shape lnd uses throughout its own subpackages: a package-level
// btclog.Logger that defaults to disabled, a SetLogLevel/UseLogger pair
// for wiring a real backend in at startup, and an optional rotating file
// sink for long-running daemons.
package log

import (
	"os"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// log is this package's own subsystem logger, used by the log package
// itself for meta-diagnostics (e.g. rotation failures). Individual
// runtime subpackages (runtime, channel, auxserver) declare their own
// package-level `log` variable, defaulting to btclog.Disabled, and
// expose a `UseLogger(btclog.Logger)` setter the embedding binary calls
// explicitly once InitBackend/InitLogRotator has run — never by calling
// AddSubLogger from a package-level var initializer, since those run
// before main and would always observe a nil Backend. This matches the
// teacher's per-package UseLogger convention.
var log = btclog.Disabled

// Subsystems maps a short subsystem tag to its logger, so that
// SetLogLevels can apply a level to every registered subsystem at once.
var Subsystems = make(map[string]btclog.Logger)

// Backend is the shared backend every subsystem logger is derived from.
// It starts out nil; callers must invoke InitBackend (or InitLogRotator)
// before any subsystem produces output, or logging is silently
// discarded via btclog.Disabled.
var Backend *btclog.Backend

// AddSubLogger creates a leveled logger for tag against the current
// Backend and registers it in Subsystems. If InitBackend/InitLogRotator
// has not been called yet, the returned logger is btclog.Disabled.
func AddSubLogger(tag string) btclog.Logger {
	if Backend == nil {
		return btclog.Disabled
	}
	logger := Backend.Logger(tag)
	Subsystems[tag] = logger
	return logger
}

// InitBackend attaches writer as the log backend and upgrades this
// package's own logger from Disabled.
func InitBackend(writer *btclog.Backend) {
	Backend = writer
	log = AddSubLogger("LOGS")
}

// InitLogRotator initializes a rotating file logger writing to
// logFile, rotated at maxRollMB megabytes, keeping at most maxRolls.
// This matches lnd's cmd/lnd log rotation setup: stdout plus a rotated
// file, combined into one io.Writer via the rotator.
func InitLogRotator(logFile string, maxRollMB, maxRolls int) error {
	r, err := rotator.New(logFile, int64(maxRollMB)*1024, false, maxRolls)
	if err != nil {
		return err
	}

	backend := btclog.NewBackend(logWriter{rotator: r, alsoStdout: true})
	InitBackend(backend)
	return nil
}

// logWriter fans every write out to the rotator and, optionally,
// os.Stdout, matching the teacher's logWriter type in cmd/lnd.
type logWriter struct {
	rotator    *rotator.Rotator
	alsoStdout bool
}

func (w logWriter) Write(p []byte) (int, error) {
	if w.alsoStdout {
		_, _ = os.Stdout.Write(p)
	}
	return w.rotator.Write(p)
}

// SetLogLevels sets the log level of every registered subsystem. An
// unrecognized level string is a no-op, matching lnd's own tolerant
// behavior for a malformed --debuglevel flag.
func SetLogLevels(level string) {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return
	}
	for _, logger := range Subsystems {
		logger.SetLevel(lvl)
	}
}

// SetLogLevel sets the log level of a single subsystem tag, if
// registered and the level string is recognized.
func SetLogLevel(tag, level string) bool {
	logger, ok := Subsystems[tag]
	if !ok {
		return false
	}
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return false
	}
	logger.SetLevel(lvl)
	return true
}
