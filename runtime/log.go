package runtime

import "github.com/btcsuite/btclog"

// log is this package's subsystem logger. It starts out disabled; the
// embedding binary (cmd/silorund) installs a real one via UseLogger once
// its own backend is up, matching the teacher's per-package UseLogger
// convention rather than resolving a logger at package-init time (var
// initializers run before main, ahead of any backend being installed).
var log = btclog.Disabled

// UseLogger sets the logger used by this package. It should be called
// immediately after silolog.InitBackend/InitLogRotator, before the
// runtime does any work.
func UseLogger(logger btclog.Logger) {
	log = logger
}
