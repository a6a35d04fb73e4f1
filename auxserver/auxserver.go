// Package auxserver implements the auxiliary server supervisor of
// spec.md §4.9: bookkeeping to start and cleanly stop the long-lived
// service goroutines (metrics exposition, introspection HTTP endpoint)
// that sit alongside the runtime core but are not required for its
// correctness.
package auxserver

import (
	"sync"

	"github.com/btcsuite/btclog"
	"go.uber.org/multierr"
)

// log is this package's subsystem logger. It starts out disabled; the
// embedding binary installs a real one via UseLogger once its backend is
// up, following the same per-package convention as runtime/log.go.
var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Server is a long-lived background service the Supervisor manages. Run
// is called on a dedicated goroutine; it must return once terminate is
// closed. Run's error, if any, is surfaced from Supervisor.Stop.
type Server interface {
	Name() string
	Run(terminate <-chan struct{}) error
}

type record struct {
	name      string
	terminate chan struct{}
	done      chan error
}

// Supervisor holds the {name, join handle, terminator} records for every
// server started through it.
type Supervisor struct {
	mu      sync.Mutex
	records []*record
}

// New returns an empty Supervisor.
func New() *Supervisor {
	return &Supervisor{}
}

// Start launches s on its own goroutine and adds it to the supervised
// set.
func (sup *Supervisor) Start(s Server) {
	rec := &record{
		name:      s.Name(),
		terminate: make(chan struct{}),
		done:      make(chan error, 1),
	}

	go func() {
		rec.done <- s.Run(rec.terminate)
	}()

	sup.mu.Lock()
	sup.records = append(sup.records, rec)
	sup.mu.Unlock()
}

// Stop sends every terminator, ignoring a server that has already exited
// on its own, then joins every goroutine. Errors from individual servers
// are combined with multierr so no server's failure is lost.
func (sup *Supervisor) Stop() error {
	sup.mu.Lock()
	records := sup.records
	sup.records = nil
	sup.mu.Unlock()

	for _, rec := range records {
		closeRecordTerminate(rec)
	}

	var err error
	for _, rec := range records {
		if recErr := <-rec.done; recErr != nil {
			log.Errorf("aux server %q exited with error: %v", rec.name, recErr)
			err = multierr.Append(err, recErr)
		}
	}
	return err
}

// closeRecordTerminate closes a record's terminate channel. Separated
// out so Stop reads cleanly; sending on an already-exited server's
// terminate channel is harmless since nothing ever receives twice.
func closeRecordTerminate(rec *record) {
	close(rec.terminate)
}
