package auxserver

import (
	"context"
	"net/http"

	macaroon "gopkg.in/macaroon.v2"
)

// HTTPServer is an auxserver.Server backed by net/http, gated by a
// single macaroon: every request must present, in the "Macaroon"
// header, a base64-free raw macaroon whose signature verifies against
// rootKey and whose first-party caveats are all satisfied by
// requiredCaveats. This is the same capability idea the runtime core
// enforces on data flow (spec.md §4.4), applied to who may *observe*
// that flow from outside via the metrics/introspection endpoints
// (spec.md §1's stated-out-of-scope exposition layer).
type HTTPServer struct {
	name    string
	addr    string
	handler http.Handler
	rootKey []byte
	caveats []string
	server  *http.Server
}

// NewHTTPServer wraps handler behind macaroon gating. rootKey is the
// same key used to mint the macaroon (see cmd/silorund's ensureMacaroon,
// which mints one with gopkg.in/macaroon.v2 on first run); caveats are
// the first-party caveat strings every presented macaroon must satisfy,
// checked verbatim (e.g. "access = admin").
func NewHTTPServer(name, addr string, handler http.Handler, rootKey []byte, caveats ...string) *HTTPServer {
	return &HTTPServer{name: name, addr: addr, handler: handler, rootKey: rootKey, caveats: caveats}
}

func (s *HTTPServer) Name() string { return s.name }

func (s *HTTPServer) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		raw := req.Header.Get("Macaroon")
		if raw == "" {
			http.Error(w, "missing macaroon", http.StatusUnauthorized)
			return
		}

		m := &macaroon.Macaroon{}
		if err := m.UnmarshalBinary([]byte(raw)); err != nil {
			http.Error(w, "malformed macaroon", http.StatusUnauthorized)
			return
		}
		if err := m.Verify(s.rootKey, func(caveat string) error {
			for _, want := range s.caveats {
				if caveat == want {
					return nil
				}
			}
			return errUnrecognizedCaveat
		}, nil); err != nil {
			http.Error(w, "macaroon verification failed", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// Run implements Server: it listens until terminate is closed, then
// shuts down gracefully.
func (s *HTTPServer) Run(terminate <-chan struct{}) error {
	s.server = &http.Server{Addr: s.addr, Handler: s.gate(s.handler)}

	errCh := make(chan error, 1)
	go func() { errCh <- s.server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-terminate:
		return s.server.Shutdown(context.Background())
	}
}

type unrecognizedCaveatError struct{}

func (unrecognizedCaveatError) Error() string { return "unrecognized caveat" }

var errUnrecognizedCaveat = unrecognizedCaveatError{}
