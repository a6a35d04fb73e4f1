package auxserver

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	name string
	err  error
}

func (f *fakeServer) Name() string { return f.name }

func (f *fakeServer) Run(terminate <-chan struct{}) error {
	<-terminate
	return f.err
}

func TestStopJoinsAllAndCombinesErrors(t *testing.T) {
	sup := New()
	sup.Start(&fakeServer{name: "metrics"})
	sup.Start(&fakeServer{name: "introspection", err: errors.New("boom")})

	done := make(chan error, 1)
	go func() { done <- sup.Stop() }()

	select {
	case err := <-done:
		require.ErrorContains(t, err, "boom")
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestStopOnAlreadyExitedServerIsHarmless(t *testing.T) {
	sup := New()
	exited := make(chan struct{})
	sup.Start(&exitingServer{exited: exited})

	<-exited
	require.NoError(t, sup.Stop())
}

type exitingServer struct {
	exited chan struct{}
}

func (e *exitingServer) Name() string { return "self-exiting" }

func (e *exitingServer) Run(terminate <-chan struct{}) error {
	close(e.exited)
	return nil
}
