package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/urfave/cli"
)

// macaroonTransport attaches the raw macaroon bytes from disk to every
// request, the way lncli's getClientConn attaches one to every gRPC
// call, except silorund's auxserver gate expects the raw bytes rather
// than a per-request freshly-caveated macaroon.
type macaroonTransport struct {
	base http.RoundTripper
	raw  []byte
}

func (t macaroonTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.raw != nil {
		req.Header.Set("Macaroon", string(t.raw))
	}
	return t.base.RoundTrip(req)
}

func newHTTPClient(ctx *cli.Context) (*http.Client, error) {
	transport := http.DefaultTransport

	if !ctx.GlobalBool("no-macaroons") {
		macPath := cleanAndExpandPath(ctx.GlobalString("macaroonpath"))
		raw, err := os.ReadFile(macPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read macaroon: %w", err)
		}
		transport = macaroonTransport{base: transport, raw: raw}
	}

	return &http.Client{Transport: transport}, nil
}

// fetch issues a GET against addr+path and returns the response body.
func fetch(ctx *cli.Context, addr, path string) ([]byte, error) {
	client, err := newHTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Get("http://" + addr + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Status, string(body))
	}
	return body, nil
}
