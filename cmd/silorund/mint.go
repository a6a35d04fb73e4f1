package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	macaroon "gopkg.in/macaroon.v2"
)

// adminCaveat is the single first-party caveat every auxiliary HTTP
// server requires: one admin macaroon authenticates against both the
// metrics and introspection endpoints, the way lnd's admin.macaroon
// grants blanket access rather than minting a narrower macaroon per
// RPC subset.
const adminCaveat = "access = admin"

// ensureMacaroon mints a root key and a baked macaroon at
// rootKeyPath/macaroonPath on first run, that is, when no file exists at
// rootKeyPath. If the root key file exists it returns without checking
// macaroonPath. The baked macaroon carries one first-party caveat per
// entry in caveats.
func ensureMacaroon(rootKeyPath, macaroonPath string, caveats ...string) error {
	if _, err := os.Stat(rootKeyPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		return fmt.Errorf("unable to generate macaroon root key: %w", err)
	}

	m, err := macaroon.New(rootKey, []byte("silorun-root"), "silorun", macaroon.LatestVersion)
	if err != nil {
		return fmt.Errorf("unable to mint macaroon: %w", err)
	}
	for _, c := range caveats {
		if err := m.AddFirstPartyCaveat([]byte(c)); err != nil {
			return fmt.Errorf("unable to add caveat %q: %w", c, err)
		}
	}
	raw, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("unable to serialize macaroon: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(rootKeyPath), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(rootKeyPath, rootKey, 0600); err != nil {
		return fmt.Errorf("unable to write macaroon root key: %w", err)
	}
	if err := os.WriteFile(macaroonPath, raw, 0600); err != nil {
		return fmt.Errorf("unable to write macaroon: %w", err)
	}
	return nil
}
