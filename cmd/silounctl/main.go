// Command silounctl is the operator control plane for silorund: it
// talks to the macaroon-gated introspection and metrics HTTP endpoints
// and renders what it gets back, the way lncli renders lnd's gRPC
// responses.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
)

const (
	defaultIntrospectionAddr = "localhost:9090"
	defaultMetricsAddr       = "localhost:9091"
	defaultMacaroonFilename  = "silorun.macaroon"
)

var (
	siloHomeDir         = appDataDir("silorun", false)
	defaultMacaroonPath = filepath.Join(siloHomeDir, defaultMacaroonFilename)
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[silounctl] %v\n", err)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "silounctl"
	app.Version = "0.1"
	app.Usage = "control plane for the silorun confidential-compute runtime"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "introspectionserver",
			Value: defaultIntrospectionAddr,
			Usage: "host:port of silorund's introspection endpoint",
		},
		cli.StringFlag{
			Name:  "metricsserver",
			Value: defaultMetricsAddr,
			Usage: "host:port of silorund's metrics endpoint",
		},
		cli.BoolFlag{
			Name:  "no-macaroons",
			Usage: "disable macaroon authentication",
		},
		cli.StringFlag{
			Name:  "macaroonpath",
			Value: defaultMacaroonPath,
			Usage: "path to macaroon file",
		},
	}
	app.Commands = []cli.Command{
		listNodesCommand,
		listEventsCommand,
		metricsCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

// cleanAndExpandPath expands a leading ~ and environment variables in
// path, matching lncli's helper of the same name.
func cleanAndExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(siloHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}
	return filepath.Clean(os.ExpandEnv(path))
}

// appDataDir mirrors btcutil.AppDataDir's default-location behavior
// without pulling in the whole btcsuite dependency for one helper.
func appDataDir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}
	appName = strings.TrimPrefix(appName, ".")

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "."+strings.ToLower(appName))
}
