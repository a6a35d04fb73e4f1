// Command silorund is the confidential-compute runtime daemon: it loads
// configuration, wires up logging and metrics, runs the Bootstrap
// protocol, and blocks until it receives SIGINT or SIGTERM, then stops
// the runtime.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/silonet/silorun/auxserver"
	"github.com/silonet/silorun/channel"
	"github.com/silonet/silorun/config"
	"github.com/silonet/silorun/introspection"
	silolog "github.com/silonet/silorun/log"
	"github.com/silonet/silorun/metrics"
	rt "github.com/silonet/silorun/runtime"
)

// silorundMain is the true entry point for silorund. This function is
// required since defers created in the top-level scope of main aren't
// run if os.Exit is called.
func silorundMain() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	if err := silolog.InitLogRotator(cfg.LogFilePath(), cfg.MaxLogFileSize, cfg.MaxLogFiles); err != nil {
		return fmt.Errorf("unable to init log rotation: %w", err)
	}
	channel.UseLogger(silolog.AddSubLogger("CHAN"))
	rt.UseLogger(silolog.AddSubLogger("RUNT"))
	auxserver.UseLogger(silolog.AddSubLogger("AUXS"))
	silolog.SetLogLevels(cfg.DebugLevel)

	if cfg.ShowVersion {
		fmt.Println("silorund version", version())
		return nil
	}

	appConfig, err := readOptional(cfg.ApplicationConfigPath)
	if err != nil {
		return err
	}
	permissionsConfig, err := readOptional(cfg.PermissionsConfigPath)
	if err != nil {
		return err
	}
	secureServerConfig, err := readOptional(cfg.SecureServerConfigPath)
	if err != nil {
		return err
	}
	signatureTable, err := readOptional(cfg.SignatureTablePath)
	if err != nil {
		return err
	}
	kmsCredentials, err := readOptional(cfg.KMSCredentialsPath)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	metricsRegistry := metrics.NewRegistry(promReg)
	events := introspection.New()
	supervisor := auxserver.New()

	factory, err := loadNodeFactory(cfg)
	if err != nil {
		return err
	}

	runtime, err := rt.Bootstrap(rt.Config{
		Factory:   factory,
		Events:    events,
		Metrics:   metricsRegistry,
		Auxiliary: supervisor,
	}, rt.RuntimeConfiguration{
		ApplicationConfig:  appConfig,
		PermissionsConfig:  permissionsConfig,
		SecureServerConfig: secureServerConfig,
		SignatureTable:     signatureTable,
		KMSCredentials:     kmsCredentials,
		InitialNodeName:    cfg.InitialNodeName,
	})
	if err != nil {
		return fmt.Errorf("unable to bootstrap runtime: %w", err)
	}

	if cfg.MacaroonRootKeyPath != "" {
		if err := ensureMacaroon(cfg.MacaroonRootKeyPath, cfg.MacaroonFilePath, adminCaveat); err != nil {
			return err
		}
		rootKey, err := os.ReadFile(cfg.MacaroonRootKeyPath)
		if err != nil {
			return fmt.Errorf("unable to read macaroon root key: %w", err)
		}
		if cfg.MetricsAddr != "" {
			supervisor.Start(auxserver.NewHTTPServer("metrics", cfg.MetricsAddr,
				prometheusHandler(promReg), rootKey, adminCaveat))
		}
		if cfg.IntrospectionAddr != "" {
			supervisor.Start(auxserver.NewHTTPServer("introspection", cfg.IntrospectionAddr,
				introspectionHandler(events), rootKey, adminCaveat))
		}
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	return runtime.Stop()
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func main() {
	if err := silorundMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
