// Package config loads silorund's daemon configuration, in the same
// two-pass shape lnd's config.go uses: parse command-line flags first,
// then parse an optional config file, then re-parse the command line so
// flags always win over the file.
package config

import (
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename  = "silorun.conf"
	defaultDataDirname     = "data"
	defaultLogDirname      = "logs"
	defaultLogFilename     = "silorund.log"
	defaultMaxLogFileSize  = 10
	defaultMaxLogFiles     = 3
	defaultIntrospectAddr  = "localhost:9090"
	defaultMetricsAddr     = "localhost:9091"
	defaultMacaroonFilename = "admin.macaroon"
)

// Config is silorund's top-level configuration, covering everything the
// Bootstrap protocol (spec.md §6) and the auxiliary HTTP servers need.
// Only the shape of these fields is this package's concern: interpreting
// ApplicationConfigPath/PermissionsConfigPath/SignatureTablePath's
// contents belongs to the out-of-scope collaborators named in spec.md §1.
type Config struct {
	ShowVersion bool `short:"V" long:"version" description:"Display version information and exit"`

	ConfigFile string `long:"configfile" description:"Path to configuration file"`
	DataDir    string `long:"datadir" description:"Directory to store data"`

	LogDir        string `long:"logdir" description:"Directory to log output"`
	MaxLogFileSize int   `long:"maxlogfilesize" description:"Maximum log file size in MB before rotation"`
	MaxLogFiles    int   `long:"maxlogfiles" description:"Maximum number of rotated log files to keep"`
	DebugLevel     string `long:"debuglevel" description:"Logging level for all subsystems"`

	ApplicationConfigPath string `long:"appconfig" description:"Path to the application configuration blob"`
	PermissionsConfigPath string `long:"permissionsconfig" description:"Path to the permissions configuration blob"`
	SecureServerConfigPath string `long:"secureserverconfig" description:"Path to the secure-server configuration blob"`
	SignatureTablePath     string `long:"signaturetable" description:"Path to the precomputed module-signature table"`
	KMSCredentialsPath     string `long:"kmscredentials" description:"Path to KMS credentials"`
	InitialNodeName        string `long:"initialnode" description:"Name the NodeFactory should build the first application node from"`

	IntrospectionAddr string `long:"introspectionaddr" description:"Address to serve the introspection HTTP endpoint on, empty to disable; served only when --macaroonrootkey is set"`
	MetricsAddr       string `long:"metricsaddr" description:"Address to serve the Prometheus metrics endpoint on, empty to disable; served only when --macaroonrootkey is set"`
	MacaroonRootKeyPath string `long:"macaroonrootkey" description:"Path to the root key used to mint/verify auxiliary-server macaroons"`
	MacaroonFilePath    string `long:"macaroonfile" description:"Path to write/read the baked admin macaroon silounctl authenticates with"`
}

// Default returns a Config populated with the same defaults lnd's
// loadConfig starts from before any flag or file parsing happens.
func Default() *Config {
	return &Config{
		ConfigFile:     defaultConfigFilename,
		DataDir:        defaultDataDirname,
		LogDir:         defaultLogDirname,
		MaxLogFileSize: defaultMaxLogFileSize,
		MaxLogFiles:    defaultMaxLogFiles,
		DebugLevel:     "info",
		IntrospectionAddr: defaultIntrospectAddr,
		MetricsAddr:       defaultMetricsAddr,
		MacaroonFilePath:  filepath.Join(defaultDataDirname, defaultMacaroonFilename),
	}
}

// Load parses args (normally os.Args[1:]) twice, the way lnd's
// loadConfig does: once to discover --configfile (a --help request is
// returned from here as a *flags.Error of type ErrHelp; --version is only
// recorded in ShowVersion), once more after merging in the config file's values,
// so that explicit command-line flags always override the file.
func Load(args []string) (*Config, error) {
	preCfg := Default()
	parser := flags.NewParser(preCfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if preCfg.ConfigFile != "" {
		if _, err := os.Stat(preCfg.ConfigFile); err == nil {
			iniParser := flags.NewParser(cfg, flags.Default)
			if err := flags.NewIniParser(iniParser).ParseFile(preCfg.ConfigFile); err != nil {
				return nil, err
			}
		}
	}

	parser = flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	return cfg, nil
}

// LogFilePath returns the full path of the rotated log file under
// cfg.LogDir.
func (cfg *Config) LogFilePath() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// cleanAndExpandPath expands a leading ~ to the user's home directory
// and cleans the result, matching lnd's helper of the same name.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
