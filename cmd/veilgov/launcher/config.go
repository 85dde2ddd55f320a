package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/veilgov/gov"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node    NodeConfig
	API     APIConfig
	Metrics MetricsConfig
	Logging LoggingConfig
	Gov     GovConfig
	Oracle  OracleConfig
}

type NodeConfig struct {
	DataDir string
	Name    string
}

type APIConfig struct {
	Enabled bool
	Addr    string
	Port    int
}

type MetricsConfig struct {
	Enabled bool
	Addr    string
	Port    int
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

// GovConfig selects the network preset and its runtime overrides.
type GovConfig struct {
	NetworkName string
	NetworkID   uint64
	FakeNet     bool
	// FakeNetSubmitters is the number of deterministic submitter identities
	// pre-authorized on a fake network.
	FakeNetSubmitters int
	// CooldownSeconds overrides the preset's rate-limit window when >= 0.
	CooldownSeconds int64
	StrictHandles   bool
}

type OracleConfig struct {
	AutoDeliver bool
	Delay       time.Duration
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	d := DefaultConfig()
	home := GuessHomeDir()
	delay, _ := time.ParseDuration(d.Oracle.Delay)
	return Config{
		Node: NodeConfig{
			DataDir: filepath.Join(home, ".veilgov"),
			Name:    d.Node.Name,
		},
		API: APIConfig{
			Enabled: d.API.Enabled,
			Addr:    d.API.Addr,
			Port:    d.API.Port,
		},
		Metrics: MetricsConfig{
			Enabled: d.Metrics.Enabled,
			Addr:    d.Metrics.Addr,
			Port:    d.Metrics.Port,
		},
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
			SentryDSN: d.Logging.SentryDSN,
		},
		Gov: GovConfig{
			NetworkName:       gov.MainNetRules().Name,
			NetworkID:         gov.MainNetworkID,
			FakeNet:           false,
			FakeNetSubmitters: 3,
			CooldownSeconds:   -1,
		},
		Oracle: OracleConfig{
			AutoDeliver: d.Oracle.AutoDeliver,
			Delay:       delay,
		},
	}
}

// MakeAllConfigs merges defaults, config-file values and CLI overrides into
// a single config struct.

func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if err := ensureDir(cfg.Node.DataDir); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

func loadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(resolvePath(path))
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, cfg)
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}

	if ctx.IsSet("api") {
		cfg.API.Enabled = ctx.Bool("api")
	}
	if ctx.IsSet("api.addr") {
		cfg.API.Addr = ctx.String("api.addr")
	}
	if ctx.IsSet("api.port") {
		cfg.API.Port = ctx.Int("api.port")
	}

	if ctx.IsSet("metrics") {
		cfg.Metrics.Enabled = ctx.Bool("metrics")
	}
	if ctx.IsSet("metrics.addr") {
		cfg.Metrics.Addr = ctx.String("metrics.addr")
	}
	if ctx.IsSet("metrics.port") {
		cfg.Metrics.Port = ctx.Int("metrics.port")
	}

	if ctx.IsSet("log.format") {
		cfg.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	if ctx.Bool("testnet") {
		cfg.Gov.NetworkName = gov.TestNetRules().Name
		cfg.Gov.NetworkID = gov.TestNetworkID
	}
	if ctx.IsSet("fakenet") {
		cfg.Gov.FakeNet = true
		cfg.Gov.NetworkName = gov.FakeNetRules().Name
		cfg.Gov.NetworkID = gov.FakeNetworkID
		cfg.Gov.FakeNetSubmitters = ctx.Int("fakenet")
	}
	if ctx.IsSet("gov.cooldown") {
		cfg.Gov.CooldownSeconds = int64(ctx.Uint64("gov.cooldown"))
	}
	if ctx.IsSet("gov.stricthandles") {
		cfg.Gov.StrictHandles = ctx.Bool("gov.stricthandles")
	}

	if ctx.IsSet("oracle.autodeliver") {
		cfg.Oracle.AutoDeliver = ctx.BoolT("oracle.autodeliver")
	}
	if ctx.IsSet("oracle.delay") {
		cfg.Oracle.Delay = ctx.Duration("oracle.delay")
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
