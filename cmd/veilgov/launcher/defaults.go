package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before the config file and CLI flags override them.

type Defaults struct {
	Node    NodeDefaults
	API     APIDefaults
	Metrics MetricsDefaults
	Logging LoggingDefaults
	Oracle  OracleDefaults
}

// NodeDefaults captures top-level node settings.
type NodeDefaults struct {
	DataDir string // filesystem root for the node's files; change it to run several isolated instances
	Name    string // human-readable instance name surfaced in logs
}

// APIDefaults configures the governance HTTP API.
type APIDefaults struct {
	Enabled bool
	Addr    string // listening interface, 127.0.0.1 keeps the API local-only
	Port    int
}

// MetricsDefaults configures the Prometheus endpoint.
type MetricsDefaults struct {
	Enabled bool
	Addr    string
	Port    int
}

// LoggingDefaults controls log verbosity and format.
type LoggingDefaults struct {
	Verbosity int    // logrus level numeric (0=panic .. 6=trace)
	Format    string // text or json
	Color     bool
	SentryDSN string // error reporting, disabled when empty
}

// OracleDefaults tunes the in-process oracle of fake deployments.
type OracleDefaults struct {
	AutoDeliver bool   // answer decryption requests automatically on fakenet
	Delay       string // duration string; artificial latency before a delivery
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.veilgov",
			Name:    "veilgov",
		},
		API: APIDefaults{
			Enabled: true,
			Addr:    "127.0.0.1",
			Port:    18560,
		},
		Metrics: MetricsDefaults{
			Enabled: false,
			Addr:    "127.0.0.1",
			Port:    6060,
		},
		Logging: LoggingDefaults{
			Verbosity: 4,
			Format:    "text",
			Color:     true,
		},
		Oracle: OracleDefaults{
			AutoDeliver: true,
			Delay:       "0s",
		},
	}
}
