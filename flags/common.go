package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags shared across commands.

func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "datadir",
			Usage: "Data directory for the veilgov governance node",
			Value: "~/.veilgov",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "JSON configuration file (flags override file values)",
		},
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=panic,1=fatal,2=error,3=warn,4=info,5=debug,6=trace)",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "log.color",
			Usage: "Enable colored log output",
		},
		cli.StringFlag{
			Name:  "sentry.dsn",
			Usage: "Sentry DSN for error reporting (disabled when empty)",
		},
		cli.BoolFlag{
			Name:  "api",
			Usage: "Enable the governance HTTP API server",
		},
		cli.StringFlag{
			Name:  "api.addr",
			Usage: "API server listening interface",
			Value: "127.0.0.1",
		},
		cli.IntFlag{
			Name:  "api.port",
			Usage: "API server listening port",
			Value: 18560,
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "Enable collection of Prometheus-compatible metrics",
		},
		cli.StringFlag{
			Name:  "metrics.addr",
			Usage: "Metrics server listening interface",
			Value: "127.0.0.1",
		},
		cli.IntFlag{
			Name:  "metrics.port",
			Usage: "Metrics server listening port",
			Value: 6060,
		},
	}
}
