package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// GovernanceFlags selects the network preset and per-instance protocol knobs.

func GovernanceFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "fakenet",
			Usage: "Run a deterministic fake network with N pre-authorized submitters",
		},
		cli.BoolFlag{
			Name:  "testnet",
			Usage: "Use the test network rules preset",
		},
		cli.Uint64Flag{
			Name:  "gov.cooldown",
			Usage: "Override the rate-limit window between privileged actions (seconds)",
		},
		cli.BoolFlag{
			Name:  "gov.stricthandles",
			Usage: "Reject proposals carrying uninitialized ciphertext handles",
		},
	}
}

// OracleFlags tunes the in-process decryption oracle of dev networks.

func OracleFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolTFlag{
			Name:  "oracle.autodeliver",
			Usage: "Deliver oracle decryptions automatically on fakenet",
		},
		cli.DurationFlag{
			Name:  "oracle.delay",
			Usage: "Artificial latency before an automatic oracle delivery",
		},
	}
}
