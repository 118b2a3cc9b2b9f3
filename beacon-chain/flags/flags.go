// Package flags defines the beacon node's command line options.
package flags

import (
	"github.com/urfave/cli/v2"
)

var (
	// VerbosityFlag sets the logging level.
	VerbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (trace, debug, info, warn, error)",
		Value: "info",
	}
	// MinimalConfigFlag switches the chain configuration to the minimal
	// test preset.
	MinimalConfigFlag = &cli.BoolFlag{
		Name:  "minimal-config",
		Usage: "Use minimal config with a reduced committee size and epoch length",
	}
	// MonitoringHostFlag defines the host the metrics endpoint binds to.
	MonitoringHostFlag = &cli.StringFlag{
		Name:  "monitoring-host",
		Usage: "Host used for listening and responding metrics requests",
		Value: "127.0.0.1",
	}
	// MonitoringPortFlag defines the port the metrics endpoint binds to.
	MonitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port used for listening and responding metrics requests",
		Value: 8080,
	}
	// InteropGenesisTimeFlag sets the genesis time of the deterministic
	// interop state the node boots from.
	InteropGenesisTimeFlag = &cli.Uint64Flag{
		Name:  "interop-genesis-time",
		Usage: "Unix timestamp used for the interop genesis state",
	}
	// InteropNumValidatorsFlag sets the validator count of the interop
	// genesis state.
	InteropNumValidatorsFlag = &cli.Uint64Flag{
		Name:  "interop-num-validators",
		Usage: "Number of validators deterministically generated at genesis",
		Value: 64,
	}
	// InteropNumBuildersFlag sets the builder count of the interop genesis
	// state.
	InteropNumBuildersFlag = &cli.Uint64Flag{
		Name:  "interop-num-builders",
		Usage: "Number of builders deterministically generated at genesis",
		Value: 4,
	}
)
