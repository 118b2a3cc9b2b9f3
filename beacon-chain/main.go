package main

import (
	"os"
	goruntime "runtime"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gloaslabs/gloas/beacon-chain/flags"
	"github.com/gloaslabs/gloas/beacon-chain/node"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	flags.VerbosityFlag,
	flags.MinimalConfigFlag,
	flags.MonitoringHostFlag,
	flags.MonitoringPortFlag,
	flags.InteropGenesisTimeFlag,
	flags.InteropNumValidatorsFlag,
	flags.InteropNumBuildersFlag,
}

func startNode(ctx *cli.Context) error {
	beacon, err := node.New(ctx)
	if err != nil {
		return err
	}
	beacon.Start()
	return nil
}

func main() {
	app := &cli.App{
		Name:   "beacon-chain",
		Usage:  "beacon chain node with enshrined proposer-builder separation",
		Action: startNode,
		Flags:  appFlags,
		Before: func(ctx *cli.Context) error {
			goruntime.GOMAXPROCS(goruntime.NumCPU())
			level, err := logrus.ParseLevel(ctx.String(flags.VerbosityFlag.Name))
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
