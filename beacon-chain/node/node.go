// Package node assembles the beacon node: chain service, gossip validation,
// the validator duty surface and the metrics endpoint, wired together from
// command line options.
package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gloaslabs/gloas/beacon-chain/blockchain"
	"github.com/gloaslabs/gloas/beacon-chain/flags"
	validatorrpc "github.com/gloaslabs/gloas/beacon-chain/rpc/validator"
	gossip "github.com/gloaslabs/gloas/beacon-chain/sync"
	"github.com/gloaslabs/gloas/config/params"
	"github.com/gloaslabs/gloas/monitoring/prometheus"
	"github.com/gloaslabs/gloas/runtime"
	"github.com/gloaslabs/gloas/runtime/interop"
)

var log = logrus.WithField("prefix", "node")

// BeaconNode holds the full set of services the process runs.
type BeaconNode struct {
	ctx      context.Context
	cancel   context.CancelFunc
	services *runtime.ServiceRegistry
	chain    *blockchain.Service
	gossip   *gossip.Service
	rpc      *validatorrpc.Server
	stop     chan struct{}
}

// New creates a beacon node from cli context.
func New(cliCtx *cli.Context) (*BeaconNode, error) {
	if cliCtx.Bool(flags.MinimalConfigFlag.Name) {
		params.OverrideBeaconConfig(params.MinimalSpecConfig())
	}
	logrus.AddHook(prometheus.NewLogrusCollector())

	ctx, cancel := context.WithCancel(cliCtx.Context)
	node := &BeaconNode{
		ctx:      ctx,
		cancel:   cancel,
		services: runtime.NewServiceRegistry(),
		stop:     make(chan struct{}),
	}

	genesisTime := cliCtx.Uint64(flags.InteropGenesisTimeFlag.Name)
	numValidators := cliCtx.Uint64(flags.InteropNumValidatorsFlag.Name)
	numBuilders := cliCtx.Uint64(flags.InteropNumBuildersFlag.Name)
	st, _, err := interop.GenerateGenesisState(genesisTime, numValidators, numBuilders)
	if err != nil {
		cancel()
		return nil, err
	}
	genesisRoot, err := st.HashTreeRoot()
	if err != nil {
		cancel()
		return nil, err
	}

	chain, err := blockchain.New(ctx, blockchain.WithGenesisState(st, genesisRoot))
	if err != nil {
		cancel()
		return nil, err
	}
	node.chain = chain
	node.gossip = gossip.NewService(chain)
	node.rpc = &validatorrpc.Server{Chain: chain, Gossip: node.gossip}

	monitoringAddr := fmt.Sprintf("%s:%d",
		cliCtx.String(flags.MonitoringHostFlag.Name),
		cliCtx.Int(flags.MonitoringPortFlag.Name))
	promService := prometheus.NewService(monitoringAddr, node.services)
	if err := node.services.RegisterService(promService); err != nil {
		cancel()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"config":        params.BeaconConfig().ConfigName,
		"numValidators": numValidators,
		"numBuilders":   numBuilders,
		"genesisRoot":   fmt.Sprintf("%#x", genesisRoot[:8]),
	}).Info("Initialized beacon node")
	return node, nil
}

// Start launches every service and blocks until a shutdown signal or an
// explicit Close.
func (b *BeaconNode) Start() {
	b.services.StartAll()

	stop := b.stop
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigc:
			log.Info("Got interrupt, shutting down...")
			go b.Close()
		case <-b.ctx.Done():
		}
	}()

	<-stop
}

// Close stops the node's services and releases resources.
func (b *BeaconNode) Close() {
	log.Info("Stopping beacon node")
	b.services.StopAll()
	b.chain.Stop()
	b.cancel()
	close(b.stop)
}
