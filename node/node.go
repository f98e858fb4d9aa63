package node

import (
	"fmt"
	"io"
	"sync"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/mempool"
	"github.com/ahwlsqja/eth-mempool/metrics"
	"github.com/ahwlsqja/eth-mempool/state"
)

// Node owns the assembled pipeline and its lifecycle.
type Node struct {
	mu sync.Mutex

	config  *Config
	logger  log.Logger
	gateway state.Gateway
	pool    *mempool.Pool
	service *TxService

	metrics       *metrics.Metrics
	metricsServer *metrics.Server

	running bool
}

// NewNode builds a node from config. With an empty StateAddr the node runs
// against a local in-memory ledger; otherwise it reads chain state over
// gRPC from config.StateAddr.
func NewNode(config *Config, logger log.Logger) (*Node, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	var gateway state.Gateway
	if config.StateAddr == "" {
		gateway = state.NewMemoryLedger(config.DevChainID, uint256.NewInt(config.DevBaseFee))
		logger.Info("using in-memory ledger", "chain_id", config.DevChainID)
	} else {
		remote, err := state.NewRemoteGateway(&state.RemoteConfig{
			Address: config.StateAddr,
			Timeout: config.StateTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create state gateway: %w", err)
		}
		gateway = remote
		logger.Info("using remote state gateway", "addr", config.StateAddr)
	}

	var m *metrics.Metrics
	if config.MetricsEnabled {
		m = metrics.NewMetrics("mempool")
	}

	var poolMetrics mempool.Metrics
	if m != nil {
		poolMetrics = m
	}
	pool := mempool.NewPool(config.Pool, logger, poolMetrics)

	var submitM submitMetrics
	if m != nil {
		submitM = m
	}
	service, err := NewTxService(config, pool, gateway, logger, submitM)
	if err != nil {
		return nil, err
	}

	n := &Node{
		config:  config,
		logger:  logger.With("module", "node"),
		gateway: gateway,
		pool:    pool,
		service: service,
		metrics: m,
	}
	if m != nil {
		n.metricsServer = metrics.NewServer(config.MetricsAddr, func() (int, int) {
			stats := pool.Stats()
			return stats.Pending, stats.Queued
		})
	}
	return n, nil
}

// Service returns the submission facade.
func (n *Node) Service() *TxService {
	return n.service
}

// Pool returns the transaction pool.
func (n *Node) Pool() *mempool.Pool {
	return n.pool
}

// Gateway returns the state gateway the node validates against.
func (n *Node) Gateway() state.Gateway {
	return n.gateway
}

// Start starts the node's servers.
func (n *Node) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return fmt.Errorf("node already running")
	}

	if n.metricsServer != nil {
		if err := n.metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		n.logger.Info("metrics server started", "addr", n.config.MetricsAddr)
	}
	n.running = true
	n.logger.Info("node started")
	return nil
}

// Stop shuts the node down, releasing the gateway connection if any.
func (n *Node) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return nil
	}
	n.running = false

	if n.metricsServer != nil {
		if err := n.metricsServer.Stop(); err != nil {
			n.logger.Error("failed to stop metrics server", "err", err)
		}
	}
	if closer, ok := n.gateway.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			n.logger.Error("failed to close state gateway", "err", err)
		}
	}
	n.logger.Info("node stopped")
	return nil
}
