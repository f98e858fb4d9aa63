package state

import (
	"context"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	statev1 "github.com/ahwlsqja/eth-mempool/api/state/v1"
	"github.com/ahwlsqja/eth-mempool/types"
)

// RemoteGateway reads account and chain state from a ledger service over
// gRPC. Every transport or service failure surfaces as ErrUnavailable so
// the submission path treats it as retryable rather than as a rejection.
type RemoteGateway struct {
	conn    *grpc.ClientConn
	client  statev1.StateServiceClient
	address string
	timeout time.Duration
}

// RemoteConfig configures the gateway connection.
type RemoteConfig struct {
	Address string
	Timeout time.Duration
}

// DefaultRemoteConfig returns the default connection settings.
func DefaultRemoteConfig(address string) *RemoteConfig {
	return &RemoteConfig{
		Address: address,
		Timeout: 5 * time.Second,
	}
}

// NewRemoteGateway connects to the ledger service at config.Address.
func NewRemoteGateway(config *RemoteConfig) (*RemoteGateway, error) {
	conn, err := grpc.NewClient(
		config.Address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to state service at %s: %w", config.Address, err)
	}
	return &RemoteGateway{
		conn:    conn,
		client:  statev1.NewStateServiceClient(conn),
		address: config.Address,
		timeout: config.Timeout,
	}, nil
}

// Close releases the underlying connection.
func (g *RemoteGateway) Close() error {
	if g.conn != nil {
		return g.conn.Close()
	}
	return nil
}

// Balance implements Reader.
func (g *RemoteGateway) Balance(ctx context.Context, addr types.Address) (*uint256.Int, error) {
	acc, err := g.getAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(acc.Balance), nil
}

// Nonce implements Reader.
func (g *RemoteGateway) Nonce(ctx context.Context, addr types.Address) (uint64, error) {
	acc, err := g.getAccount(ctx, addr)
	if err != nil {
		return 0, err
	}
	return acc.Nonce, nil
}

// IsContract implements Reader.
func (g *RemoteGateway) IsContract(ctx context.Context, addr types.Address) (bool, error) {
	acc, err := g.getAccount(ctx, addr)
	if err != nil {
		return false, err
	}
	return acc.IsContract, nil
}

// ChainID implements ChainReader.
func (g *RemoteGateway) ChainID(ctx context.Context) (uint64, error) {
	info, err := g.getChainInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.ChainId, nil
}

// BaseFee implements ChainReader.
func (g *RemoteGateway) BaseFee(ctx context.Context) (*uint256.Int, error) {
	info, err := g.getChainInfo(ctx)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(info.BaseFee), nil
}

func (g *RemoteGateway) getAccount(ctx context.Context, addr types.Address) (*statev1.GetAccountResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.GetAccount(ctx, &statev1.GetAccountRequest{Address: addr.Bytes()})
	if err != nil {
		return nil, fmt.Errorf("%w: get account %s: %v", ErrUnavailable, addr, err)
	}
	return resp, nil
}

func (g *RemoteGateway) getChainInfo(ctx context.Context) (*statev1.GetChainInfoResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.GetChainInfo(ctx, &statev1.GetChainInfoRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: get chain info: %v", ErrUnavailable, err)
	}
	return resp, nil
}

var _ Gateway = (*RemoteGateway)(nil)
