// Package state defines the account-state gateway consumed by transaction
// validation, together with its concrete implementations: an in-memory
// ledger for tests and single-node development, and a gRPC client backed by
// a remote ledger service.
package state

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/types"
)

// ErrUnavailable reports a transient gateway failure. It is distinct from
// every validation violation: callers may retry the submission, and a
// transaction is never permanently excluded because of it.
var ErrUnavailable = errors.New("state: account state unavailable")

// Reader is the account-state capability consumed by the state validator.
// Any concrete ledger (in-memory, on-disk, remote) can implement it without
// touching the pool. Calls may suspend on I/O and must honor ctx.
type Reader interface {
	Balance(ctx context.Context, addr types.Address) (*uint256.Int, error)
	Nonce(ctx context.Context, addr types.Address) (uint64, error)
	IsContract(ctx context.Context, addr types.Address) (bool, error)
}

// ChainReader exposes the chain-head facts admission depends on.
type ChainReader interface {
	ChainID(ctx context.Context) (uint64, error)
	BaseFee(ctx context.Context) (*uint256.Int, error)
}

// Gateway bundles the two read capabilities the submission path needs.
type Gateway interface {
	Reader
	ChainReader
}
