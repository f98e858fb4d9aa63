// Package statev1 defines the wire types and service surface of the remote
// account-state gateway. The messages are plain Go structs carried by the
// JSON codec registered in this package, so no generated code is required.
package statev1

// GetAccountRequest asks for the current state of one account.
type GetAccountRequest struct {
	Address []byte `json:"address"` // 20-byte account address
}

// GetAccountResponse carries the three facts admission needs about an
// account. Balance is a minimal big-endian integer.
type GetAccountResponse struct {
	Balance    []byte `json:"balance"`
	Nonce      uint64 `json:"nonce"`
	IsContract bool   `json:"is_contract"`
}

// GetChainInfoRequest asks for the chain-head facts.
type GetChainInfoRequest struct{}

// GetChainInfoResponse carries the configured chain id and the current
// base fee per gas as a minimal big-endian integer.
type GetChainInfoResponse struct {
	ChainId uint64 `json:"chain_id"`
	BaseFee []byte `json:"base_fee"`
}
