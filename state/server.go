package state

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"

	statev1 "github.com/ahwlsqja/eth-mempool/api/state/v1"
	"github.com/ahwlsqja/eth-mempool/types"
)

// Server exposes any Gateway as a StateService over gRPC, so a node can
// serve its ledger to remote mempool instances.
type Server struct {
	mu sync.Mutex

	gateway  Gateway
	address  string
	server   *grpc.Server
	listener net.Listener
	running  bool
}

// NewServer creates a server for gateway listening on address.
func NewServer(gateway Gateway, address string) *Server {
	return &Server{
		gateway: gateway,
		address: address,
	}
}

// Start begins serving. It returns once the listener is bound.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.listener = listener
	s.server = grpc.NewServer()
	statev1.RegisterStateServiceServer(s.server, &serviceHandler{gateway: s.gateway})
	s.running = true

	go func() {
		_ = s.server.Serve(listener)
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.server.GracefulStop()
}

// Addr returns the bound listener address, useful when started on port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.address
	}
	return s.listener.Addr().String()
}

// serviceHandler adapts a Gateway to the StateService wire surface.
type serviceHandler struct {
	statev1.UnimplementedStateServiceServer

	gateway Gateway
}

func (h *serviceHandler) GetAccount(ctx context.Context, req *statev1.GetAccountRequest) (*statev1.GetAccountResponse, error) {
	addr := types.BytesToAddress(req.Address)
	balance, err := h.gateway.Balance(ctx, addr)
	if err != nil {
		return nil, err
	}
	nonce, err := h.gateway.Nonce(ctx, addr)
	if err != nil {
		return nil, err
	}
	isContract, err := h.gateway.IsContract(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &statev1.GetAccountResponse{
		Balance:    balance.Bytes(),
		Nonce:      nonce,
		IsContract: isContract,
	}, nil
}

func (h *serviceHandler) GetChainInfo(ctx context.Context, _ *statev1.GetChainInfoRequest) (*statev1.GetChainInfoResponse, error) {
	chainID, err := h.gateway.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	baseFee, err := h.gateway.BaseFee(ctx)
	if err != nil {
		return nil, err
	}
	return &statev1.GetChainInfoResponse{
		ChainId: chainID,
		BaseFee: baseFee.Bytes(),
	}, nil
}
