package grpcserver

import (
	"context"
	"errors"
	"log"

	"rega/api/wire"
	"rega/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StoreServer is the RPC surface of the register store.
type StoreServer interface {
	Get(context.Context, *wire.GetRequest) (*wire.GetResponse, error)
	Set(context.Context, *wire.SetRequest) (*wire.SetResponse, error)
	Swap(context.Context, *wire.SwapRequest) (*wire.SwapResponse, error)
	CompareAndSwap(context.Context, *wire.CasRequest) (*wire.CasResponse, error)
	Take(context.Context, *wire.TakeRequest) (*wire.TakeResponse, error)
	Snapshot(context.Context, *wire.SnapshotRequest) (*wire.SnapshotResponse, error)
}

// Server adapts StoreService to gRPC.
type Server struct {
	svc *service.StoreService
}

func NewServer(svc *service.StoreService) *Server {
	return &Server{svc: svc}
}

// NewGRPCServer returns a grpc.Server with the wire codec forced and
// the store service registered.
func NewGRPCServer(svc *service.StoreService, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ForceServerCodec(wire.Codec{}))
	gs := grpc.NewServer(opts...)
	RegisterStoreServer(gs, NewServer(svc))
	return gs
}

// -------------------- Commands --------------------

func (s *Server) Set(
	ctx context.Context,
	req *wire.SetRequest,
) (*wire.SetResponse, error) {
	seq, err := s.svc.Set(int(req.Index), req.Value)
	if err != nil {
		return nil, toStatus(err)
	}
	return &wire.SetResponse{Seq: seq}, nil
}

func (s *Server) Swap(
	ctx context.Context,
	req *wire.SwapRequest,
) (*wire.SwapResponse, error) {
	prev, found, seq, err := s.svc.Swap(int(req.Index), req.Value)
	if err != nil {
		return nil, toStatus(err)
	}
	return &wire.SwapResponse{Found: found, Prev: prev, Seq: seq}, nil
}

func (s *Server) CompareAndSwap(
	ctx context.Context,
	req *wire.CasRequest,
) (*wire.CasResponse, error) {
	expected := req.Expected
	if req.ExpectEmpty {
		expected = nil
	} else if expected == nil {
		expected = []byte{}
	}
	swapped, seq, err := s.svc.CompareAndSwap(int(req.Index), expected, req.Value)
	if err != nil {
		return nil, toStatus(err)
	}
	return &wire.CasResponse{Swapped: swapped, Seq: seq}, nil
}

func (s *Server) Take(
	ctx context.Context,
	req *wire.TakeRequest,
) (*wire.TakeResponse, error) {
	prev, found, seq, err := s.svc.Take(int(req.Index))
	if err != nil {
		return nil, toStatus(err)
	}
	return &wire.TakeResponse{Found: found, Prev: prev, Seq: seq}, nil
}

// -------------------- Queries --------------------

func (s *Server) Get(
	ctx context.Context,
	req *wire.GetRequest,
) (*wire.GetResponse, error) {
	value, found, err := s.svc.Get(int(req.Index))
	if err != nil {
		return nil, toStatus(err)
	}
	return &wire.GetResponse{Found: found, Value: value}, nil
}

func (s *Server) Snapshot(
	ctx context.Context,
	req *wire.SnapshotRequest,
) (*wire.SnapshotResponse, error) {
	entries, err := s.svc.Entries()
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &wire.SnapshotResponse{
		Length:  uint32(s.svc.Len()),
		Entries: make([]wire.SnapshotEntry, 0, len(entries)),
	}
	for _, e := range entries {
		if req.MaxEntries > 0 && uint32(len(resp.Entries)) >= req.MaxEntries {
			break
		}
		resp.Entries = append(resp.Entries, wire.SnapshotEntry{
			Index: e.Index,
			Value: e.Value,
		})
	}
	log.Printf("[gRPC] Snapshot registers=%d occupied=%d", resp.Length, len(resp.Entries))
	return resp, nil
}

func toStatus(err error) error {
	if errors.Is(err, service.ErrIndexOutOfRange) {
		return status.Error(codes.OutOfRange, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
