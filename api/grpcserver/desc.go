package grpcserver

import (
	"context"

	"rega/api/wire"

	"google.golang.org/grpc"
)

// The service descriptor is assembled by hand: the wire messages are
// plain structs moved by the registered codec, so there is no generated
// registration code.

const ServiceName = "rega.v1.Store"

func RegisterStoreServer(s grpc.ServiceRegistrar, srv StoreServer) {
	s.RegisterService(&storeServiceDesc, srv)
}

var storeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Get", Handler: getHandler},
		{MethodName: "Set", Handler: setHandler},
		{MethodName: "Swap", Handler: swapHandler},
		{MethodName: "CompareAndSwap", Handler: casHandler},
		{MethodName: "Take", Handler: takeHandler},
		{MethodName: "Snapshot", Handler: snapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rega/api/wire",
}

func unary[Req any, Resp any](
	method string,
	call func(StoreServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	full := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StoreServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	getHandler = unary("Get", func(s StoreServer, ctx context.Context, in *wire.GetRequest) (*wire.GetResponse, error) {
		return s.Get(ctx, in)
	})
	setHandler = unary("Set", func(s StoreServer, ctx context.Context, in *wire.SetRequest) (*wire.SetResponse, error) {
		return s.Set(ctx, in)
	})
	swapHandler = unary("Swap", func(s StoreServer, ctx context.Context, in *wire.SwapRequest) (*wire.SwapResponse, error) {
		return s.Swap(ctx, in)
	})
	casHandler = unary("CompareAndSwap", func(s StoreServer, ctx context.Context, in *wire.CasRequest) (*wire.CasResponse, error) {
		return s.CompareAndSwap(ctx, in)
	})
	takeHandler = unary("Take", func(s StoreServer, ctx context.Context, in *wire.TakeRequest) (*wire.TakeResponse, error) {
		return s.Take(ctx, in)
	})
	snapshotHandler = unary("Snapshot", func(s StoreServer, ctx context.Context, in *wire.SnapshotRequest) (*wire.SnapshotResponse, error) {
		return s.Snapshot(ctx, in)
	})
)
