package grpcserver

import (
	"context"

	"rega/api/wire"

	"google.golang.org/grpc"
)

// StoreClient is a typed client over the hand-assembled service. All
// calls force the wire codec so the server's ForceServerCodec matches.
type StoreClient struct {
	cc grpc.ClientConnInterface
}

func NewStoreClient(cc grpc.ClientConnInterface) *StoreClient {
	return &StoreClient{cc: cc}
}

func invoke[Req any, Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in *Req,
	opts ...grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)
	opts = append(opts, grpc.ForceCodec(wire.Codec{}))
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) Get(ctx context.Context, in *wire.GetRequest, opts ...grpc.CallOption) (*wire.GetResponse, error) {
	return invoke[wire.GetRequest, wire.GetResponse](ctx, c.cc, "Get", in, opts...)
}

func (c *StoreClient) Set(ctx context.Context, in *wire.SetRequest, opts ...grpc.CallOption) (*wire.SetResponse, error) {
	return invoke[wire.SetRequest, wire.SetResponse](ctx, c.cc, "Set", in, opts...)
}

func (c *StoreClient) Swap(ctx context.Context, in *wire.SwapRequest, opts ...grpc.CallOption) (*wire.SwapResponse, error) {
	return invoke[wire.SwapRequest, wire.SwapResponse](ctx, c.cc, "Swap", in, opts...)
}

func (c *StoreClient) CompareAndSwap(ctx context.Context, in *wire.CasRequest, opts ...grpc.CallOption) (*wire.CasResponse, error) {
	return invoke[wire.CasRequest, wire.CasResponse](ctx, c.cc, "CompareAndSwap", in, opts...)
}

func (c *StoreClient) Take(ctx context.Context, in *wire.TakeRequest, opts ...grpc.CallOption) (*wire.TakeResponse, error) {
	return invoke[wire.TakeRequest, wire.TakeResponse](ctx, c.cc, "Take", in, opts...)
}

func (c *StoreClient) Snapshot(ctx context.Context, in *wire.SnapshotRequest, opts ...grpc.CallOption) (*wire.SnapshotResponse, error) {
	return invoke[wire.SnapshotRequest, wire.SnapshotResponse](ctx, c.cc, "Snapshot", in, opts...)
}
