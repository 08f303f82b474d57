package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Hand-written descriptor for a single unary method carried over
// google.protobuf.Struct, so no generated stubs are needed.
const (
	ServiceName   = "dfd.v1.CorrectionService"
	CorrectMethod = "/" + ServiceName + "/Correct"
)

// CorrectionServiceServer is the server API for dfd.v1.CorrectionService.
type CorrectionServiceServer interface {
	Correct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var correctionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CorrectionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Correct",
			Handler:    correctHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dfd/v1/correction.proto",
}

func RegisterCorrectionServiceServer(s grpc.ServiceRegistrar, srv CorrectionServiceServer) {
	s.RegisterService(&correctionServiceDesc, srv)
}

func correctHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CorrectionServiceServer).Correct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CorrectMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CorrectionServiceServer).Correct(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls dfd.v1.CorrectionService over an established connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Correct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CorrectMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
