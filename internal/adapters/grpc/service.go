package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name
const ServiceName = "sensordata.v1.ReadingService"

const (
	ingestLinesMethod = "/" + ServiceName + "/IngestLines"
	queryRangeMethod  = "/" + ServiceName + "/QueryRange"
)

// ReadingServiceServer is the server API for ReadingService.
//
// The messages are protobuf well-known types, so no generated code is needed:
// IngestLines takes the raw text batch and answers whether it was stored;
// QueryRange takes {"from", "to"} and answers a list of {time, name, value}.
type ReadingServiceServer interface {
	IngestLines(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	QueryRange(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

// RegisterReadingServiceServer registers srv on s
func RegisterReadingServiceServer(s grpc.ServiceRegistrar, srv ReadingServiceServer) {
	s.RegisterService(&readingServiceDesc, srv)
}

var readingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReadingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "IngestLines", Handler: ingestLinesHandler},
		{MethodName: "QueryRange", Handler: queryRangeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sensordata/v1/reading_service.proto",
}

func ingestLinesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReadingServiceServer).IngestLines(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ingestLinesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReadingServiceServer).IngestLines(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func queryRangeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReadingServiceServer).QueryRange(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: queryRangeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReadingServiceServer).QueryRange(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ReadingServiceClient calls ReadingService over a client connection
type ReadingServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReadingServiceClient creates a client on cc
func NewReadingServiceClient(cc grpc.ClientConnInterface) *ReadingServiceClient {
	return &ReadingServiceClient{cc: cc}
}

// IngestLines sends one text batch
func (c *ReadingServiceClient) IngestLines(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, ingestLinesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryRange reads the curated timeline for {"from", "to"}
func (c *ReadingServiceClient) QueryRange(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, queryRangeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
