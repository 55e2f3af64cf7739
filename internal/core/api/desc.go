package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

/*
 * NamingPolicy service descriptor.
 *
 * Requests and responses are google.protobuf.Struct documents, so the
 * service needs no generated code: the descriptor and client below are what
 * protoc-gen-go-grpc would emit for
 *
 *   service NamingPolicy {
 *     rpc CheckNames(google.protobuf.Struct) returns (google.protobuf.Struct);
 *     rpc CheckSource(google.protobuf.Struct) returns (google.protobuf.Struct);
 *   }
 */

const (
	ServiceName       = "namekeeper.v1.NamingPolicy"
	CheckNamesMethod  = "/" + ServiceName + "/CheckNames"
	CheckSourceMethod = "/" + ServiceName + "/CheckSource"
)

// NamingPolicyServer is the server API for the NamingPolicy service.
type NamingPolicyServer interface {
	CheckNames(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckSource(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterNamingPolicyServer registers srv on s.
func RegisterNamingPolicyServer(s grpc.ServiceRegistrar, srv NamingPolicyServer) {
	s.RegisterService(&NamingPolicyServiceDesc, srv)
}

// NamingPolicyServiceDesc is the grpc.ServiceDesc for the NamingPolicy service.
var NamingPolicyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NamingPolicyServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckNames", Handler: checkNamesHandler},
		{MethodName: "CheckSource", Handler: checkSourceHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "namekeeper/v1/policy.proto",
}

func checkNamesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NamingPolicyServer).CheckNames(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CheckNamesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NamingPolicyServer).CheckNames(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func checkSourceHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NamingPolicyServer).CheckSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CheckSourceMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(NamingPolicyServer).CheckSource(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// NamingPolicyClient is the client API for the NamingPolicy service.
type NamingPolicyClient struct {
	cc grpc.ClientConnInterface
}

// NewNamingPolicyClient wraps a client connection.
func NewNamingPolicyClient(cc grpc.ClientConnInterface) *NamingPolicyClient {
	return &NamingPolicyClient{cc: cc}
}

// CheckNames validates synthetic occurrences on the server.
func (c *NamingPolicyClient) CheckNames(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CheckNamesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckSource classifies and validates source text on the server.
func (c *NamingPolicyClient) CheckSource(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CheckSourceMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
