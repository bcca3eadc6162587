// Package datastore exposes the datastore collections over gRPC.
//
// The service has no generated stubs: requests and responses are
// google.protobuf.Struct values and the service descriptor is declared here.
package datastore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "cardclash.datastore.v1.DatastoreService"

// Full method names.
const (
	MethodSelect = "/" + ServiceName + "/Select"
	MethodInsert = "/" + ServiceName + "/Insert"
	MethodDelete = "/" + ServiceName + "/Delete"
	MethodCall   = "/" + ServiceName + "/Call"
)

// DatastoreServer is the server API for the datastore service.
type DatastoreServer interface {
	Select(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Insert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Call(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDatastoreServer registers srv on s.
func RegisterDatastoreServer(s grpc.ServiceRegistrar, srv DatastoreServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the datastore service for grpc.ServiceRegistrar.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DatastoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Select", Handler: unaryHandler(MethodSelect, DatastoreServer.Select)},
		{MethodName: "Insert", Handler: unaryHandler(MethodInsert, DatastoreServer.Insert)},
		{MethodName: "Delete", Handler: unaryHandler(MethodDelete, DatastoreServer.Delete)},
		{MethodName: "Call", Handler: unaryHandler(MethodCall, DatastoreServer.Call)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cardclash/datastore/v1/datastore.proto",
}

type unaryMethod func(DatastoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, method unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(DatastoreServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(DatastoreServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
