package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "dopaminedeck.v1.DeckService"

// DeckServiceServer is the server side of DeckService. Every message is a
// google.protobuf.Struct.
type DeckServiceServer interface {
	StartSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	EndSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DragStart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DragMove(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DragEnd(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StartFocus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	PauseFocus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Watch(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

type unaryMethod func(srv DeckServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

var deckServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeckServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartSession", DeckServiceServer.StartSession),
		unary("EndSession", DeckServiceServer.EndSession),
		unary("GetState", DeckServiceServer.GetState),
		unary("DragStart", DeckServiceServer.DragStart),
		unary("DragMove", DeckServiceServer.DragMove),
		unary("DragEnd", DeckServiceServer.DragEnd),
		unary("StartFocus", DeckServiceServer.StartFocus),
		unary("PauseFocus", DeckServiceServer.PauseFocus),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "dopaminedeck/v1/deck",
}

func RegisterDeckServiceServer(s grpc.ServiceRegistrar, srv DeckServiceServer) {
	s.RegisterService(&deckServiceDesc, srv)
}

// FullMethod returns the wire name of a DeckService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DeckServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DeckServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DeckServiceServer).Watch(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}
