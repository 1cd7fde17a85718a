package grpc

import (
	"context"

	"dopamine-deck/internal/mapper"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// DeckClient calls DeckService over any client connection.
type DeckClient struct {
	cc grpc.ClientConnInterface
}

func NewDeckClient(cc grpc.ClientConnInterface) *DeckClient {
	return &DeckClient{cc: cc}
}

func (c *DeckClient) StartSession(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StartSession", map[string]any{}, opts...)
}

func (c *DeckClient) EndSession(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "EndSession", map[string]any{mapper.FieldSessionID: sessionID}, opts...)
}

func (c *DeckClient) GetState(ctx context.Context, sessionID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetState", map[string]any{mapper.FieldSessionID: sessionID}, opts...)
}

func (c *DeckClient) DragStart(ctx context.Context, sessionID, taskID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DragStart", cardRequest(sessionID, taskID), opts...)
}

func (c *DeckClient) DragMove(ctx context.Context, sessionID, taskID string, deltaX float64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req := cardRequest(sessionID, taskID)
	req[mapper.FieldDeltaX] = deltaX
	return c.invoke(ctx, "DragMove", req, opts...)
}

func (c *DeckClient) DragEnd(ctx context.Context, sessionID, taskID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "DragEnd", cardRequest(sessionID, taskID), opts...)
}

func (c *DeckClient) StartFocus(ctx context.Context, sessionID, taskID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "StartFocus", cardRequest(sessionID, taskID), opts...)
}

func (c *DeckClient) PauseFocus(ctx context.Context, sessionID, taskID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "PauseFocus", cardRequest(sessionID, taskID), opts...)
}

// Watch streams the session's notifications until the session ends or ctx
// is cancelled.
func (c *DeckClient) Watch(ctx context.Context, sessionID string, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	req, err := mapper.Request(map[string]any{mapper.FieldSessionID: sessionID})
	if err != nil {
		return nil, err
	}
	stream, err := c.cc.NewStream(ctx, &deckServiceDesc.Streams[0], FullMethod("Watch"), opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *DeckClient) invoke(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := mapper.Request(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func cardRequest(sessionID, taskID string) map[string]any {
	return map[string]any{
		mapper.FieldSessionID: sessionID,
		mapper.FieldTaskID:    taskID,
	}
}
