package sink

import (
	"context"
	"fmt"
	"time"

	"flight-loadgen/internal/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const (
	eventServiceName = "events.EventService"
	sendEventMethod  = "/" + eventServiceName + "/SendEvent"
)

// GRPCSink calls events.EventService/SendEvent
type GRPCSink struct {
	conn *grpc.ClientConn
}

// NewGRPCSink dials addr without TLS. Extra options are applied after the
// defaults.
func NewGRPCSink(addr string, opts ...grpc.DialOption) (*GRPCSink, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(eventCodec{})),
	}, opts...)

	conn, err := grpc.Dial(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &GRPCSink{conn: conn}, nil
}

// Send issues one unary call
func (s *GRPCSink) Send(ctx context.Context, event models.OrderEvent) (models.Ack, error) {
	req := &wireEvent{Event: event, SentAt: time.Now()}
	var ack models.Ack
	if err := s.conn.Invoke(ctx, sendEventMethod, req, &ack); err != nil {
		return models.Ack{}, &RemoteCallError{
			Sink:       "grpc",
			StatusCode: int(status.Code(err)),
			Err:        err,
		}
	}
	return ack, nil
}

// Close closes the connection
func (s *GRPCSink) Close() error {
	return s.conn.Close()
}

// EventServer is implemented by receivers of SendEvent calls
type EventServer interface {
	SendEvent(ctx context.Context, event models.OrderEvent) (models.Ack, error)
}

var eventServiceDesc = grpc.ServiceDesc{
	ServiceName: eventServiceName,
	HandlerType: (*EventServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendEvent",
			Handler:    sendEventHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "event.proto",
}

func sendEventHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wireEvent)
	if err := dec(in); err != nil {
		return nil, err
	}

	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		ack, err := srv.(EventServer).SendEvent(ctx, req.(*wireEvent).Event)
		if err != nil {
			return nil, err
		}
		return &ack, nil
	}
	if interceptor == nil {
		return call(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: sendEventMethod,
	}
	return interceptor(ctx, in, info, call)
}

// NewGRPCServer creates a server speaking the event codec
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	return grpc.NewServer(append([]grpc.ServerOption{grpc.ForceServerCodec(eventCodec{})}, opts...)...)
}

// RegisterEventService registers srv on s
func RegisterEventService(s *grpc.Server, srv EventServer) {
	s.RegisterService(&eventServiceDesc, srv)
}
