package matchmaking

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stecc88/roommatch/internal/codec"
	"github.com/stecc88/roommatch/internal/notify"
)

// gRPC plumbing for roommatch.v1.MatchmakingService, laid out like
// protoc-gen-go-grpc output. Messages travel with the json codec.

const (
	MatchmakingService_SubmitLike_FullMethodName         = "/roommatch.v1.MatchmakingService/SubmitLike"
	MatchmakingService_Discover_FullMethodName           = "/roommatch.v1.MatchmakingService/Discover"
	MatchmakingService_ListMatches_FullMethodName        = "/roommatch.v1.MatchmakingService/ListMatches"
	MatchmakingService_ListIncomingLikes_FullMethodName  = "/roommatch.v1.MatchmakingService/ListIncomingLikes"
	MatchmakingService_ListOutgoingLikes_FullMethodName  = "/roommatch.v1.MatchmakingService/ListOutgoingLikes"
	MatchmakingService_CountIncomingLikes_FullMethodName = "/roommatch.v1.MatchmakingService/CountIncomingLikes"
	MatchmakingService_SubscribeEvents_FullMethodName    = "/roommatch.v1.MatchmakingService/SubscribeEvents"
)

type MatchmakingServiceServer interface {
	SubmitLike(context.Context, *SubmitLikeRequest) (*SubmitLikeResponse, error)
	Discover(context.Context, *DiscoverRequest) (*DiscoverResponse, error)
	ListMatches(context.Context, *ListRequest) (*ListMatchesResponse, error)
	ListIncomingLikes(context.Context, *ListRequest) (*ListLikesResponse, error)
	ListOutgoingLikes(context.Context, *ListRequest) (*ListLikesResponse, error)
	CountIncomingLikes(context.Context, *CountIncomingLikesRequest) (*CountIncomingLikesResponse, error)
	SubscribeEvents(*SubscribeEventsRequest, grpc.ServerStreamingServer[notify.Event]) error
}

// UnimplementedMatchmakingServiceServer must be embedded by value.
type UnimplementedMatchmakingServiceServer struct{}

func (UnimplementedMatchmakingServiceServer) SubmitLike(context.Context, *SubmitLikeRequest) (*SubmitLikeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitLike not implemented")
}
func (UnimplementedMatchmakingServiceServer) Discover(context.Context, *DiscoverRequest) (*DiscoverResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Discover not implemented")
}
func (UnimplementedMatchmakingServiceServer) ListMatches(context.Context, *ListRequest) (*ListMatchesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMatches not implemented")
}
func (UnimplementedMatchmakingServiceServer) ListIncomingLikes(context.Context, *ListRequest) (*ListLikesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListIncomingLikes not implemented")
}
func (UnimplementedMatchmakingServiceServer) ListOutgoingLikes(context.Context, *ListRequest) (*ListLikesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOutgoingLikes not implemented")
}
func (UnimplementedMatchmakingServiceServer) CountIncomingLikes(context.Context, *CountIncomingLikesRequest) (*CountIncomingLikesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CountIncomingLikes not implemented")
}
func (UnimplementedMatchmakingServiceServer) SubscribeEvents(*SubscribeEventsRequest, grpc.ServerStreamingServer[notify.Event]) error {
	return status.Error(codes.Unimplemented, "method SubscribeEvents not implemented")
}

func RegisterMatchmakingServiceServer(s grpc.ServiceRegistrar, srv MatchmakingServiceServer) {
	s.RegisterService(&MatchmakingService_ServiceDesc, srv)
}

// unaryHandler builds a grpc.MethodDesc handler for one unary method.
func unaryHandler[Req any, Res any](
	fullMethod string,
	call func(MatchmakingServiceServer, context.Context, *Req) (*Res, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MatchmakingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MatchmakingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _MatchmakingService_SubscribeEvents_Handler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeEventsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(MatchmakingServiceServer).SubscribeEvents(m, &grpc.GenericServerStream[SubscribeEventsRequest, notify.Event]{ServerStream: stream})
}

var MatchmakingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "roommatch.v1.MatchmakingService",
	HandlerType: (*MatchmakingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SubmitLike",
			Handler:    unaryHandler(MatchmakingService_SubmitLike_FullMethodName, MatchmakingServiceServer.SubmitLike),
		},
		{
			MethodName: "Discover",
			Handler:    unaryHandler(MatchmakingService_Discover_FullMethodName, MatchmakingServiceServer.Discover),
		},
		{
			MethodName: "ListMatches",
			Handler:    unaryHandler(MatchmakingService_ListMatches_FullMethodName, MatchmakingServiceServer.ListMatches),
		},
		{
			MethodName: "ListIncomingLikes",
			Handler:    unaryHandler(MatchmakingService_ListIncomingLikes_FullMethodName, MatchmakingServiceServer.ListIncomingLikes),
		},
		{
			MethodName: "ListOutgoingLikes",
			Handler:    unaryHandler(MatchmakingService_ListOutgoingLikes_FullMethodName, MatchmakingServiceServer.ListOutgoingLikes),
		},
		{
			MethodName: "CountIncomingLikes",
			Handler:    unaryHandler(MatchmakingService_CountIncomingLikes_FullMethodName, MatchmakingServiceServer.CountIncomingLikes),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeEvents",
			Handler:       _MatchmakingService_SubscribeEvents_Handler,
			ServerStreams: true,
		},
	},
}

// MatchmakingServiceClient is the client API. Every call uses the json codec.
type MatchmakingServiceClient interface {
	SubmitLike(ctx context.Context, in *SubmitLikeRequest, opts ...grpc.CallOption) (*SubmitLikeResponse, error)
	Discover(ctx context.Context, in *DiscoverRequest, opts ...grpc.CallOption) (*DiscoverResponse, error)
	ListMatches(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error)
	ListIncomingLikes(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListLikesResponse, error)
	ListOutgoingLikes(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListLikesResponse, error)
	CountIncomingLikes(ctx context.Context, in *CountIncomingLikesRequest, opts ...grpc.CallOption) (*CountIncomingLikesResponse, error)
	SubscribeEvents(ctx context.Context, in *SubscribeEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[notify.Event], error)
}

type matchmakingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMatchmakingServiceClient(cc grpc.ClientConnInterface) MatchmakingServiceClient {
	return &matchmakingServiceClient{cc}
}

func invoke[Res any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Res, error) {
	cOpts := append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	out := new(Res)
	if err := cc.Invoke(ctx, method, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchmakingServiceClient) SubmitLike(ctx context.Context, in *SubmitLikeRequest, opts ...grpc.CallOption) (*SubmitLikeResponse, error) {
	return invoke[SubmitLikeResponse](ctx, c.cc, MatchmakingService_SubmitLike_FullMethodName, in, opts)
}

func (c *matchmakingServiceClient) Discover(ctx context.Context, in *DiscoverRequest, opts ...grpc.CallOption) (*DiscoverResponse, error) {
	return invoke[DiscoverResponse](ctx, c.cc, MatchmakingService_Discover_FullMethodName, in, opts)
}

func (c *matchmakingServiceClient) ListMatches(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	return invoke[ListMatchesResponse](ctx, c.cc, MatchmakingService_ListMatches_FullMethodName, in, opts)
}

func (c *matchmakingServiceClient) ListIncomingLikes(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListLikesResponse, error) {
	return invoke[ListLikesResponse](ctx, c.cc, MatchmakingService_ListIncomingLikes_FullMethodName, in, opts)
}

func (c *matchmakingServiceClient) ListOutgoingLikes(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListLikesResponse, error) {
	return invoke[ListLikesResponse](ctx, c.cc, MatchmakingService_ListOutgoingLikes_FullMethodName, in, opts)
}

func (c *matchmakingServiceClient) CountIncomingLikes(ctx context.Context, in *CountIncomingLikesRequest, opts ...grpc.CallOption) (*CountIncomingLikesResponse, error) {
	return invoke[CountIncomingLikesResponse](ctx, c.cc, MatchmakingService_CountIncomingLikes_FullMethodName, in, opts)
}

func (c *matchmakingServiceClient) SubscribeEvents(ctx context.Context, in *SubscribeEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[notify.Event], error) {
	cOpts := append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	stream, err := c.cc.NewStream(ctx, &MatchmakingService_ServiceDesc.Streams[0], MatchmakingService_SubscribeEvents_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeEventsRequest, notify.Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
