// movie-service/internal/grpc/service.go
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name, also used as the
// health-check service key.
const ServiceName = "movie.v1.MovieInterService"

const (
	getMovieInfoMethod     = "/" + ServiceName + "/GetMovieInfo"
	checkMovieExistsMethod = "/" + ServiceName + "/CheckMovieExists"
)

// MovieInterServiceServer is the inter-service lookup API. Requests carry the
// movie id as a StringValue.
type MovieInterServiceServer interface {
	GetMovieInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CheckMovieExists(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

func RegisterMovieInterServiceServer(s grpc.ServiceRegistrar, srv MovieInterServiceServer) {
	s.RegisterService(&movieInterServiceDesc, srv)
}

func getMovieInfoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MovieInterServiceServer).GetMovieInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getMovieInfoMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MovieInterServiceServer).GetMovieInfo(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func checkMovieExistsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MovieInterServiceServer).CheckMovieExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkMovieExistsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MovieInterServiceServer).CheckMovieExists(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var movieInterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MovieInterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetMovieInfo", Handler: getMovieInfoHandler},
		{MethodName: "CheckMovieExists", Handler: checkMovieExistsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "movie/v1/movie.proto",
}
