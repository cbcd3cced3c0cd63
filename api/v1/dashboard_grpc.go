// Package v1 holds the workforce.v1.Dashboard service definition and its
// client. Messages are google.protobuf.Struct values shaped like the JSON
// documents the HTTP API serves.
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "workforce.v1.Dashboard"

const (
	Dashboard_GetDashboardStats_FullMethodName = "/workforce.v1.Dashboard/GetDashboardStats"
	Dashboard_GetPartner_FullMethodName        = "/workforce.v1.Dashboard/GetPartner"
	Dashboard_GetEngineer_FullMethodName       = "/workforce.v1.Dashboard/GetEngineer"
	Dashboard_ListTDLs_FullMethodName          = "/workforce.v1.Dashboard/ListTDLs"
	Dashboard_GetTDLStats_FullMethodName       = "/workforce.v1.Dashboard/GetTDLStats"
	Dashboard_GetTopEngineers_FullMethodName   = "/workforce.v1.Dashboard/GetTopEngineers"
	Dashboard_GetTopPartners_FullMethodName    = "/workforce.v1.Dashboard/GetTopPartners"
	Dashboard_Rebuild_FullMethodName           = "/workforce.v1.Dashboard/Rebuild"
)

// DashboardServer is the server API for the Dashboard service.
type DashboardServer interface {
	GetDashboardStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPartner(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEngineer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTDLs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTDLStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTopEngineers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTopPartners(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Rebuild(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedDashboardServer can be embedded to stay forward compatible.
type UnimplementedDashboardServer struct{}

func (UnimplementedDashboardServer) GetDashboardStats(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDashboardStats not implemented")
}
func (UnimplementedDashboardServer) GetPartner(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPartner not implemented")
}
func (UnimplementedDashboardServer) GetEngineer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEngineer not implemented")
}
func (UnimplementedDashboardServer) ListTDLs(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTDLs not implemented")
}
func (UnimplementedDashboardServer) GetTDLStats(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTDLStats not implemented")
}
func (UnimplementedDashboardServer) GetTopEngineers(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTopEngineers not implemented")
}
func (UnimplementedDashboardServer) GetTopPartners(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTopPartners not implemented")
}
func (UnimplementedDashboardServer) Rebuild(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Rebuild not implemented")
}

type unaryCall func(srv DashboardServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func handler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServer), ctx, req.(*structpb.Struct))
		})
	}
}

// Dashboard_ServiceDesc is the grpc.ServiceDesc for the Dashboard service.
var Dashboard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDashboardStats", Handler: handler(Dashboard_GetDashboardStats_FullMethodName, DashboardServer.GetDashboardStats)},
		{MethodName: "GetPartner", Handler: handler(Dashboard_GetPartner_FullMethodName, DashboardServer.GetPartner)},
		{MethodName: "GetEngineer", Handler: handler(Dashboard_GetEngineer_FullMethodName, DashboardServer.GetEngineer)},
		{MethodName: "ListTDLs", Handler: handler(Dashboard_ListTDLs_FullMethodName, DashboardServer.ListTDLs)},
		{MethodName: "GetTDLStats", Handler: handler(Dashboard_GetTDLStats_FullMethodName, DashboardServer.GetTDLStats)},
		{MethodName: "GetTopEngineers", Handler: handler(Dashboard_GetTopEngineers_FullMethodName, DashboardServer.GetTopEngineers)},
		{MethodName: "GetTopPartners", Handler: handler(Dashboard_GetTopPartners_FullMethodName, DashboardServer.GetTopPartners)},
		{MethodName: "Rebuild", Handler: handler(Dashboard_Rebuild_FullMethodName, DashboardServer.Rebuild)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/dashboard.proto",
}

func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&Dashboard_ServiceDesc, srv)
}

// DashboardClient is the client API for the Dashboard service.
type DashboardClient interface {
	GetDashboardStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetPartner(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetEngineer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListTDLs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetTDLStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetTopEngineers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetTopPartners(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Rebuild(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type dashboardClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardClient(cc grpc.ClientConnInterface) DashboardClient {
	return &dashboardClient{cc: cc}
}

func (c *dashboardClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dashboardClient) GetDashboardStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_GetDashboardStats_FullMethodName, in, opts)
}

func (c *dashboardClient) GetPartner(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_GetPartner_FullMethodName, in, opts)
}

func (c *dashboardClient) GetEngineer(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_GetEngineer_FullMethodName, in, opts)
}

func (c *dashboardClient) ListTDLs(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_ListTDLs_FullMethodName, in, opts)
}

func (c *dashboardClient) GetTDLStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_GetTDLStats_FullMethodName, in, opts)
}

func (c *dashboardClient) GetTopEngineers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_GetTopEngineers_FullMethodName, in, opts)
}

func (c *dashboardClient) GetTopPartners(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_GetTopPartners_FullMethodName, in, opts)
}

func (c *dashboardClient) Rebuild(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Dashboard_Rebuild_FullMethodName, in, opts)
}
