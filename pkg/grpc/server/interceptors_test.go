package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func okHandler(context.Context, any) (any, error) { return "success", nil }

func TestLoggingInterceptor(t *testing.T) {
	interceptor := LoggingInterceptor(zaptest.NewLogger(t))
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/TestMethod"}

	t.Run("successful request", func(t *testing.T) {
		resp, err := interceptor(context.Background(), "req", info, okHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	})

	t.Run("error request", func(t *testing.T) {
		_, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
			return nil, status.Error(codes.InvalidArgument, "test error")
		})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(zaptest.NewLogger(t))
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Panics"}

	resp, err := interceptor(context.Background(), "req", info, func(context.Context, any) (any, error) {
		panic("nil map write")
	})
	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestAdminKeyInterceptor(t *testing.T) {
	const guarded = "/workforce.v1.Dashboard/Rebuild"
	withKey := func(k string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs(AdminKeyHeader, k))
	}

	interceptor := AdminKeyInterceptor("s3cret", guarded)

	t.Run("unguarded method passes", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/workforce.v1.Dashboard/ListTDLs"}, okHandler)
		assert.NoError(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: guarded}, okHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := interceptor(withKey("nope"), nil, &grpc.UnaryServerInfo{FullMethod: guarded}, okHandler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("right key", func(t *testing.T) {
		resp, err := interceptor(withKey("s3cret"), nil, &grpc.UnaryServerInfo{FullMethod: guarded}, okHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	})

	t.Run("no key configured", func(t *testing.T) {
		_, err := AdminKeyInterceptor("", guarded)(withKey(""), nil, &grpc.UnaryServerInfo{FullMethod: guarded}, okHandler)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})
}

func TestNewRejectsBadPort(t *testing.T) {
	_, err := New(WithPort(70000))
	assert.Error(t, err)
}

func TestServerBuilderWithLogging(t *testing.T) {
	server, err := New(
		WithPort(0),
		WithLogger(zaptest.NewLogger(t)),
		WithLogging(true),
		WithRecovery(true),
	)
	require.NoError(t, err)
	defer func() { _ = server.Shutdown(context.Background()) }()

	require.NotNil(t, server.grpcServer)
	require.NotNil(t, server.healthServer)

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	server.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
