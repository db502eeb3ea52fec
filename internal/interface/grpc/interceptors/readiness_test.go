package interceptors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const protectedMethod = "/nftbridge.v1.BridgeService/GetInfo"

func TestUnaryReadinessHandler(t *testing.T) {
	t.Run("passes when app is started", func(t *testing.T) {
		readiness := NewReadinessService(nil)
		readiness.MarkAppServiceStarted()
		interceptor := unaryReadinessHandler(readiness)

		called := false
		_, err := interceptor(
			context.Background(),
			nil,
			&grpc.UnaryServerInfo{FullMethod: protectedMethod},
			func(ctx context.Context, req any) (any, error) {
				called = true
				return "ok", nil
			},
		)
		require.NoError(t, err)
		require.True(t, called)
	})

	t.Run("blocks when app is not started", func(t *testing.T) {
		interceptor := unaryReadinessHandler(NewReadinessService(nil))

		called := false
		_, err := interceptor(
			context.Background(),
			nil,
			&grpc.UnaryServerInfo{FullMethod: protectedMethod},
			func(ctx context.Context, req any) (any, error) {
				called = true
				return nil, nil
			},
		)
		st, ok := status.FromError(err)
		require.True(t, ok)
		require.Equal(t, codes.Unavailable, st.Code())
		require.False(t, called)
	})
}

func TestStreamReadinessHandler(t *testing.T) {
	t.Run("passes when app is started", func(t *testing.T) {
		readiness := NewReadinessService(nil)
		readiness.MarkAppServiceStarted()
		interceptor := streamReadinessHandler(readiness)

		called := false
		err := interceptor(
			nil,
			&testServerStream{ctx: context.Background()},
			&grpc.StreamServerInfo{FullMethod: protectedMethod},
			func(srv any, ss grpc.ServerStream) error {
				called = true
				return nil
			},
		)
		require.NoError(t, err)
		require.True(t, called)
	})

	t.Run("blocks when app is not started", func(t *testing.T) {
		interceptor := streamReadinessHandler(NewReadinessService(nil))

		called := false
		err := interceptor(
			nil,
			&testServerStream{ctx: context.Background()},
			&grpc.StreamServerInfo{FullMethod: protectedMethod},
			func(srv any, ss grpc.ServerStream) error {
				called = true
				return nil
			},
		)
		st, ok := status.FromError(err)
		require.True(t, ok)
		require.Equal(t, codes.Unavailable, st.Code())
		require.False(t, called)
	})
}

func TestReadinessServiceCheck(t *testing.T) {
	t.Run("ignores health checks", func(t *testing.T) {
		r := NewReadinessService(nil)
		require.NoError(t, r.Check(context.Background(), "/grpc.health.v1.Health/Check"))
		require.NoError(t, r.Check(context.Background(), "/healthz"))
	})

	t.Run("app not started returns unavailable", func(t *testing.T) {
		r := NewReadinessService(nil)
		err := r.Check(context.Background(), "/v1/spokes/source")
		st, ok := status.FromError(err)
		require.True(t, ok)
		require.Equal(t, codes.Unavailable, st.Code())
	})

	t.Run("stopped app returns unavailable", func(t *testing.T) {
		r := NewReadinessService(nil)
		r.MarkAppServiceStarted()
		require.NoError(t, r.Check(context.Background(), "/v1/spokes/source"))
		r.MarkAppServiceStopped()
		require.Error(t, r.Check(context.Background(), "/v1/spokes/source"))
	})

	t.Run("mirrors the health server", func(t *testing.T) {
		healthSrv := health.NewServer()
		r := NewReadinessService(healthSrv)

		resp, err := healthSrv.Check(context.Background(), &healthpb.HealthCheckRequest{})
		require.NoError(t, err)
		require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

		r.MarkAppServiceStarted()
		resp, err = healthSrv.Check(context.Background(), &healthpb.HealthCheckRequest{})
		require.NoError(t, err)
		require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})
}

type testServerStream struct {
	ctx context.Context
}

func (s *testServerStream) SetHeader(_ metadata.MD) error { return nil }

func (s *testServerStream) SendHeader(_ metadata.MD) error { return nil }

func (s *testServerStream) SetTrailer(_ metadata.MD) {}

func (s *testServerStream) Context() context.Context { return s.ctx }

func (s *testServerStream) SendMsg(any) error { return nil }

func (s *testServerStream) RecvMsg(any) error { return nil }
