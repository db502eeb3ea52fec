package interceptors

import (
	"context"
	"strings"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const (
	healthServiceMethodPrefix = "/grpc.health.v1.Health/"
	healthzPath               = "/healthz"

	bridgeServiceNotReadyMsg = "bridge service not ready: spokes and agents are not started"
)

// ReadinessService gates every method but the health checks until the bridge services are
// started and mirrors the state on the health server.
type ReadinessService struct {
	health     *health.Server
	appStarted atomic.Bool
}

func NewReadinessService(health *health.Server) *ReadinessService {
	r := &ReadinessService{health: health}
	r.setServingStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return r
}

func (r *ReadinessService) MarkAppServiceStarted() {
	r.appStarted.Store(true)
	r.setServingStatus(healthpb.HealthCheckResponse_SERVING)
}

func (r *ReadinessService) MarkAppServiceStopped() {
	r.appStarted.Store(false)
	r.setServingStatus(healthpb.HealthCheckResponse_NOT_SERVING)
}

func (r *ReadinessService) IsReady() bool {
	return r != nil && r.appStarted.Load()
}

func (r *ReadinessService) Check(_ context.Context, fullMethod string) error {
	if r == nil || !isProtectedMethod(fullMethod) {
		return nil
	}
	if !r.appStarted.Load() {
		return status.Error(codes.Unavailable, bridgeServiceNotReadyMsg)
	}
	return nil
}

func (r *ReadinessService) setServingStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	if r.health != nil {
		r.health.SetServingStatus("", st)
	}
}

func isProtectedMethod(fullMethod string) bool {
	return !strings.HasPrefix(fullMethod, healthServiceMethodPrefix) &&
		fullMethod != healthzPath
}

func unaryReadinessHandler(readiness *ReadinessService) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req any,
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
	) (any, error) {
		if err := readiness.Check(ctx, info.FullMethod); err != nil {
			return nil, err
		}

		return handler(ctx, req)
	}
}

func streamReadinessHandler(readiness *ReadinessService) grpc.StreamServerInterceptor {
	return func(
		srv any, stream grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler,
	) error {
		if err := readiness.Check(stream.Context(), info.FullMethod); err != nil {
			return err
		}

		return handler(srv, stream)
	}
}
