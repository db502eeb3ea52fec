package interceptors

import (
	"context"
	"errors"

	bridgeerrors "github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

func unaryLogger(
	ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
) (any, error) {
	log.Debugf("gRPC method: %s", info.FullMethod)
	resp, err := handler(ctx, req)
	if err != nil {
		logError(ctx, err)
	}
	return resp, err
}

func streamLogger(
	srv any, stream grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler,
) error {
	log.Debugf("gRPC method: %s", info.FullMethod)
	return handler(srv, stream)
}

// logError reports internal errors only, rejected calls are expected.
func logError(ctx context.Context, err error) {
	var structuredErr bridgeerrors.Error
	if !errors.As(err, &structuredErr) {
		return
	}
	if structuredErr.Code() == bridgeerrors.INTERNAL_ERROR.Code {
		structuredErr.Log().WithContext(ctx).Error(structuredErr.Error())
	}
}
