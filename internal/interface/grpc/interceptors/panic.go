// panic.go recovers from panics and converts them into INTERNAL_ERROR errors instead of
// crashing the server. Stack traces are logged.
package interceptors

import (
	"context"
	"runtime/debug"

	"github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

var somethingWentWrong = errors.INTERNAL_ERROR.New("something went wrong")

func unaryPanicRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req any,
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(r)
				err = somethingWentWrong
			}
		}()

		resp, err = handler(ctx, req)
		return resp, err
	}
}

func streamPanicRecoveryInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any, stream grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler,
	) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(r)
				err = somethingWentWrong
			}
		}()

		err = handler(srv, stream)
		return err
	}
}

func logPanic(r any) {
	log.Errorf("panic-recovery middleware recovered from panic: %v", r)
	log.Errorf("stack trace: %v", string(debug.Stack()))
}
