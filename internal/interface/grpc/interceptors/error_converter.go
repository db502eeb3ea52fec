package interceptors

import (
	"context"
	"errors"
	"strconv"

	bridgeerrors "github.com/arkade-os/nftbridge/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const errorDomain = "nftbridge"

// gRPCError is a wrapper implementing GRPCStatus method for errors.Error.
// The returned status carries an ErrorInfo detail with the code name and the metadata.
type gRPCError struct {
	err bridgeerrors.Error
}

func (e gRPCError) Error() string {
	return e.err.Error()
}

func (e gRPCError) GRPCStatus() *status.Status {
	st := status.New(e.err.GrpcCode(), e.err.Error())

	metadata := e.err.Metadata()
	metadata["code"] = strconv.Itoa(int(e.err.Code()))

	stWithDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   e.err.CodeName(),
		Domain:   errorDomain,
		Metadata: metadata,
	})
	if err != nil {
		return st
	}
	return stWithDetails
}

func errorConverter(
	ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		var structuredErr bridgeerrors.Error
		if errors.As(err, &structuredErr) {
			return nil, gRPCError{structuredErr}
		}
		log.WithError(err).Debugf("gRPC method %s failed", info.FullMethod)
	}
	return resp, err
}
