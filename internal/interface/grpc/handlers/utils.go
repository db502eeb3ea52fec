package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	bridgeerrors "github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

// writeError maps typed errors to the http status of their grpc code. Untyped errors are
// internal errors.
func writeError(w http.ResponseWriter, err error) {
	var structuredErr bridgeerrors.Error
	if !errors.As(err, &structuredErr) {
		structuredErr = bridgeerrors.INTERNAL_ERROR.Wrap(err)
	}
	if structuredErr.Code() == bridgeerrors.INTERNAL_ERROR.Code {
		structuredErr.Log().Error(structuredErr.Error())
	} else {
		log.WithError(err).Debug("request rejected")
	}

	writeJSON(w, runtime.HTTPStatusFromCode(structuredErr.GrpcCode()), ErrorResponse{
		Code:     structuredErr.Code(),
		Name:     structuredErr.CodeName(),
		Message:  structuredErr.Error(),
		Metadata: structuredErr.Metadata(),
	})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, runtime.HTTPStatusFromCode(codes.InvalidArgument), ErrorResponse{
		Code:    bridgeerrors.INVALID_ARGUMENT.Code,
		Name:    bridgeerrors.INVALID_ARGUMENT.Name,
		Message: err.Error(),
	})
}
