package interceptors

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/arkade-os/nftbridge/pkg/macaroons"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/status"
)

// HTTPMiddleware wraps the REST handler with the same panic recovery, logging and readiness
// gating applied to the gRPC methods. A nil macaroon service disables authentication.
func HTTPMiddleware(
	readiness *ReadinessService, macaroonSvc *macaroons.Service, next http.Handler,
) http.Handler {
	return httpPanicRecovery(httpLogger(httpReadiness(readiness, httpMacaroonAuth(macaroonSvc, next))))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func httpLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("http request failed")
			return
		}
		entry.Debug("http request")
	})
}

func httpPanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logPanic(rec)
				writeStatusError(w, gRPCError{somethingWentWrong}.GRPCStatus())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func httpReadiness(readiness *ReadinessService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthzPath {
			if !readiness.IsReady() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := readiness.Check(r.Context(), r.URL.Path); err != nil {
			writeStatusError(w, status.Convert(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeStatusError(w http.ResponseWriter, st *status.Status) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(runtime.HTTPStatusFromCode(st.Code()))
	// nolint:errcheck
	json.NewEncoder(w).Encode(map[string]any{
		"name":    st.Code().String(),
		"message": st.Message(),
	})
}
