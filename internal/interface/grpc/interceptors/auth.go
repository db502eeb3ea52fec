package interceptors

import (
	"net/http"

	"github.com/arkade-os/nftbridge/internal/interface/grpc/permissions"
	"github.com/arkade-os/nftbridge/pkg/macaroons"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const MacaroonHeader = "X-Macaroon"

// httpMacaroonAuth binds the request to the account of its macaroon. Requests without one go
// through unauthenticated and the routes decide whether that is enough.
func httpMacaroonAuth(svc *macaroons.Service, next http.Handler) http.Handler {
	if svc == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoded := r.Header.Get(MacaroonHeader)
		if encoded == "" {
			next.ServeHTTP(w, r)
			return
		}
		account, err := svc.Validate(encoded)
		if err != nil {
			log.WithError(err).Debug("rejected macaroon")
			writeStatusError(w, status.New(codes.Unauthenticated, "invalid macaroon"))
			return
		}
		next.ServeHTTP(w, r.WithContext(permissions.WithAccount(r.Context(), account)))
	})
}
