package handlers

import (
	"net/http"

	"github.com/arkade-os/nftbridge/internal/interface/grpc/permissions"
	"github.com/arkade-os/nftbridge/pkg/errors"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
)

const (
	publicRoute   = permissions.Public
	accountRoute  = permissions.Account
	operatorRoute = permissions.Operator
)

// router mounts the REST routes on the gateway mux and enforces the access level of each of
// them when macaroons are enabled.
type router struct {
	mux      *runtime.ServeMux
	auth     bool
	operator string
	err      error
}

func newRouter(auth bool, operator string) *router {
	return &router{
		mux:      runtime.NewServeMux(),
		auth:     auth,
		operator: operator,
	}
}

// handle registers fn for method and pattern. The first registration error is kept and
// returned by the router's owner.
func (rt *router) handle(
	method, pattern string, access permissions.Access, fn http.HandlerFunc,
) {
	if rt.err != nil {
		return
	}
	rt.err = rt.mux.HandlePath(method, pattern,
		func(w http.ResponseWriter, r *http.Request, params map[string]string) {
			for name, value := range params {
				r.SetPathValue(name, value)
			}
			if err := rt.authorize(r, access); err != nil {
				writeError(w, err)
				return
			}
			fn(w, r)
		},
	)
}

func (rt *router) authorize(r *http.Request, access permissions.Access) error {
	if !rt.auth || access == permissions.Public {
		return nil
	}
	account, ok := permissions.AccountFromContext(r.Context())
	if !ok {
		return errors.UNAUTHENTICATED.New("%s route requires a macaroon", access)
	}
	if access == permissions.Operator && account != rt.operator {
		return errors.PERMISSION_DENIED.New("route is reserved to the operator").
			WithMetadata(errors.AccountMetadata{Account: account})
	}
	return nil
}

// callerOf returns the account the request acts for. Once authenticated that is the account
// of the macaroon and a body caller naming anyone else is refused.
func callerOf(r *http.Request, claimed string) (string, error) {
	account, ok := permissions.AccountFromContext(r.Context())
	if !ok {
		if claimed == "" {
			return "", errors.INVALID_ARGUMENT.New("missing caller")
		}
		return claimed, nil
	}
	if claimed != "" && claimed != account {
		return "", errors.UNAUTHENTICATED.New("caller %s does not match the macaroon", claimed).
			WithMetadata(errors.AccountMetadata{Account: account})
	}
	return account, nil
}
