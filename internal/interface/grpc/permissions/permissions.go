package permissions

import "context"

// Access is the authentication a REST route requires.
type Access uint8

const (
	// Public routes are served without a macaroon.
	Public Access = iota
	// Account routes act for the account the macaroon is bound to.
	Account
	// Operator routes are reserved to the macaroon of the bridge operator.
	Operator
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Account:
		return "account"
	case Operator:
		return "operator"
	default:
		return "unknown"
	}
}

type accountKey struct{}

// WithAccount returns a context carrying the authenticated account.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the authenticated account, if any.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountKey{}).(string)
	return account, ok && account != ""
}
