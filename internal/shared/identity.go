package shared

import "context"

// Identity carries the tenant and actor the surrounding service authenticated.
// The ledger trusts these values; authorization happened upstream. CanReopen
// is the elevated capability required by period reopen.
type Identity struct {
	TenantID  int64
	ActorID   int64
	CanReopen bool
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
