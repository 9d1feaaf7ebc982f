package auth

import (
	"context"

	"github.com/frahmantamala/hr-directory/internal"
)

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

// IdentityFromContext returns the caller as an Identity, or nil when the
// request is unauthenticated.
func IdentityFromContext(ctx context.Context) Identity {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p
	}
	return nil
}

// ABACPolicy holds the attribute checks that sit on top of role tiers.
type ABACPolicy struct{}

func NewABACPolicy() *ABACPolicy {
	return &ABACPolicy{}
}

// CanModifyAccount denies any admin mutation whose target is the caller,
// whatever the caller's role.
func (p *ABACPolicy) CanModifyAccount(actorID, targetID int64) error {
	if actorID == targetID {
		return internal.NewForbiddenError(
			"You cannot modify your own role or privileges. Another superuser must make this change.",
			internal.ErrCodeSelfModification,
		)
	}
	return nil
}
