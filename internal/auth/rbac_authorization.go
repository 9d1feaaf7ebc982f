package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// RBACAuthorization applies Policy to HTTP routes.
type RBACAuthorization struct {
	policy    *Policy
	logger    *slog.Logger
	base      *transport.BaseHandler
	decisions *prometheus.CounterVec
}

func NewRBACAuthorization(policy *Policy, logger *slog.Logger, registerer prometheus.Registerer) *RBACAuthorization {
	if policy == nil {
		policy = NewPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hr_authorization_decisions_total",
		Help: "Authorization decisions by operation and outcome.",
	}, []string{"operation", "outcome"})
	if registerer != nil {
		if err := registerer.Register(decisions); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				decisions = are.ExistingCollector.(*prometheus.CounterVec)
			} else {
				logger.Warn("failed to register authorization metrics", "error", err)
			}
		}
	}

	return &RBACAuthorization{
		policy:    policy,
		logger:    logger,
		base:      transport.NewBaseHandler(logger),
		decisions: decisions,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, op Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if err := ra.policy.Authorize(identity, op); err != nil {
			outcome := "denied"
			if errors.Is(err, internal.ErrAuthenticationRequired) {
				outcome = "unauthenticated"
			}
			ra.decisions.WithLabelValues(string(op), outcome).Inc()

			ra.logger.WarnContext(r.Context(), "access denied",
				"operation", op,
				"user_id", internal.UserIDFromContext(r.Context()),
				"role", EffectiveRole(identity),
				"method", r.Method,
				"path", r.URL.Path)
			ra.base.HandleServiceError(w, r, err)
			return
		}

		ra.decisions.WithLabelValues(string(op), "allowed").Inc()
		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, op)
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Middleware(OperationAdmin)
}
