package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hivehr/hivehr/pkg/composables"
	"github.com/hivehr/hivehr/pkg/configuration"
	"github.com/hivehr/hivehr/pkg/httpapi"
)

// TenantFromHeader resolves the tenant from the gateway-provided header.
// Outside production the configured default tenant is used as a fallback
// so local setups work without a gateway in front.
func TenantFromHeader() mux.MiddlewareFunc {
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(conf.TenantIDHeader)
			if raw == "" {
				raw = conf.DefaultTenantID
			}
			if raw == "" {
				_ = httpapi.WriteError(w, http.StatusBadRequest, "TENANT_REQUIRED", "missing tenant header", map[string]string{
					"header": conf.TenantIDHeader,
				})
				return
			}

			tenantID, err := uuid.Parse(raw)
			if err != nil {
				composables.UseLogger(r.Context()).WithField("tenant", raw).WithError(err).Warn("malformed tenant header")
				_ = httpapi.WriteError(w, http.StatusBadRequest, "TENANT_INVALID", "malformed tenant id", map[string]string{
					"header": conf.TenantIDHeader,
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), tenantID)))
		})
	}
}

// ProvideActor reads the acting user's identity from the gateway headers.
// Requests without an actor still pass through; authorization decisions
// happen at the service layer.
func ProvideActor() mux.MiddlewareFunc {
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(conf.ActorIDHeader)
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			actorID, err := uuid.Parse(rawID)
			if err != nil {
				composables.UseLogger(r.Context()).WithField("actor", rawID).WithError(err).Warn("malformed actor header")
				next.ServeHTTP(w, r)
				return
			}

			actor := composables.Actor{
				ID:   actorID,
				Role: r.Header.Get(conf.ActorRoleHeader),
			}
			next.ServeHTTP(w, r.WithContext(composables.WithActor(r.Context(), actor)))
		})
	}
}
