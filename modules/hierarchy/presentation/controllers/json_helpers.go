package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hivehr/hivehr/modules/hierarchy/services"
	"github.com/hivehr/hivehr/pkg/configuration"
	"github.com/hivehr/hivehr/pkg/httpapi"
)

func ensureRequestID(w http.ResponseWriter, r *http.Request) string {
	if r == nil {
		return ""
	}
	header := strings.TrimSpace(configuration.Use().RequestIDHeader)
	if header == "" {
		header = "X-Request-ID"
	}

	requestID := strings.TrimSpace(r.Header.Get(header))
	if requestID == "" {
		requestID = strings.TrimSpace(r.Header.Get("X-Request-Id"))
	}
	if requestID == "" {
		requestID = uuid.NewString()
		w.Header().Set(header, requestID)
	}
	return requestID
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	_ = httpapi.WriteError(w, status, code, message, map[string]string{
		"request_id": ensureRequestID(w, r),
	})
}

// writeServiceError maps the engine's typed errors onto the wire; the
// retryable marker lets clients resubmit conflict failures verbatim.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.ServiceError
	if !errors.As(err, &svcErr) {
		writeAPIError(w, r, http.StatusInternalServerError, "HIERARCHY_INTERNAL", "internal error")
		return
	}

	meta := map[string]string{
		"request_id": ensureRequestID(w, r),
	}
	if svcErr.Retryable {
		meta["retryable"] = "true"
	}
	_ = httpapi.WriteError(w, svcErr.Status, svcErr.Code, svcErr.Message, meta)
}
