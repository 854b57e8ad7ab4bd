package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gerrors "github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/modules/hierarchy/services"
)

func TestWriteServiceError_Mapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound, "HIERARCHY_NOT_FOUND"},
		{"role mismatch", services.ErrRoleMismatch, http.StatusConflict, "HIERARCHY_ROLE_MISMATCH"},
		{"same department head", services.ErrSameDepartmentHead, http.StatusBadRequest, "HIERARCHY_SAME_DEPARTMENT_HEAD"},
		{"missing target head", services.ErrMissingTargetHead, http.StatusBadRequest, "HIERARCHY_MISSING_TARGET_HEAD"},
		{"department mismatch", services.ErrDepartmentMismatch, http.StatusConflict, "HIERARCHY_DEPARTMENT_MISMATCH"},
		{"invariant violation", services.ErrInvariantViolation, http.StatusUnprocessableEntity, "HIERARCHY_INVARIANT_VIOLATION"},
		{"transaction conflict", services.ErrTransactionConflict, http.StatusConflict, "HIERARCHY_TX_CONFLICT"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "HIERARCHY_FORBIDDEN"},
		{"opaque error", gerrors.New("boom"), http.StatusInternalServerError, "HIERARCHY_INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/hierarchy/api/persons/x:transition", nil)

			writeServiceError(rec, req, tc.err)

			require.Equal(t, tc.wantStatus, rec.Code)

			var body struct {
				Code    string            `json:"code"`
				Message string            `json:"message"`
				Meta    map[string]string `json:"meta"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.wantCode, body.Code)
			require.NotEmpty(t, body.Message)
			require.NotEmpty(t, body.Meta["request_id"])
		})
	}
}

func TestWriteServiceError_RetryableMarker(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/hierarchy/api/exchanges/heads", nil)

	writeServiceError(rec, req, services.ErrTransactionConflict)

	var body struct {
		Meta map[string]string `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "true", body.Meta["retryable"])
}
