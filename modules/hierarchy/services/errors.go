package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ServiceError is the typed failure surface of the hierarchy engine.
// Controllers map Status/Code straight onto the response; Retryable
// marks conflicts the caller may resubmit unchanged.
type ServiceError struct {
	Status    int
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func (e *ServiceError) Is(target error) bool {
	var other *ServiceError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Sentinels for errors.Is checks in callers and tests. Matching is by
// Code, so the concrete instances below compare equal to these.
var (
	ErrNotFound            = &ServiceError{Status: http.StatusNotFound, Code: "HIERARCHY_NOT_FOUND", Message: "entity not found"}
	ErrRoleMismatch        = &ServiceError{Status: http.StatusConflict, Code: "HIERARCHY_ROLE_MISMATCH", Message: "role not valid for operation"}
	ErrSameDepartmentHead  = &ServiceError{Status: http.StatusBadRequest, Code: "HIERARCHY_SAME_DEPARTMENT_HEAD", Message: "head change within the same department"}
	ErrMissingTargetHead   = &ServiceError{Status: http.StatusBadRequest, Code: "HIERARCHY_MISSING_TARGET_HEAD", Message: "target department has no head"}
	ErrMissingHead         = &ServiceError{Status: http.StatusBadRequest, Code: "HIERARCHY_MISSING_HEAD", Message: "department has no head"}
	ErrDepartmentMismatch  = &ServiceError{Status: http.StatusConflict, Code: "HIERARCHY_DEPARTMENT_MISMATCH", Message: "departments invalid for exchange"}
	ErrInvariantViolation  = &ServiceError{Status: http.StatusUnprocessableEntity, Code: "HIERARCHY_INVARIANT_VIOLATION", Message: "computed state violates hierarchy invariants"}
	ErrTransactionConflict = &ServiceError{Status: http.StatusConflict, Code: "HIERARCHY_TX_CONFLICT", Message: "concurrent modification, retry the request", Retryable: true}
	ErrValidation          = &ServiceError{Status: http.StatusBadRequest, Code: "HIERARCHY_VALIDATION", Message: "invalid request"}
	ErrForbidden           = &ServiceError{Status: http.StatusForbidden, Code: "HIERARCHY_FORBIDDEN", Message: "operation not permitted for actor"}
)

func notFoundError(kind string, id uuid.UUID) *ServiceError {
	return &ServiceError{
		Status:  http.StatusNotFound,
		Code:    ErrNotFound.Code,
		Message: fmt.Sprintf("%s %s not found", kind, id),
	}
}

func roleMismatchError(format string, args ...any) *ServiceError {
	return &ServiceError{
		Status:  http.StatusConflict,
		Code:    ErrRoleMismatch.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

func validationError(format string, args ...any) *ServiceError {
	return &ServiceError{
		Status:  http.StatusBadRequest,
		Code:    ErrValidation.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

func invariantError(detail string) *ServiceError {
	return &ServiceError{
		Status:  http.StatusUnprocessableEntity,
		Code:    ErrInvariantViolation.Code,
		Message: detail,
	}
}

// wrapStoreError folds serialization and deadlock failures into the
// retryable conflict error; anything else passes through untouched.
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return &ServiceError{
				Status:    http.StatusConflict,
				Code:      ErrTransactionConflict.Code,
				Message:   ErrTransactionConflict.Message,
				Retryable: true,
				Cause:     err,
			}
		}
	}
	return err
}
