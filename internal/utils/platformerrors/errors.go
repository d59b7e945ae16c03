// Package platformerrors defines the typed error carried across layer
// boundaries, so handlers can map failures onto HTTP statuses without
// inspecting driver or provider errors directly.
package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID stores the request ID on the context for error correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// ErrorType classifies a failure for transport mapping and retry decisions.
type ErrorType string

const (
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeUnauthorized   ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden      ErrorType = "FORBIDDEN"
	ErrorTypeExpired        ErrorType = "EXPIRED"
	ErrorTypeRateLimited    ErrorType = "RATE_LIMITED"
	ErrorTypeTimeout        ErrorType = "TIMEOUT"
	ErrorTypeExternal       ErrorType = "EXTERNAL"
	ErrorTypeDatabaseError  ErrorType = "DATABASE_ERROR"
	ErrorTypeNotImplemented ErrorType = "NOT_IMPLEMENTED"
	ErrorTypeInternal       ErrorType = "INTERNAL"
)

// Layer names the application layer that raised the error.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerInfrastructure Layer = "infrastructure"
	LayerRoute          Layer = "route"
)

// PlatformError carries a classified failure together with the correlation
// identifiers needed to find it again in the logs.
type PlatformError struct {
	Type      ErrorType
	Layer     Layer
	Message   string
	Err       error
	UUID      string
	RequestID string
	Timestamp time.Time
}

func (e *PlatformError) Error() string {
	msg := fmt.Sprintf("%s/%s %s: %s", e.Layer, e.Type, e.UUID, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *PlatformError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the error classification.
func (e *PlatformError) GetErrorType() ErrorType {
	return e.Type
}

// GetRequestID returns the correlated request ID, if any.
func (e *PlatformError) GetRequestID() string {
	return e.RequestID
}

// GetUUID returns the error instance identifier.
func (e *PlatformError) GetUUID() string {
	return e.UUID
}

// NewError builds a PlatformError, picking up the request ID from ctx and
// minting an instance UUID when customUUID is empty.
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, customUUID string) *PlatformError {
	errorUUID := customUUID
	if errorUUID == "" {
		errorUUID = uuid.NewString()
	}

	return &PlatformError{
		Type:      errorType,
		Layer:     layer,
		Message:   message,
		Err:       err,
		UUID:      errorUUID,
		RequestID: RequestIDFromContext(ctx),
		Timestamp: time.Now().UTC(),
	}
}

// GetPlatformError extracts a PlatformError from an error chain, or nil.
func GetPlatformError(err error) *PlatformError {
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr
	}
	return nil
}

// IsErrorType reports whether err carries the given classification.
func IsErrorType(err error, errorType ErrorType) bool {
	platformErr := GetPlatformError(err)
	return platformErr != nil && platformErr.Type == errorType
}

var httpStatusForType = map[ErrorType]int{
	ErrorTypeNotFound:       http.StatusNotFound,
	ErrorTypeValidation:     http.StatusBadRequest,
	ErrorTypeConflict:       http.StatusConflict,
	ErrorTypeUnauthorized:   http.StatusUnauthorized,
	ErrorTypeForbidden:      http.StatusForbidden,
	ErrorTypeExpired:        http.StatusGone,
	ErrorTypeRateLimited:    http.StatusTooManyRequests,
	ErrorTypeTimeout:        http.StatusGatewayTimeout,
	ErrorTypeExternal:       http.StatusBadGateway,
	ErrorTypeNotImplemented: http.StatusNotImplemented,
}

// ErrorTypeToHTTPStatus maps an error type onto its response status. Types
// without a dedicated mapping, database errors included, surface as 500.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	if status, ok := httpStatusForType[errorType]; ok {
		return status
	}
	return http.StatusInternalServerError
}
