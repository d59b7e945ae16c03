package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jan-server/services/assistant-api/internal/utils/platformerrors"
)

// ErrorBody carries the client-facing error details.
type ErrorBody struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse is the envelope every failure shares. Store and network
// details stay in logs; the message here is the handler's generic one.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// HandleError maps a domain error onto the HTTP error envelope.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{Error: ErrorBody{
			Message:   message,
			Type:      string(domainErr.GetErrorType()),
			Code:      domainErr.GetUUID(),
			RequestID: domainErr.GetRequestID(),
		}})
		return
	}

	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
		Message:   message,
		Type:      string(platformerrors.ErrorTypeInternal),
		RequestID: platformerrors.RequestIDFromContext(reqCtx.Request.Context()),
	}})
}

// HandleNewError creates a typed error at the route layer and writes it.
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerRoute, errorType, message, nil, uuid)

	statusCode := platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType())

	reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{Error: ErrorBody{
		Message:   message,
		Type:      string(err.GetErrorType()),
		Code:      err.GetUUID(),
		RequestID: err.GetRequestID(),
	}})
}
