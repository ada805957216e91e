package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/planeet/internal/domain/planning"
	apperrors "github.com/yanqian/planeet/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// planError translates a planning failure into its HTTP status, keeping the domain code.
func planError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = planning.CodePlanningError
	}
	message := apperrors.MessageOf(err)
	if message == "" {
		message = errMessage(err)
	}
	return NewHTTPError(statusForCode(code), code, message, err)
}

func statusForCode(code string) int {
	switch code {
	case planning.CodeInvalidInput:
		return http.StatusBadRequest
	case planning.CodeNoAvailableVenues:
		return http.StatusUnprocessableEntity
	case planning.CodePlanTimeout:
		return http.StatusGatewayTimeout
	case planning.CodeRequestCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
