package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	HTTPStatusCode int   `json:"-"`
	Err            error `json:"-"`

	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Err) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return e.Message
}

// RenderErr writes e as the JSON body and aborts the chain. Server errors are
// logged in full while the client only sees a generic message.
func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("requestID", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		Err:            err,
		Code:           "bad_request",
		Message:        err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		Err:            err,
		Code:           "unauthorized",
		Message:        "authentication required",
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		Err:            err,
		Code:           "wrong_credentials",
		Message:        "wrong phone number or password",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusForbidden,
		Err:            err,
		Code:           "permission_denied",
		Message:        err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	msg := fmt.Sprintf("%s with %s %v not found", resource, key, value)

	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		Err:            errors.New(msg),
		Code:           "not_found",
		Message:        msg,
	}
}

func ErrTooManyRequests() *Err {
	return &Err{
		HTTPStatusCode: http.StatusTooManyRequests,
		Code:           "too_many_requests",
		Message:        "too many requests, slow down",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		Err:            err,
		Code:           "internal_error",
		Message:        "something went wrong, please try again later",
	}
}
