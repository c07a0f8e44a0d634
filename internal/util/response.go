package util

import (
	"net/http"

	"github.com/SeakMengs/AutoSign/internal/apperror"
	constant "github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func BuildResponseSuccess(data any) Response {
	return Response{
		Success: true,
		Message: constant.REQUEST_SUCCESSFUL,
		Data:    data,
	}
}

func ResponseSuccess(ctx *gin.Context, data any) {
	if data == nil {
		data = gin.H{}
	}

	ctx.JSON(http.StatusOK, BuildResponseSuccess(data))
	ctx.Abort()
}

func BuildResponseFailed(message string, err any, data any) Response {
	if message == "" {
		message = constant.REQUEST_UNSUCCESSFUL
	}

	// Sometimes we define err type any but err type is error
	if e, ok := err.(error); ok {
		err = GenerateErrorMessages(e)
	}

	if err == nil {
		err = gin.H{}
	}

	if data == nil {
		data = gin.H{}
	}

	return Response{
		Success: false,
		Message: message,
		Errors:  err,
		Data:    data,
	}
}

func ResponseFailed(ctx *gin.Context, code int, message string, err any, data any) {
	ctx.JSON(code, BuildResponseFailed(message, err, data))
	ctx.Abort()
}

// ResponseError writes a failed response for a domain error. Unknown errors
// are reported as internal without leaking their message.
func ResponseError(ctx *gin.Context, err error) {
	appErr := apperror.FromError(err)

	var errs any = []ApiError{{Field: appErr.Code, Message: appErr.Message}}
	if appErr.Details != nil {
		errs = appErr.Details
	}

	message := appErr.Message
	if appErr.Code == apperror.ErrInternal.Code {
		message = apperror.ErrInternal.Message
		errs = []ApiError{{Field: appErr.Code, Message: message}}
	}

	ctx.JSON(appErr.Status, Response{
		Success: false,
		Message: message,
		Errors:  errs,
		Data:    gin.H{"code": appErr.Code},
	})
	ctx.Abort()
}
