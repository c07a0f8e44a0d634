package controller

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/AutoSign/internal/service"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"github.com/gin-gonic/gin"
)

// SigningController serves the public signer pages. The token in the path is
// the only credential.
type SigningController struct {
	*baseController
}

func (sc SigningController) GetSigningView(ctx *gin.Context) {
	view, err := sc.app.Services.Signing.FieldsVisibleTo(ctx, ctx.Param("token"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, view)
}

func (sc SigningController) RecordValue(ctx *gin.Context) {
	type Request struct {
		Value any `json:"value"`
	}
	var body Request

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err, "value"), nil)
		return
	}
	if body.Value == nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(errors.New("value is required"), "value"), nil)
		return
	}

	completion, err := sc.app.Services.Signing.RecordValue(ctx, ctx.Param("token"), ctx.Param("fieldId"), body.Value)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"completion": completion,
	})
}

func (sc SigningController) ChooseSignatureStyle(ctx *gin.Context) {
	var body autosign.SignatureStyle

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	view, err := sc.app.Services.Signing.ChooseSignatureStyle(ctx, ctx.Param("token"), body)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, view)
}

func (sc SigningController) Submit(ctx *gin.Context) {
	type Request struct {
		Values []service.SubmittedValue `json:"values" binding:"dive"`
	}
	var body Request

	// an empty body submits the stored values as they are
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err, "values"), nil)
			return
		}
	}

	result, err := sc.app.Services.Signing.Submit(ctx, ctx.Param("token"), body.Values)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, result)
}

func (sc SigningController) DownloadPdf(ctx *gin.Context) {
	document, err := sc.app.Services.Signing.DocumentFor(ctx, ctx.Param("token"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	streamPdf(ctx, sc.baseController, document)
}
