package controller

import (
	"errors"
	"net/http"

	"github.com/SeakMengs/AutoSign/internal/service"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/SeakMengs/AutoSign/pkg/autosign"
	"github.com/gin-gonic/gin"
)

type FieldController struct {
	*baseController
}

func (fc FieldController) GetFields(ctx *gin.Context) {
	_, document, ok := fc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	fields, err := fc.app.Services.Layout.GetFields(ctx, document.ID)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"fields": fields,
	})
}

// ReplaceFields swaps the whole layout of a document.
func (fc FieldController) ReplaceFields(ctx *gin.Context) {
	type Request struct {
		Fields []autosign.Field `json:"fields" binding:"dive"`
	}
	var body Request

	user, document, ok := fc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err, "fields"), nil)
		return
	}

	fields, err := fc.app.Services.Layout.ReplaceFields(ctx, document.ID, user.Email, body.Fields)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"fields": fields,
	})
}

// FieldBuilder applies a batch of placement editor events.
func (fc FieldController) FieldBuilder(ctx *gin.Context) {
	type Request struct {
		Events []service.EditorEvent `json:"events" binding:"required,dive"`
	}
	var body Request

	user, document, ok := fc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to patch field builder", util.GenerateErrorMessages(err, "events"), nil)
		return
	}

	if len(body.Events) == 0 {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Failed to patch field builder", util.GenerateErrorMessages(errors.New("events is required"), "events"), nil)
		return
	}

	fields, err := fc.app.Services.Layout.ApplyEditorEvents(ctx, document.ID, user.Email, body.Events)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"fields": fields,
	})
}
