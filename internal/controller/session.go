package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/SeakMengs/AutoSign/internal/service"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/gin-gonic/gin"
)

type SessionController struct {
	*baseController
}

// IssueSessions sends the document to its recipients. Plaintext tokens are
// only ever part of this response.
func (sc SessionController) IssueSessions(ctx *gin.Context) {
	type Request struct {
		Recipients []service.Recipient `json:"recipients" binding:"required,min=1,dive"`
	}
	var body Request

	user, document, ok := sc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	issued, err := sc.app.Services.Issuer.IssueSessions(ctx, document.ID, user.Email, body.Recipients)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"sessions": issued,
	})
}

func (sc SessionController) GetStatus(ctx *gin.Context) {
	_, document, ok := sc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	status, err := sc.app.Services.Document.Status(ctx, document.ID)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"status": status,
	})
}

func (sc SessionController) GetActivity(ctx *gin.Context) {
	_, document, ok := sc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	logs, err := sc.app.Services.Document.Activity(ctx, document.ID)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"activity": logs,
	})
}

func (sc SessionController) DownloadSummary(ctx *gin.Context) {
	_, document, ok := sc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	buf := &bytes.Buffer{}
	if err := sc.app.Services.Document.WriteSummary(ctx, buf, document); err != nil {
		sc.app.Logger.Errorf("Failed to render summary of document %s: %v", document.ID, err)
		util.ResponseError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-summary.pdf"`, document.ID))
	ctx.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
