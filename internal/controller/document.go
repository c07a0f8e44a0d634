package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SeakMengs/AutoSign/internal/constant"
	"github.com/SeakMengs/AutoSign/internal/model"
	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/gin-gonic/gin"
)

type DocumentController struct {
	*baseController
}

const (
	ErrPdfFileRequired = "pdf file is required"
	ErrPdfFileTooLarge = "pdf file must not be larger than %d MB"
)

func (dc DocumentController) Upload(ctx *gin.Context) {
	type Request struct {
		Title string `json:"title" form:"title" binding:"omitempty,cmax=200"`
	}
	var body Request

	user, err := dc.getAuthUser(ctx)
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	err = ctx.ShouldBind(&body)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "No pdf file uploaded", util.GenerateErrorMessages(errors.New(ErrPdfFileRequired), "file"), nil)
		return
	}

	if file.Size > constant.MAX_PDF_UPLOAD_SIZE {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid pdf file", util.GenerateErrorMessages(fmt.Errorf(ErrPdfFileTooLarge, constant.MAX_PDF_UPLOAD_SIZE>>20), "file"), nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		dc.app.Logger.Error(err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to open uploaded file", util.GenerateErrorMessages(err), nil)
		return
	}
	defer src.Close()

	document, err := dc.app.Services.Document.Upload(ctx, user.ID, body.Title, file.Filename, src, file.Size)
	if err != nil {
		dc.app.Logger.Errorf("Failed to upload document: %v", err)
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"document": document,
	})
}

func (dc DocumentController) ListDocuments(ctx *gin.Context) {
	user, err := dc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	documents, err := dc.app.Services.Document.ListForOwner(ctx, user.ID)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"documents": documents,
	})
}

func (dc DocumentController) GetDocument(ctx *gin.Context) {
	_, document, ok := dc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"document": document,
	})
}

func (dc DocumentController) DownloadPdf(ctx *gin.Context) {
	_, document, ok := dc.getOwnedDocument(ctx)
	if !ok {
		return
	}

	streamPdf(ctx, dc.baseController, document)
}

func streamPdf(ctx *gin.Context, bc *baseController, document *model.Document) {
	rc, err := bc.app.Services.Document.OpenPdf(ctx, document)
	if err != nil {
		bc.app.Logger.Errorf("Failed to open pdf of document %s: %v", document.ID, err)
		util.ResponseError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.DataFromReader(http.StatusOK, document.PdfFile.Size, "application/pdf", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`inline; filename="%s"`, document.PdfFile.ToBaseFilename()),
	})
}
