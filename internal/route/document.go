package route

import (
	"github.com/SeakMengs/AutoSign/internal/controller"
	"github.com/SeakMengs/AutoSign/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Documents(r *gin.RouterGroup, dc *controller.DocumentController, fc *controller.FieldController, sc *controller.SessionController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/documents")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", dc.Upload)
		v1.GET("", dc.ListDocuments)
		v1.GET("/:documentId", dc.GetDocument)
		v1.GET("/:documentId/pdf", dc.DownloadPdf)

		v1.GET("/:documentId/fields", fc.GetFields)
		v1.POST("/:documentId/fields", fc.ReplaceFields)
		v1.PATCH("/:documentId/fields/builder", fc.FieldBuilder)

		v1.POST("/:documentId/sessions", sc.IssueSessions)
		v1.GET("/:documentId/status", sc.GetStatus)
		v1.GET("/:documentId/activity", sc.GetActivity)
		v1.GET("/:documentId/summary", sc.DownloadSummary)
	}
}
