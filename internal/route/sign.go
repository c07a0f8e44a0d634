package route

import (
	"github.com/SeakMengs/AutoSign/internal/controller"
	"github.com/SeakMengs/AutoSign/internal/middleware"
	"github.com/gin-gonic/gin"
)

// V1_Sign exposes the signer endpoints. No login, the token is the credential.
func V1_Sign(r *gin.RouterGroup, sc *controller.SigningController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/sign/:token")
	v1.Use(middleware.SignerRateLimiterMiddleware)
	{
		v1.GET("", sc.GetSigningView)
		v1.PUT("/fields/:fieldId", sc.RecordValue)
		v1.POST("/style", sc.ChooseSignatureStyle)
		v1.POST("/submit", sc.Submit)
		v1.GET("/pdf", sc.DownloadPdf)
	}
}
