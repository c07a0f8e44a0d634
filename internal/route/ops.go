package route

import (
	"github.com/SeakMengs/AutoSign/internal/controller"
	"github.com/SeakMengs/AutoSign/internal/metrics"
	"github.com/gin-gonic/gin"
)

func Ops(r *gin.Engine, ic *controller.IndexController, m *metrics.Metrics) {
	r.GET("/", ic.Index)
	r.GET("/healthz", ic.Healthz)
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
