package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/SeakMengs/AutoSign/internal/util"
	"github.com/gin-gonic/gin"
)

type IndexController struct {
	*baseController
}

func (ic IndexController) Index(ctx *gin.Context) {
	util.ResponseSuccess(ctx, gin.H{
		"message": "Welcome to the " + util.GetAppName() + " api",
	})
}

// Healthz reports whether the database answers.
func (ic IndexController) Healthz(ctx *gin.Context) {
	if ic.app.Repository == nil || ic.app.Repository.DB == nil {
		util.ResponseSuccess(ctx, gin.H{"status": "ok"})
		return
	}

	sqlDb, err := ic.app.Repository.DB.DB()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err = sqlDb.PingContext(pingCtx)
	}
	if err != nil {
		ic.app.Logger.Errorf("Health check failed: %v", err)
		util.ResponseFailed(ctx, http.StatusServiceUnavailable, "Database unavailable", util.GenerateErrorMessages(err, "database"), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"status": "ok"})
}
