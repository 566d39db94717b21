package handler

import (
	"AssetVault/internal/apperr"
	"AssetVault/internal/service"
	"AssetVault/utils"

	"github.com/gin-gonic/gin"
)

// Handler serves the HTTP API on top of the services.
type Handler struct {
	users          *service.UserService
	assets         *service.AssetService
	stats          *service.StatsService
	uploadMaxBytes int64
}

func New(users *service.UserService, assets *service.AssetService, stats *service.StatsService, uploadMaxBytes int64) *Handler {
	return &Handler{
		users:          users,
		assets:         assets,
		stats:          stats,
		uploadMaxBytes: uploadMaxBytes,
	}
}

func badRequest(c *gin.Context, err error) {
	utils.Fail(c, apperr.Wrap(apperr.Validation, "invalid request: "+err.Error(), err))
}

// identity returns the caller; AuthMiddleware guarantees it on authenticated routes.
func identity(c *gin.Context) utils.Identity {
	id, _ := utils.CurrentIdentity(c)
	return id
}
