package router

import (
	"AssetVault/internal/handler"
	"AssetVault/internal/logging"
	"AssetVault/model"
	"AssetVault/utils"
	"log/slog"

	"github.com/gin-gonic/gin"
)

type Options struct {
	Tokens       *utils.TokenManager
	Logger       *slog.Logger
	LoginLimiter *utils.IPRateLimiter
	AllowOrigins []string
	Health       map[string]handler.Pinger
}

// InitRouter builds API routes.
func InitRouter(h *handler.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(logging.GinMiddleware(opts.Logger))
	}
	r.Use(utils.CORSMiddleware(opts.AllowOrigins))

	r.GET("/healthz", handler.Health(opts.Health))

	authGroup := r.Group("/auth")
	if opts.LoginLimiter != nil {
		authGroup.Use(opts.LoginLimiter.Middleware())
	}
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	auth := r.Group("")
	auth.Use(utils.AuthMiddleware(opts.Tokens))
	{
		auth.GET("/profile", h.Profile)

		assets := auth.Group("/assets")
		{
			assets.POST("/upload", h.UploadAsset)
			assets.GET("", h.ListAssets)
			assets.GET("/stats", h.AssetStats)
			assets.GET("/:filename", h.GetAsset)
			assets.DELETE("/:filename", h.DeleteAsset)
		}

		admin := auth.Group("/admin")
		admin.Use(utils.RequireRoles(model.RoleAdmin))
		{
			admin.GET("/users", h.AdminListUsers)
			admin.GET("/assets", h.AdminListAssets)
			admin.DELETE("/assets/:filename", h.AdminDeleteAsset)
			admin.GET("/stats/users", h.AdminUserStats)
			admin.GET("/stats/assets", h.AdminAssetStats)
			admin.GET("/stats/storage", h.AdminStorageStats)
			admin.GET("/stats/visibility", h.AdminVisibilityStats)
		}
	}
	return r
}
