package handler

import (
	"AssetVault/internal/dto"
	"AssetVault/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, users)
}

func (h *Handler) AdminListAssets(c *gin.Context) {
	assets, err := h.assets.ListAll(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, assets)
}

// AdminDeleteAsset deletes the newest asset with the filename, whoever owns it.
func (h *Handler) AdminDeleteAsset(c *gin.Context) {
	h.deleteAsset(c, true)
}

func (h *Handler) AdminUserStats(c *gin.Context) {
	total, err := h.stats.UserCount(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.UserCountResponse{TotalUsers: total})
}

func (h *Handler) AdminAssetStats(c *gin.Context) {
	total, err := h.stats.AssetCount(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.AssetCountResponse{TotalAssets: total})
}

func (h *Handler) AdminStorageStats(c *gin.Context) {
	usage, err := h.stats.StorageByOwner(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, usage)
}

func (h *Handler) AdminVisibilityStats(c *gin.Context) {
	public, private, err := h.stats.Visibility(c.Request.Context())
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.VisibilityResponse{PublicFiles: public, PrivateFiles: private})
}
