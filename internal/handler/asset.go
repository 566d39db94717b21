package handler

import (
	"AssetVault/internal/apperr"
	"AssetVault/internal/dto"
	"AssetVault/internal/service"
	"AssetVault/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form boundaries and the small text fields.
const multipartOverhead = 64 << 10

// UploadAsset stores a file sent as multipart field "file".
func (h *Handler) UploadAsset(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadMaxBytes+multipartOverhead)

	var req dto.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Fail(c, apperr.Wrap(apperr.Validation, "file too large", err))
			return
		}
		badRequest(c, err)
		return
	}
	file, err := req.File.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	asset, err := h.assets.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:     identity(c).UserID,
		Filename:    req.File.Filename,
		ContentType: req.File.Header.Get("Content-Type"),
		Size:        req.File.Size,
		Body:        file,
		Tags:        req.Tags,
		Permissions: req.Permissions,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, asset)
}

// ListAssets returns the caller's assets, newest first.
func (h *Handler) ListAssets(c *gin.Context) {
	assets, err := h.assets.List(c.Request.Context(), identity(c).UserID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, assets)
}

// GetAsset returns one of the caller's assets with a download URL.
func (h *Handler) GetAsset(c *gin.Context) {
	var uri dto.FilenameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	asset, url, err := h.assets.Get(c.Request.Context(), uri.Filename, identity(c).UserID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.AssetResponse{Asset: asset, DownloadURL: url})
}

// DeleteAsset deletes one of the caller's assets. Other users' assets are reported as not found.
func (h *Handler) DeleteAsset(c *gin.Context) {
	h.deleteAsset(c, false)
}

func (h *Handler) deleteAsset(c *gin.Context, isAdmin bool) {
	var uri dto.FilenameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	asset, err := h.assets.Delete(c.Request.Context(), uri.Filename, identity(c).UserID, isAdmin)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.DeleteResponse{Message: "asset deleted", Asset: asset})
}

// AssetStats aggregates the caller's own assets.
func (h *Handler) AssetStats(c *gin.Context) {
	totals, err := h.stats.OwnerStats(c.Request.Context(), identity(c).UserID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, totals)
}
