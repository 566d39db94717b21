package handler

import (
	"AssetVault/internal/dto"
	"AssetVault/utils"

	"github.com/gin-gonic/gin"
)

// Register creates a user account.
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, user)
}

// Login authenticates a user and returns a token.
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, user, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.LoginResponse{Token: token, User: user})
}

// Profile returns the caller's user record.
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), identity(c).UserID)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, user)
}
