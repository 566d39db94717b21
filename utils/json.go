package utils

import (
	"AssetVault/internal/apperr"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a success JSON response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 JSON response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Fail writes an error JSON response whose status follows the error's kind.
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("kind", string(kind)),
			slog.String("path", c.FullPath()),
			slog.String("err", err.Error()),
		)
	}
	c.JSON(status, gin.H{
		"error": gin.H{
			"kind":    kind,
			"message": apperr.Message(err),
		},
	})
}
