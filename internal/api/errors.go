package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/taskflow/internal/service"
	"github.com/sandeepkv93/taskflow/internal/storage"
	"github.com/sandeepkv93/taskflow/internal/timer"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, timer.ErrInvalidTransition), errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
