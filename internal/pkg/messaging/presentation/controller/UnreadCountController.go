package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MavisVermie/TBR3-sub000/internal/pkg/identity"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/usecase"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
)

// UnreadCountController serves the navigation badge total.
type UnreadCountController struct {
	UC *usecase.CountUnreadUseCase
}

func NewUnreadCountController(repo repository.MessageRepository) *UnreadCountController {
	return &UnreadCountController{UC: usecase.NewCountUnreadUseCase(repo)}
}

func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		count, err := h.UC.Execute(ctx, usecase.CountUnreadInput{UserID: identity.UserID(c)})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"unreadCount": count})
	}
}
