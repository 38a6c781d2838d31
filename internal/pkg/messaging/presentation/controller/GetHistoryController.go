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

// GetHistoryController serves one backward page of a conversation.
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(repo repository.MessageRepository) *GetHistoryController {
	return &GetHistoryController{UC: usecase.NewGetHistoryUseCase(repo)}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		otherUserID := c.Param("otherUserId")
		if otherUserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "otherUserId is required"})
			return
		}

		var before *time.Time
		if v := c.Query("before"); v != "" {
			ts, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "before must be an RFC 3339 timestamp"})
				return
			}
			before = &ts
		}

		userID := identity.UserID(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetHistoryInput{
			RequesterID: userID,
			UserID:      userID,
			OtherUserID: otherUserID,
			Before:      before,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, msgs)
	}
}
