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

// MarkReadController marks every unread message from the other user as
// read and reports which identifiers changed.
type MarkReadController struct {
	UC *usecase.MarkConversationReadUseCase
}

func NewMarkReadController(repo repository.MessageRepository, receipts usecase.ReadReceiptNotifier) *MarkReadController {
	return &MarkReadController{UC: usecase.NewMarkConversationReadUseCase(repo, receipts)}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		otherUserID := c.Param("otherUserId")
		if otherUserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "otherUserId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ids, err := h.UC.Execute(ctx, usecase.MarkConversationReadInput{
			ReaderID: identity.UserID(c),
			SenderID: otherUserID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"readMessageIds": ids,
		})
	}
}
