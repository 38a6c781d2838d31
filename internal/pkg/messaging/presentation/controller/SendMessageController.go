package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MavisVermie/TBR3-sub000/internal/metrics"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/identity"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/usecase"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/delivery"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
)

// SendMessageController handles the send-message endpoint only (one controller per endpoint)
type SendMessageController struct {
	UC       *usecase.SendMessageUseCase
	Pipeline *delivery.Pipeline
}

func NewSendMessageController(repo repository.MessageRepository, pipeline *delivery.Pipeline) *SendMessageController {
	return &SendMessageController{
		UC:       usecase.NewSendMessageUseCase(repo),
		Pipeline: pipeline,
	}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Content    string `json:"content"`
}

// Handle persists the message, then hands it to the delivery pipeline.
// The response reflects only persistence: a recipient without a live
// connection is not an error.
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			SenderID:   identity.UserID(c),
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		metrics.MessagesSent.Inc()
		h.Pipeline.Dispatch(ctx, *msg)

		c.JSON(http.StatusCreated, msg)
	}
}

// respondError maps application errors to HTTP responses, shared by the
// messaging controllers.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrPersistence) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "temporary storage failure"})
		return
	}
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}
