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

// ContactsController serves the inbox list. Clients poll this on a
// timer, so the handler stays read-only.
type ContactsController struct {
	UC *usecase.ListContactsUseCase
}

func NewContactsController(repo repository.MessageRepository, directory identity.Directory) *ContactsController {
	return &ContactsController{UC: usecase.NewListContactsUseCase(repo, directory)}
}

func (h *ContactsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		contacts, err := h.UC.Execute(ctx, usecase.ListContactsInput{UserID: identity.UserID(c)})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, contacts)
	}
}
