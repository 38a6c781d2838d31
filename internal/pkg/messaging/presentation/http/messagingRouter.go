package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/MavisVermie/TBR3-sub000/internal/infrastructure/realtime"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/identity"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/delivery"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/adapter"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/presentation/controller"
)

// RegisterRoutes registers messaging endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
// Every route requires a bearer token; the websocket upgrade accepts the
// token as a query parameter because browsers cannot set headers there.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, presence realtime.Presence, pipeline *delivery.Pipeline, directory identity.Directory, verifier identity.TokenVerifier, log zerolog.Logger) {
	repo := adapter.NewPgMessageRepository(pool)

	sendCtl := controller.NewSendMessageController(repo, pipeline)
	historyCtl := controller.NewGetHistoryController(repo)
	markReadCtl := controller.NewMarkReadController(repo, pipeline)
	contactsCtl := controller.NewContactsController(repo, directory)
	unreadCtl := controller.NewUnreadCountController(repo)
	socketCtl := controller.NewMessagingSocketController(presence, pipeline, repo, log)

	auth := g.Group("", identity.RequireAuth(verifier))

	// POST /api/v1/messages -> send a message
	auth.POST("/messages", sendCtl.Handle())

	// GET /api/v1/messages/contacts -> conversation partners with unread counts
	auth.GET("/messages/contacts", contactsCtl.Handle())

	// GET /api/v1/messages/unread/count -> total unread across conversations
	auth.GET("/messages/unread/count", unreadCtl.Handle())

	// GET /api/v1/messages/:otherUserId -> paginated conversation history
	auth.GET("/messages/:otherUserId", historyCtl.Handle())

	// PATCH /api/v1/messages/:otherUserId/read -> mark a conversation read
	auth.PATCH("/messages/:otherUserId/read", markReadCtl.Handle())

	// GET /api/v1/ws -> websocket endpoint for presence, typing and pushes
	auth.GET("/ws", socketCtl.Handle())
}
