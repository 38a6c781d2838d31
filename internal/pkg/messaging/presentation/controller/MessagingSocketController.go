package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/MavisVermie/TBR3-sub000/internal/infrastructure/realtime"
	"github.com/MavisVermie/TBR3-sub000/internal/metrics"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/identity"
	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/delivery"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/event"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
)

const defaultReadTimeout = 60 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The bearer token authenticates the upgrade; cross-origin pages
		// without a token get nothing.
		return true
	},
}

// MessagingSocketController handles the websocket endpoint: presence
// registration, typing relay, viewing signals and per-message read
// intents. Message persistence stays on the REST path.
type MessagingSocketController struct {
	presence realtime.Presence
	pipeline *delivery.Pipeline
	repo     repository.MessageRepository
	log      zerolog.Logger

	inflightTimeout time.Duration
}

func NewMessagingSocketController(presence realtime.Presence, pipeline *delivery.Pipeline, repo repository.MessageRepository, log zerolog.Logger) *MessagingSocketController {
	return &MessagingSocketController{
		presence:        presence,
		pipeline:        pipeline,
		repo:            repo,
		log:             log,
		inflightTimeout: 5 * time.Second,
	}
}

// Handle upgrades the request and processes frames until the client
// disconnects. Registration is implicit: the authenticated upgrade is
// the registration.
func (ctl *MessagingSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()
		ctl.presence.Register(conn)
		metrics.LiveConnections.Inc()
		defer func() {
			ctl.presence.Deregister(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			metrics.LiveConnections.Dec()
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := event.Connected().Encode(); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.log.Debug().Err(err).Str("user_id", userID).Msg("websocket read ended")
				return
			}

			frame, err := event.Decode(data)
			if err != nil {
				ctl.replyError(conn, "bad_request", "invalid frame")
				continue
			}

			ctl.dispatch(c, conn, userID, frame)
		}
	}
}

func (ctl *MessagingSocketController) dispatch(c *gin.Context, conn *realtime.Connection, userID string, frame event.Envelope) {
	switch frame.Type {
	case event.TypeRegister:
		// Registration already happened on upgrade; acknowledge for
		// clients that still send it.
		if payload, err := event.Connected().Encode(); err == nil {
			_ = conn.Send(payload)
		}

	case event.TypeChatOpen:
		if frame.ChattingWith == "" {
			ctl.replyError(conn, "bad_request", "chattingWith is required")
			return
		}
		ctl.presence.SetViewing(userID, frame.ChattingWith)

	case event.TypeChatClose:
		ctl.presence.ClearViewing(userID)

	case event.TypeTyping:
		ctl.relayTyping(conn, userID, frame, false)

	case event.TypeStopTyping:
		ctl.relayTyping(conn, userID, frame, true)

	case event.TypeMessageRead:
		ctl.handleMessageRead(c, conn, userID, frame)

	case event.TypePrivateMessage:
		// Legacy fan-out trigger; the server pushes on the REST send
		// path already, so honoring it would double-deliver.
		ctl.log.Debug().Str("user_id", userID).Msg("ignoring client private_message frame")

	default:
		ctl.replyError(conn, "unsupported_type", "frame not accepted from clients")
	}
}

func (ctl *MessagingSocketController) relayTyping(conn *realtime.Connection, userID string, frame event.Envelope, stop bool) {
	if frame.ToUserID == "" {
		ctl.replyError(conn, "bad_request", "toUserId is required")
		return
	}
	if frame.ToUserID == userID {
		return
	}
	// The socket identity wins over whatever the frame claims.
	ctl.pipeline.RelayTyping(userID, frame.ToUserID, stop)
}

// handleMessageRead is the optimistic per-message read intent a client
// emits while viewing a conversation. The authoritative bulk path is
// PATCH /messages/:otherUserId/read.
func (ctl *MessagingSocketController) handleMessageRead(c *gin.Context, conn *realtime.Connection, userID string, frame event.Envelope) {
	if frame.MessageID == 0 {
		ctl.replyError(conn, "bad_request", "messageId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	senderID, changed, err := ctl.repo.MarkMessageRead(ctx, frame.MessageID, userID)
	if err != nil {
		ctl.log.Error().Err(err).Int64("message_id", frame.MessageID).Msg("mark message read")
		ctl.replyError(conn, "internal_error", "could not mark message read")
		return
	}
	if !changed {
		// already read, or not addressed to this reader; both are fine
		return
	}
	metrics.ReadReceipts.Inc()
	if payload, err := event.StatusUpdate(frame.MessageID, messaging.StatusRead).Encode(); err == nil {
		_ = ctl.presenceNotify(senderID, payload)
	}
}

func (ctl *MessagingSocketController) presenceNotify(userID string, payload []byte) bool {
	return ctl.presence.Notify(userID, payload)
}

func (ctl *MessagingSocketController) replyError(conn *realtime.Connection, code, message string) {
	if payload, err := event.Error(code, message).Encode(); err == nil {
		_ = conn.Send(payload)
	}
}
