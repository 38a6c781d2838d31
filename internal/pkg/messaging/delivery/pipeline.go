// Package delivery pushes persisted messages to live recipients and
// fans delivery/read receipts back to senders. The message store stays
// authoritative: every path here is best-effort and a miss (recipient
// offline, write failure) is normal control flow, never surfaced to the
// sender's request.
package delivery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	qport "github.com/MavisVermie/TBR3-sub000/internal/infrastructure/queue/port"
	"github.com/MavisVermie/TBR3-sub000/internal/infrastructure/realtime"
	"github.com/MavisVermie/TBR3-sub000/internal/metrics"
	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/event"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
)

// OfflineNotifyTaskType is the queue task enqueued when a push misses,
// so the platform's notification worker can reach the recipient out of
// band. The push itself is never queued or retried.
const OfflineNotifyTaskType = "messaging:offline_notify"

// OfflineNotifyPayload is the JSON payload for OfflineNotifyTaskType.
type OfflineNotifyPayload struct {
	MessageID  int64  `json:"messageId"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Preview    string `json:"preview"`
}

type Pipeline struct {
	presence realtime.Presence
	repo     repository.MessageRepository
	queue    qport.Client // nil when no queue backend is configured
	log      zerolog.Logger
}

func NewPipeline(presence realtime.Presence, repo repository.MessageRepository, queue qport.Client, log zerolog.Logger) *Pipeline {
	return &Pipeline{presence: presence, repo: repo, queue: queue, log: log}
}

// Dispatch attempts immediate push of a just-persisted message. On a
// successful push the message advances to delivered and the sender gets
// a status update. On a miss the message stays sent; it will surface
// through the history API, and an offline-notify task is enqueued.
func (p *Pipeline) Dispatch(ctx context.Context, msg messaging.Message) {
	payload, err := event.PrivateMessage(msg).Encode()
	if err != nil {
		p.log.Error().Err(err).Int64("message_id", msg.ID).Msg("encode private_message")
		return
	}

	if !p.presence.Notify(msg.ReceiverID, payload) {
		metrics.PushesMissed.Inc()
		p.log.Debug().
			Int64("message_id", msg.ID).
			Str("receiver_id", msg.ReceiverID).
			Msg("recipient not connected, message stays sent")
		p.enqueueOfflineNotify(ctx, msg)
		return
	}

	metrics.PushesDelivered.Inc()

	changed, err := p.repo.MarkDelivered(ctx, msg.ID)
	if err != nil {
		p.log.Error().Err(err).Int64("message_id", msg.ID).Msg("mark delivered")
		return
	}
	if changed {
		p.pushStatus(msg.SenderID, msg.ID, messaging.StatusDelivered)
	}
}

// NotifyRead implements usecase.ReadReceiptNotifier: one status update
// per affected message to the original sender's live connection.
func (p *Pipeline) NotifyRead(senderID string, messageIDs []int64) {
	metrics.ReadReceipts.Add(float64(len(messageIDs)))
	for _, id := range messageIDs {
		p.pushStatus(senderID, id, messaging.StatusRead)
	}
}

// RelayTyping forwards a typing signal if the target is connected and
// drops it silently otherwise; typing state is perishable.
func (p *Pipeline) RelayTyping(fromUserID, toUserID string, stop bool) {
	env := event.Typing(fromUserID, toUserID)
	if stop {
		env = event.StopTyping(fromUserID, toUserID)
	}
	payload, err := env.Encode()
	if err != nil {
		return
	}
	metrics.TypingEvents.Inc()
	_ = p.presence.Notify(toUserID, payload)
}

func (p *Pipeline) pushStatus(userID string, messageID int64, status messaging.DeliveryStatus) {
	payload, err := event.StatusUpdate(messageID, status).Encode()
	if err != nil {
		return
	}
	_ = p.presence.Notify(userID, payload)
}

func (p *Pipeline) enqueueOfflineNotify(ctx context.Context, msg messaging.Message) {
	if p.queue == nil {
		return
	}
	preview := msg.Content
	// rune-safe truncation; content is frequently Arabic
	if r := []rune(preview); len(r) > 80 {
		preview = string(r[:80])
	}
	body, err := json.Marshal(OfflineNotifyPayload{
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Preview:    preview,
	})
	if err != nil {
		return
	}
	_, err = p.queue.Enqueue(ctx, qport.Task{Type: OfflineNotifyTaskType, Payload: body}, qport.EnqueueOption{
		Queue:     "messaging",
		MaxRetry:  5,
		UniqueTTL: time.Minute,
	})
	if err != nil {
		p.log.Warn().Err(err).Int64("message_id", msg.ID).Msg("enqueue offline notify")
	}
}
