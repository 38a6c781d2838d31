package task

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	qport "github.com/MavisVermie/TBR3-sub000/internal/infrastructure/queue/port"
	"github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/delivery"
)

// Notifier is the out-of-band notification collaborator (the platform's
// email service). Implementations must be idempotent; the queue retries
// failed handlers.
type Notifier interface {
	NotifyOfflineMessage(ctx context.Context, receiverID, senderID, preview string) error
}

// LogNotifier is the default Notifier when no email collaborator is
// wired: it records the intent and succeeds.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) NotifyOfflineMessage(_ context.Context, receiverID, senderID, preview string) error {
	n.Log.Info().
		Str("receiver_id", receiverID).
		Str("sender_id", senderID).
		Msg("offline message notification (no notifier configured)")
	return nil
}

// RegisterOfflineNotifyTask binds the offline-notify handler to the
// worker server.
func RegisterOfflineNotifyTask(srv qport.Server, notifier Notifier) {
	srv.Register(delivery.OfflineNotifyTaskType, func(ctx context.Context, t qport.Task) error {
		var p delivery.OfflineNotifyPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot help
			return err
		}
		return notifier.NotifyOfflineMessage(ctx, p.ReceiverID, p.SenderID, p.Preview)
	})
}
