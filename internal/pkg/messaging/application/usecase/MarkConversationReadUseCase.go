package usecase

import (
	"context"
	"fmt"

	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
)

// ReadReceiptNotifier pushes read receipts to the original sender's
// live connection so their UI updates without polling. Delivery is
// best-effort; a miss is normal.
type ReadReceiptNotifier interface {
	NotifyRead(senderID string, messageIDs []int64)
}

// MarkConversationReadInput: ReaderID (the authenticated caller) has
// read everything SenderID sent them.
type MarkConversationReadInput struct {
	ReaderID string
	SenderID string
}

// MarkConversationReadUseCase flips the whole unread slice of a
// conversation atomically and fans the affected IDs back to the sender.
type MarkConversationReadUseCase struct {
	Repo     repository.MessageRepository
	Receipts ReadReceiptNotifier
}

func NewMarkConversationReadUseCase(repo repository.MessageRepository, receipts ReadReceiptNotifier) *MarkConversationReadUseCase {
	return &MarkConversationReadUseCase{Repo: repo, Receipts: receipts}
}

func (uc *MarkConversationReadUseCase) Execute(ctx context.Context, in MarkConversationReadInput) ([]int64, error) {
	if in.ReaderID == "" || in.SenderID == "" {
		return nil, apperrors.InvalidArg("reader and sender ids are required")
	}
	if in.ReaderID == in.SenderID {
		return nil, apperrors.InvalidArg("cannot mark own messages as read")
	}

	ids, err := uc.Repo.MarkRead(ctx, in.ReaderID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if len(ids) > 0 && uc.Receipts != nil {
		uc.Receipts.NotifyRead(in.SenderID, ids)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
