package usecase

import (
	"context"
	"fmt"

	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
)

// SendMessageInput carries the data needed to persist a new message.
// SenderID is always the authenticated caller.
type SendMessageInput struct {
	SenderID   string
	ReceiverID string
	Content    string
}

// SendMessageUseCase validates and persists a message. Persistence is
// the durability point: push delivery happens afterwards and never
// affects the outcome of this use case.
type SendMessageUseCase struct {
	Repo repository.MessageRepository
}

func NewSendMessageUseCase(repo repository.MessageRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*messaging.Message, error) {
	msg, err := messaging.NewMessage(in.SenderID, in.ReceiverID, in.Content)
	if err != nil {
		return nil, err
	}

	stored, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &stored, nil
}
