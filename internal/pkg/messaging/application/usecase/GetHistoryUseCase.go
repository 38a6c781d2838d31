package usecase

import (
	"context"
	"fmt"
	"time"

	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
)

// DefaultPageSize is the history page length. A full page signals the
// client there may be older messages; a short page means the top was
// reached.
const DefaultPageSize = 20

var ErrNotConversationMember = apperrors.Forbidden("requester is not part of this conversation")

// GetHistoryInput identifies one page of a conversation. RequesterID is
// the authenticated caller and must be one side of the pair.
type GetHistoryInput struct {
	RequesterID string
	UserID      string
	OtherUserID string
	Before      *time.Time
	Limit       int
}

// GetHistoryUseCase pages backwards through a conversation. The store
// fetches newest-first; the response contract is chronological
// ascending, so the page is reversed before returning.
type GetHistoryUseCase struct {
	Repo repository.MessageRepository
}

func NewGetHistoryUseCase(repo repository.MessageRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) ([]messaging.Message, error) {
	if in.UserID == "" || in.OtherUserID == "" {
		return nil, apperrors.InvalidArg("both conversation user ids are required")
	}
	if in.RequesterID != in.UserID && in.RequesterID != in.OtherUserID {
		return nil, ErrNotConversationMember
	}

	limit := in.Limit
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}

	msgs, err := uc.Repo.GetConversation(ctx, in.UserID, in.OtherUserID, in.Before, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// newest-first -> oldest-first
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	if msgs == nil {
		msgs = []messaging.Message{}
	}
	return msgs, nil
}
