package usecase

import (
	"context"
	"fmt"

	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
)

// CountUnreadInput wraps the badge owner's identity.
type CountUnreadInput struct {
	UserID string
}

// CountUnreadUseCase returns the aggregate unread total across all
// partners, consumed by navigation badges.
type CountUnreadUseCase struct {
	Repo repository.MessageRepository
}

func NewCountUnreadUseCase(repo repository.MessageRepository) *CountUnreadUseCase {
	return &CountUnreadUseCase{Repo: repo}
}

func (uc *CountUnreadUseCase) Execute(ctx context.Context, in CountUnreadInput) (int, error) {
	if in.UserID == "" {
		return 0, apperrors.InvalidArg("user id is required")
	}
	count, err := uc.Repo.CountUnread(ctx, in.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, nil
}
