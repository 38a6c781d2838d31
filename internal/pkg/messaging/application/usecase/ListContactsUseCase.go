package usecase

import (
	"context"
	"fmt"

	"github.com/MavisVermie/TBR3-sub000/internal/pkg/identity"
	messaging "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/application/domain"
	repository "github.com/MavisVermie/TBR3-sub000/internal/pkg/messaging/persistence/repository/port"
	"github.com/MavisVermie/TBR3-sub000/pkg/apperrors"
)

// ListContactsInput wraps the inbox owner's identity.
type ListContactsInput struct {
	UserID string
}

// ListContactsUseCase builds the inbox list: one summary per partner,
// most recent conversation first, usernames resolved through the
// directory collaborator. Read-only; safe to call on a polling timer.
type ListContactsUseCase struct {
	Repo      repository.MessageRepository
	Directory identity.Directory
}

func NewListContactsUseCase(repo repository.MessageRepository, directory identity.Directory) *ListContactsUseCase {
	return &ListContactsUseCase{Repo: repo, Directory: directory}
}

func (uc *ListContactsUseCase) Execute(ctx context.Context, in ListContactsInput) ([]messaging.ContactSummary, error) {
	if in.UserID == "" {
		return nil, apperrors.InvalidArg("user id is required")
	}

	contacts, err := uc.Repo.ListContacts(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	for i := range contacts {
		contacts[i].Username = uc.resolveUsername(ctx, contacts[i].PartnerID)
	}
	if contacts == nil {
		contacts = []messaging.ContactSummary{}
	}
	return contacts, nil
}

// resolveUsername falls back to the raw ID when the directory cannot
// serve the lookup; a missing display name must not break the inbox.
func (uc *ListContactsUseCase) resolveUsername(ctx context.Context, partnerID string) string {
	if uc.Directory == nil {
		return partnerID
	}
	u, err := uc.Directory.GetUser(ctx, partnerID)
	if err != nil || u.Username == "" {
		return partnerID
	}
	return u.Username
}
