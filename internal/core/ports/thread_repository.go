package ports

import (
	"context"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// ThreadRepository is CRUD plus the 30-day retention policy over the
// locally persisted chat thread list. The repository never sorts;
// ordering is the caller's choice. A corrupt stored record degrades to an
// empty list instead of propagating.
type ThreadRepository interface {
	List(ctx context.Context, profileID string) ([]domain.ChatThread, error)
	Upsert(ctx context.Context, profileID string, thread domain.ChatThread) error
	Remove(ctx context.Context, profileID, threadID string) error
	RemoveAll(ctx context.Context, profileID string) error
}
