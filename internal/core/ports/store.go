package ports

import (
	"context"
	"errors"
)

// Record keys used within a profile namespace. The layout mirrors the
// browser storage the console previously used, one record kind per key.
const (
	KeyAuthToken        = "auth_token"
	KeyAuthUser         = "auth_user"
	KeyChatThreads      = "chat_threads"
	KeySelectedProvider = "selected_provider"
	KeySelectedThread   = "selected_thread"
	KeyFavoritePrompts  = "favorite_prompts"
	KeyCurrentSession   = "current_session_id"
)

// ErrNotFound is returned by ProfileStore.Get when no record exists under
// the key.
var ErrNotFound = errors.New("record not found")

// ProfileStore is a per-browser-profile key-value store. Values are raw
// JSON; callers own (de)serialization and must tolerate corrupt records.
// Multiple services mutate the store without a locking discipline; the
// consistency model is last-write-wins.
type ProfileStore interface {
	Get(ctx context.Context, profileID, key string) ([]byte, error)
	Set(ctx context.Context, profileID, key string, value []byte) error
	Delete(ctx context.Context, profileID, key string) error
}
