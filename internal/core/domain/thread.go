package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RetentionWindow is the rolling cutoff beyond which threads are purged
// from the repository on every load and after every save.
const RetentionWindow = 30 * 24 * time.Hour

// MessageSender distinguishes the two sides of a conversation.
type MessageSender string

const (
	SenderUser   MessageSender = "user"
	SenderSystem MessageSender = "system"
)

// MessageStatus marks the lifecycle of an assistant message within a turn.
type MessageStatus string

const (
	StatusLoading MessageStatus = "loading"
	StatusSuccess MessageStatus = "success"
	StatusError   MessageStatus = "error"
)

// Message is a single chat entry. At most one loading placeholder exists
// per in-flight turn; it is replaced by id, never appended to, when the
// turn resolves.
type Message struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Sender    MessageSender `json:"sender"`
	Status    MessageStatus `json:"status,omitempty"`
	Role      string        `json:"role,omitempty"`
}

// HistoryRole maps the message sender onto the role field the chat
// backends expect: user stays user, everything else is assistant.
func (m Message) HistoryRole() string {
	if m.Sender == SenderUser {
		return "user"
	}
	return "assistant"
}

// ChatThread is a persisted conversation record. Both identifiers are
// required; the console historically matched threads sometimes by ID and
// sometimes by SessionID, so the gateway keeps them equal for threads it
// creates and treats ID as canonical. The lastMessage JSON casing is
// inherited from the stored layout and must not change.
type ChatThread struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Title       string    `json:"title"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   time.Time `json:"timestamp"`
	Messages    []Message `json:"messages"`
}

// Valid reports whether the thread is usable: a thread needs both a
// non-empty ID and a non-empty SessionID to seed a conversation.
func (t *ChatThread) Valid() bool {
	return t != nil && t.ID != "" && t.SessionID != ""
}

// Expired reports whether the thread falls outside the retention window
// relative to now.
func (t *ChatThread) Expired(now time.Time) bool {
	return !t.Timestamp.After(now.Add(-RetentionWindow))
}

// ProviderHint extracts the provider prefix from the session identifier
// (session ids are minted as "<provider>-<uuid>"). The second return is
// false when the prefix does not name a known provider.
func (t *ChatThread) ProviderHint() (CloudProvider, bool) {
	prefix, _, found := strings.Cut(t.SessionID, "-")
	if !found {
		return "", false
	}
	return ParseProvider(prefix)
}

// NewSessionID mints a session identifier carrying the provider prefix
// other code paths parse back out of it.
func NewSessionID(p CloudProvider) string {
	return string(p) + "-" + uuid.NewString()
}

// Truncate shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
