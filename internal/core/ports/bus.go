package ports

import (
	"time"

	"github.com/aiforce/intelliops-console/internal/core/domain"
)

// Event names carried by the in-process notification bus. Delivery is
// synchronous and best-effort: no persistence, no replay.
type Event string

const (
	EventProviderChanged Event = "provider.changed"
	EventSessionExpired  Event = "session.expired"
	EventNewChat         Event = "chat.new"
)

// ProviderChanged is the payload for EventProviderChanged.
type ProviderChanged struct {
	ProfileID string
	Provider  domain.CloudProvider
}

// SessionExpired is the payload for EventSessionExpired. GracePeriod is
// the countdown shown to the user before any forced navigation.
type SessionExpired struct {
	ProfileID   string
	GracePeriod time.Duration
}

// NewChat is the payload for EventNewChat.
type NewChat struct {
	ProfileID string
	SessionID string
}

// Bus is a typed publish/subscribe channel shared process-wide. Any
// component may publish or subscribe; Unsubscribe functions are
// idempotent.
type Bus interface {
	Publish(event Event, payload any)
	Subscribe(event Event, fn func(payload any)) (unsubscribe func())
}
