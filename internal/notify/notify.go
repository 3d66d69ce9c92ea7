// Package notify defines the notification intents the queue engine emits.
// Delivery is best-effort and happens outside the engine: intents are
// published to a broker and a worker turns them into email.
package notify

import "context"

type Kind string

const (
	KindJoined        Kind = "queue.joined"
	KindStatusChanged Kind = "queue.status_changed"
)

// Intent is one notification to one contact. Payload fields mirror what the
// customer-facing emails need; Position is only meaningful while the entry
// is still in the waiting room.
type Intent struct {
	Kind       Kind   `json:"kind"`
	Contact    string `json:"contact"`
	Name       string `json:"name"`
	Restaurant string `json:"restaurant"`
	Status     string `json:"status,omitempty"`
	Position   int    `json:"position,omitempty"`
	ETA        string `json:"eta,omitempty"`
	PartySize  int    `json:"party_size,omitempty"`
}

// Notifier publishes an intent. Implementations must not be relied on for
// delivery: the engine logs and swallows any error.
type Notifier interface {
	Notify(ctx context.Context, intent Intent) error
}
