// events.go defines the event types for extension notifications.
//
// Events are fire-and-forget notifications, not approval requests.
// Extensions cannot block or veto operations via events; they observe
// after the fact.

package extension

import (
	"log/slog"
	"time"

	"github.com/jpl-au/pkgpal/internal/diff"
	"github.com/jpl-au/pkgpal/internal/manifest"
)

// EventType identifies the kind of event.
type EventType string

const (
	EventManifestChange EventType = "manifest:change"
	EventCommandRun     EventType = "command:run"
)

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
	EventTarget() string
}

// ManifestChangeEvent is fired after the manifest snapshot changes.
type ManifestChangeEvent struct {
	Name    string // manifest file name
	Existed bool
	Exists  bool
	Err     error // parse error of the new snapshot, if any

	// Previous and Current are nil when the file did not exist.
	Previous *manifest.Manifest
	Current  *manifest.Manifest
	Changes  []diff.Change
}

func (e ManifestChangeEvent) EventType() EventType { return EventManifestChange }
func (e ManifestChangeEvent) EventTarget() string  { return e.Name }

// CommandRunEvent is fired after a palette leaf has executed.
type CommandRunEvent struct {
	RunID    string
	Label    string
	Command  string
	Manager  string
	Started  time.Time
	Duration time.Duration
	Err      error
}

func (e CommandRunEvent) EventType() EventType { return EventCommandRun }
func (e CommandRunEvent) EventTarget() string  { return e.Label }

// EventHandler is implemented by extensions that want to receive events.
type EventHandler interface {
	HandleEvent(ctx Context, e Event) error
}

// Fire notifies every registered EventHandler. Handler errors are logged
// and otherwise ignored.
func Fire(ctx Context, e Event) {
	if ctx == nil {
		return
	}
	for _, ext := range All() {
		h, ok := ext.(EventHandler)
		if !ok {
			continue
		}
		if err := h.HandleEvent(ctx, e); err != nil {
			slog.Warn("event handler failed",
				"ext", ext.Name(),
				"event", string(e.EventType()),
				"err", err)
		}
	}
}
