package offgate

import (
	"context"
	"encoding/json"
)

// PushPayload is the JSON shape carried by a push message. Every field is
// optional; missing title and url fall back to app defaults.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

const (
	ActionOpen    = "open"
	ActionDismiss = "dismiss"
)

type NotificationAction struct {
	Action string
	Title  string
}

// Notification is the rendered system notification the host displays.
type Notification struct {
	Title   string
	Body    string
	Icon    string
	Badge   string
	URL     string
	Actions []NotificationAction
}

// Notifier displays system notifications. Supplied by the embedding host.
type Notifier interface {
	Show(ctx context.Context, n Notification) error
}

// Window is an open client surface that can be brought to the front.
type Window interface {
	Focus(ctx context.Context) error
}

// WindowList enumerates and opens client windows.
type WindowList interface {
	Windows(ctx context.Context) ([]Window, error)
	Open(ctx context.Context, url string) error
}

// Push builds and shows a notification for a push payload. An absent payload
// is ignored entirely; malformed JSON is dropped without surfacing an error.
func (g *gateway) Push(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	var p PushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		g.log.Debug("ignoring malformed push payload", Fields{"err": err})
		return nil
	}
	if g.notifier == nil {
		return nil
	}
	n := Notification{
		Title: coalesce(p.Title, g.appTitle),
		Body:  p.Body,
		Icon:  DefaultNotificationIcon,
		Badge: DefaultNotificationBadge,
		URL:   coalesce(p.URL, "/"),
		Actions: []NotificationAction{
			{Action: ActionOpen, Title: "Open"},
			{Action: ActionDismiss, Title: "Dismiss"},
		},
	}
	return g.notifier.Show(ctx, n)
}

// NotificationClick focuses an already-open window when one exists, otherwise
// opens a new one at the notification's URL. Dismiss does nothing further.
func (g *gateway) NotificationClick(ctx context.Context, action, url string) error {
	if action == ActionDismiss {
		return nil
	}
	if g.windows == nil {
		return nil
	}
	if url == "" {
		url = "/"
	}
	ws, err := g.windows.Windows(ctx)
	if err == nil && len(ws) > 0 {
		return ws[0].Focus(ctx)
	}
	return g.windows.Open(ctx, url)
}

// Sync is the registered hook for deferred background work. Nothing retries
// today; the hook only records that a sync was requested.
func (g *gateway) Sync(_ context.Context, tag string) error {
	g.hooks.SyncRequested(tag)
	g.log.Debug("sync requested", Fields{"tag": tag})
	return nil
}
