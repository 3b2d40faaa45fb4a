package offgate

import (
	"context"
	"fmt"
	"net/http"
)

// EventKind names a host-dispatched event.
type EventKind string

const (
	EventInstall           EventKind = "install"
	EventActivate          EventKind = "activate"
	EventFetch             EventKind = "fetch"
	EventMessage           EventKind = "message"
	EventPush              EventKind = "push"
	EventNotificationClick EventKind = "notificationclick"
	EventSync              EventKind = "sync"
)

// Event is the payload handed to Dispatch. Only the fields relevant to the
// kind are read; only fetch produces a response.
type Event struct {
	Kind    EventKind
	Request *http.Request // fetch
	Message Control       // message
	Data    []byte        // push
	Action  string        // notificationclick
	URL     string        // notificationclick
	Tag     string        // sync
}

type handler func(ctx context.Context, ev Event) (*http.Response, error)

func (g *gateway) eventHandlers() map[EventKind]handler {
	return map[EventKind]handler{
		EventInstall: func(ctx context.Context, _ Event) (*http.Response, error) {
			return nil, g.Install(ctx)
		},
		EventActivate: func(ctx context.Context, _ Event) (*http.Response, error) {
			return nil, g.Activate(ctx)
		},
		EventFetch: func(ctx context.Context, ev Event) (*http.Response, error) {
			if ev.Request == nil {
				return nil, fmt.Errorf("offgate: fetch event without request")
			}
			return g.RoundTrip(ev.Request.WithContext(ctx))
		},
		EventMessage: func(ctx context.Context, ev Event) (*http.Response, error) {
			return nil, g.Control(ctx, ev.Message)
		},
		EventPush: func(ctx context.Context, ev Event) (*http.Response, error) {
			return nil, g.Push(ctx, ev.Data)
		},
		EventNotificationClick: func(ctx context.Context, ev Event) (*http.Response, error) {
			return nil, g.NotificationClick(ctx, ev.Action, ev.URL)
		},
		EventSync: func(ctx context.Context, ev Event) (*http.Response, error) {
			return nil, g.Sync(ctx, ev.Tag)
		},
	}
}

// Dispatch routes a host event to its handler. Unknown kinds are an error;
// the host owns the event vocabulary and a typo should surface early.
func (g *gateway) Dispatch(ctx context.Context, ev Event) (*http.Response, error) {
	h, ok := g.handlers[ev.Kind]
	if !ok {
		return nil, fmt.Errorf("offgate: unknown event kind %q", ev.Kind)
	}
	return h(ctx, ev)
}
