package offgate

import (
	"context"
	"net/http"
	"time"

	c "github.com/zhugt2019/offgate/codec"
	mf "github.com/zhugt2019/offgate/manifest"
	st "github.com/zhugt2019/offgate/store"
)

// Stored is an immutable snapshot of a prior network response. It is what a
// generation maps a request identity to.
type Stored struct {
	Status int         `json:"status"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`
}

// Gateway intercepts outgoing requests and answers them from a durable cache
// or from the network, according to a per-URL-class policy. It is used as
// the Transport of an http.Client or a reverse proxy.
type Gateway interface {
	http.RoundTripper

	// Install populates the static generation from the precache list.
	// Strict by default: any failed fetch aborts and rolls back.
	Install(ctx context.Context) error
	// Activate purges every stale generation under the namespace and starts
	// serving as the current gateway.
	Activate(ctx context.Context) error
	State() State

	// Control handles an out-of-band command from the hosting application.
	Control(ctx context.Context, msg Control) error
	// Push handles a push payload; absent or malformed payloads are ignored.
	Push(ctx context.Context, payload []byte) error
	// NotificationClick reacts to a notification action chosen by the user.
	NotificationClick(ctx context.Context, action, url string) error
	// Sync is a registered no-op hook reserved for deferred-retry logic.
	Sync(ctx context.Context, tag string) error
	// Dispatch routes a host event to the matching handler above.
	Dispatch(ctx context.Context, ev Event) (*http.Response, error)

	// StaticGeneration and RuntimeGeneration name the two current generations.
	StaticGeneration() string
	RuntimeGeneration() string

	Close(ctx context.Context) error
}

// Defaults applied by New when the corresponding option is zero. The precache
// list enumerates the client shell the way the build ships it.
var (
	DefaultPrecache = []string{
		"/",
		"/index.html",
		"/offline.html",
		"/css/main.css",
		"/js/app.js",
		"/js/api.js",
		"/js/audio.js",
		"/js/chat.js",
		"/js/wordbook.js",
		"/js/translate.js",
		"/manifest.json",
		"/icons/icon-192.png",
		"/icons/icon-512.png",
	}
	DefaultNetworkFirstPrefixes = []string{"/api/", "/audio_cache/"}
)

const (
	DefaultOfflinePath       = "/offline.html"
	DefaultMaxStoredBody     = 4 << 20
	DefaultAppTitle          = "Appen Dictionary"
	DefaultNotificationIcon  = "/icons/icon-192.png"
	DefaultNotificationBadge = "/icons/badge-72.png"
)

// Options tune the gateway. Namespace, Version, BaseURL and Store are
// required; everything else has sensible defaults.
type Options struct {
	// Required
	Namespace string // app namespace, e.g. "appen-dictionary"; prefixes every generation name
	Version   string // build tag; bumping it starts a fresh static generation
	BaseURL   string // absolute origin that precache paths resolve against
	Store     st.Store

	Precache             []string          // nil => DefaultPrecache
	OfflinePath          string            // "" => DefaultOfflinePath
	NetworkFirstPrefixes []string          // nil => DefaultNetworkFirstPrefixes
	Manifest             mf.Manifest       // nil => LocalManifest (in-process)
	Codec                c.Codec[Stored]   // nil => codec.JSON[Stored]
	Transport            http.RoundTripper // nil => http.DefaultTransport
	Logger               Logger            // nil => NopLogger
	Hooks                Hooks             // nil => NopHooks
	MaxStoredBody        int               // cap on runtime-cached bodies; 0 => DefaultMaxStoredBody, <0 => unlimited
	MaxAge               time.Duration     // runtime entry freshness window; 0 => entries never age out
	BestEffortInstall    bool              // log precache failures instead of aborting install
	AppTitle             string            // notification fallback title; "" => DefaultAppTitle
	Notifier             Notifier          // nil => push notifications are dropped
	Windows              WindowList        // nil => notification clicks are no-ops
	Disabled             bool              // pass every request straight through
}

func New(opts Options) (Gateway, error) {
	return newGateway(opts)
}
