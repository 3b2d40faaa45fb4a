package offgate

import (
	"context"
	"testing"
)

type fakeNotifier struct {
	shown []Notification
}

func (n *fakeNotifier) Show(_ context.Context, note Notification) error {
	n.shown = append(n.shown, note)
	return nil
}

type fakeWindow struct {
	focused int
}

func (w *fakeWindow) Focus(_ context.Context) error {
	w.focused++
	return nil
}

type fakeWindows struct {
	windows []Window
	opened  []string
}

func (ws *fakeWindows) Windows(_ context.Context) ([]Window, error) {
	return ws.windows, nil
}

func (ws *fakeWindows) Open(_ context.Context, url string) error {
	ws.opened = append(ws.opened, url)
	return nil
}

func newPushGateway(t *testing.T, n Notifier, w WindowList) Gateway {
	t.Helper()
	return newTestGateway(t, newFakeNet(testRoutes()), func(o *Options) {
		o.Notifier = n
		o.Windows = w
	})
}

func TestPushEmptyPayloadIgnored(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	gw := newPushGateway(t, notifier, nil)
	defer gw.Close(ctx)

	if err := gw.Push(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := gw.Push(ctx, []byte{}); err != nil {
		t.Fatal(err)
	}
	if len(notifier.shown) != 0 {
		t.Fatalf("empty payload must not notify, shown=%d", len(notifier.shown))
	}
}

func TestPushMalformedPayloadDropped(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	gw := newPushGateway(t, notifier, nil)
	defer gw.Close(ctx)

	if err := gw.Push(ctx, []byte(`{not json`)); err != nil {
		t.Fatalf("malformed payload must not error: %v", err)
	}
	if len(notifier.shown) != 0 {
		t.Fatalf("malformed payload must not notify")
	}
}

func TestPushAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	gw := newPushGateway(t, notifier, nil)
	defer gw.Close(ctx)

	if err := gw.Push(ctx, []byte(`{"body":"new words available"}`)); err != nil {
		t.Fatal(err)
	}
	if len(notifier.shown) != 1 {
		t.Fatalf("shown = %d", len(notifier.shown))
	}
	n := notifier.shown[0]
	if n.Title != DefaultAppTitle {
		t.Fatalf("title = %q", n.Title)
	}
	if n.Body != "new words available" {
		t.Fatalf("body = %q", n.Body)
	}
	if n.URL != "/" {
		t.Fatalf("url = %q", n.URL)
	}
	if n.Icon != DefaultNotificationIcon || n.Badge != DefaultNotificationBadge {
		t.Fatalf("icon/badge = %q/%q", n.Icon, n.Badge)
	}
	if len(n.Actions) != 2 || n.Actions[0].Action != ActionOpen || n.Actions[1].Action != ActionDismiss {
		t.Fatalf("actions = %+v", n.Actions)
	}
}

func TestPushExplicitFieldsWin(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	gw := newPushGateway(t, notifier, nil)
	defer gw.Close(ctx)

	if err := gw.Push(ctx, []byte(`{"title":"Daily review","body":"5 due","url":"/wordbook"}`)); err != nil {
		t.Fatal(err)
	}
	n := notifier.shown[0]
	if n.Title != "Daily review" || n.Body != "5 due" || n.URL != "/wordbook" {
		t.Fatalf("notification = %+v", n)
	}
}

func TestPushWithoutNotifierIsNoop(t *testing.T) {
	ctx := context.Background()
	gw := newPushGateway(t, nil, nil)
	defer gw.Close(ctx)

	if err := gw.Push(ctx, []byte(`{"title":"x"}`)); err != nil {
		t.Fatalf("push without notifier: %v", err)
	}
}

func TestNotificationClickFocusesExistingWindow(t *testing.T) {
	ctx := context.Background()
	win := &fakeWindow{}
	windows := &fakeWindows{windows: []Window{win}}
	gw := newPushGateway(t, nil, windows)
	defer gw.Close(ctx)

	if err := gw.NotificationClick(ctx, ActionOpen, "/wordbook"); err != nil {
		t.Fatal(err)
	}
	if win.focused != 1 {
		t.Fatalf("focused = %d", win.focused)
	}
	if len(windows.opened) != 0 {
		t.Fatalf("must not open a new window when one exists: %v", windows.opened)
	}
}

func TestNotificationClickOpensWhenNoWindow(t *testing.T) {
	ctx := context.Background()
	windows := &fakeWindows{}
	gw := newPushGateway(t, nil, windows)
	defer gw.Close(ctx)

	if err := gw.NotificationClick(ctx, ActionOpen, "/wordbook"); err != nil {
		t.Fatal(err)
	}
	if len(windows.opened) != 1 || windows.opened[0] != "/wordbook" {
		t.Fatalf("opened = %v", windows.opened)
	}

	// Empty URL opens the app root.
	if err := gw.NotificationClick(ctx, "", ""); err != nil {
		t.Fatal(err)
	}
	if len(windows.opened) != 2 || windows.opened[1] != "/" {
		t.Fatalf("opened = %v", windows.opened)
	}
}

func TestNotificationClickDismissDoesNothing(t *testing.T) {
	ctx := context.Background()
	win := &fakeWindow{}
	windows := &fakeWindows{windows: []Window{win}}
	gw := newPushGateway(t, nil, windows)
	defer gw.Close(ctx)

	if err := gw.NotificationClick(ctx, ActionDismiss, "/wordbook"); err != nil {
		t.Fatal(err)
	}
	if win.focused != 0 || len(windows.opened) != 0 {
		t.Fatalf("dismiss must not touch windows")
	}
}

func TestSyncRecordsRequest(t *testing.T) {
	ctx := context.Background()
	hooks := &recHooks{}
	gw := newTestGateway(t, newFakeNet(testRoutes()), func(o *Options) { o.Hooks = hooks })
	defer gw.Close(ctx)

	if err := gw.Sync(ctx, "retry-wordbook"); err != nil {
		t.Fatal(err)
	}
	if len(hooks.syncs) != 1 || hooks.syncs[0] != "retry-wordbook" {
		t.Fatalf("syncs = %v", hooks.syncs)
	}
}
