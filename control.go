package offgate

import "context"

type ControlType string

const (
	// ControlSkipWaiting promotes a waiting gateway to active immediately,
	// bypassing the normal wait for the old controller to wind down.
	ControlSkipWaiting ControlType = "SKIP_WAITING"
	// ControlClearCache deletes every generation in the namespace, current
	// ones included. A full reset, not a selective purge.
	ControlClearCache ControlType = "CLEAR_CACHE"
)

// Control is an out-of-band command from the hosting application.
type Control struct {
	Type ControlType
	// Reply, when non-nil, receives an acknowledgment for commands that ack
	// (clear-cache). Sends never block; an unready receiver misses the ack.
	Reply chan<- Ack
}

// Ack acknowledges a control command back to the sender.
type Ack struct {
	OK bool
}

func (g *gateway) Control(ctx context.Context, msg Control) error {
	switch msg.Type {
	case ControlSkipWaiting:
		if g.State() == StateWaiting {
			return g.Activate(ctx)
		}
		g.log.Debug("skip-waiting ignored", Fields{"state": g.State().String()})
		return nil
	case ControlClearCache:
		err := g.clearAll(ctx)
		if msg.Reply != nil {
			select {
			case msg.Reply <- Ack{OK: err == nil}:
			default:
			}
		}
		return err
	default:
		// unknown control messages are ignored, like unknown postMessage types
		g.log.Debug("unknown control message", Fields{"type": string(msg.Type)})
		return nil
	}
}

func (g *gateway) clearAll(ctx context.Context) error {
	gens, err := g.man.Generations(ctx, g.genPrefix())
	if err != nil {
		return err
	}
	for _, gen := range gens {
		if err := g.dropGeneration(ctx, gen); err != nil {
			return err
		}
	}
	g.log.Info("cleared all generations", Fields{"count": len(gens)})
	return nil
}
