// Package server hosts server-driven mounts: an App whose Model lives on
// the host, rendered and diffed there, with only realized trees and edit
// scripts crossing the wire to the browser via pkg/live.
package server

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/loomkit/willow/pkg/live"
	"github.com/loomkit/willow/pkg/scheduler"
	"github.com/loomkit/willow/pkg/vango"
	"github.com/loomkit/willow/pkg/vango/vdom"
)

// Instance is one server-driven component mount: an id, a session id, the
// running Model, and the fiber that serializes its render cycle. It has no
// separate nodeID->handler map of its own — that bookkeeping lives in the
// live.Registry a session owns, since the registry's ids are what actually
// cross the wire.
type Instance struct {
	ID        string
	SessionID string

	mu       sync.Mutex
	app      vango.App
	model    any
	realized []vdom.RealizedNode
	fiber    *scheduler.Fiber
	session  *live.Session
	logger   *slog.Logger
	degraded bool
}

// NewInstance constructs an unmounted instance for app.
func NewInstance(id, sessionID string, app vango.App, logger *slog.Logger) *Instance {
	if logger == nil {
		logger = slog.Default()
	}
	inst := &Instance{
		ID:        id,
		SessionID: sessionID,
		app:       app,
		logger:    logger.With("instance", id, "session", sessionID),
	}
	inst.fiber = scheduler.NewFiber(inst.render, func(f *scheduler.Fiber, err any) bool {
		inst.mu.Lock()
		inst.degraded = true
		inst.mu.Unlock()
		inst.logger.Error("render panicked, instance degraded", "err", err)
		return false
	})
	return inst
}

// AttachSession binds the live session this instance streams patches
// through. A new connection (e.g. after a client reconnect) simply calls
// this again with the fresh session.
func (i *Instance) AttachSession(s *live.Session) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.session = s
}

// Mount runs Init/View once and returns the initial realized root.
func (i *Instance) Mount() (vdom.RealizedNode, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.model = i.app.Init()
	root := i.app.View(i.model)
	i.realized = vdom.Render([]vdom.Node{root})

	if len(i.realized) != 1 {
		return vdom.RealizedNode{}, fmt.Errorf("server: View must realize to exactly one root node, got %d", len(i.realized))
	}
	return i.realized[0], nil
}

// render is the fiber's RenderFunc: Update, View, diff against the last
// realized tree, in that order.
func (i *Instance) render(msg any) ([]vdom.Edit, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.model = i.app.Update(msg, i.model)
	root := i.app.View(i.model)
	edits, result := vdom.DiffSiblings(i.realized, []vdom.Node{root})
	i.realized = result
	return edits, nil
}

// HandleEvent looks up the HandlerRef a browser-reported event id names,
// invokes it, and returns the resulting edit script. It matches
// live.EventHandler's signature so a Server can bind it directly as a
// session's Dispatch.
func (i *Instance) HandleEvent(id int, eventName string, arg any) ([]vdom.Edit, bool) {
	i.mu.Lock()
	session := i.session
	degraded := i.degraded
	i.mu.Unlock()

	if degraded || session == nil {
		return nil, false
	}

	ref, ok := session.Registry.Lookup(id)
	if !ok || ref.Disposed() {
		i.logger.Warn("event for unknown or disposed handler", "id", id, "event", eventName)
		return nil, false
	}

	edits := ref.Handler()(arg)
	return edits, true
}

// On returns a Handler that dispatches msg through this instance's fiber
// when the bound DOM event fires.
func (i *Instance) On(msg any) vdom.Handler {
	return func(arg any) []vdom.Edit {
		edits, err := i.fiber.Dispatch(msg)
		if err != nil {
			i.logger.Error("dispatch failed", "err", err)
			return nil
		}
		return edits
	}
}

// OnArg returns a Handler that builds its message from the event argument.
func (i *Instance) OnArg(build func(arg any) any) vdom.Handler {
	return func(arg any) []vdom.Edit {
		edits, err := i.fiber.Dispatch(build(arg))
		if err != nil {
			i.logger.Error("dispatch failed", "err", err)
			return nil
		}
		return edits
	}
}
