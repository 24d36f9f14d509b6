//go:build js && wasm
// +build js,wasm

package vango

import (
	"fmt"
	"syscall/js"

	"github.com/loomkit/willow/pkg/renderer/dom"
	"github.com/loomkit/willow/pkg/scheduler"
	"github.com/loomkit/willow/pkg/vango/vdom"
)

// Instance is a live, client-driven mount: the Model currently in scope,
// the realized tree it last produced, and the fiber/patcher pair that
// turns a Msg into a DOM mutation.
type Instance struct {
	app      App
	model    any
	realized []vdom.RealizedNode
	patcher  *dom.Patcher
	el       js.Value
	fiber    *scheduler.Fiber
}

// Mount attaches app to the first element matching selector and renders
// its initial state. It never hydrates existing markup — selector's
// children, if any, are discarded.
func Mount(selector string, app App) (*Instance, error) {
	doc := js.Global().Get("document")
	el := doc.Call("querySelector", selector)
	if el.IsNull() || el.IsUndefined() {
		return nil, fmt.Errorf("vango: no element matches selector %q", selector)
	}
	el.Set("innerHTML", "")

	m := &Instance{app: app, patcher: dom.NewPatcher(), el: el}
	m.model = app.Init()
	m.fiber = scheduler.NewFiber(m.render, func(f *scheduler.Fiber, err any) bool {
		return false // a panicking client render leaves the mount degraded
	})

	root := app.View(m.model)
	m.realized = vdom.Render([]vdom.Node{root})
	for _, r := range m.realized {
		el.Call("appendChild", materializeRoot(m.patcher, r))
	}

	return m, nil
}

// materializeRoot exposes Patcher's private materialize through a single
// exported Apply([]Edit{Insert}) call, keeping the patcher's construction
// logic in one place rather than duplicating it here.
func materializeRoot(p *dom.Patcher, r vdom.RealizedNode) js.Value {
	frag := js.Global().Get("document").Call("createDocumentFragment")
	p.Apply([]vdom.Edit{{Op: vdom.OpInsert, New: r}}, frag)
	return frag.Get("firstChild")
}

// Dispatch sends msg through Update, re-renders View, diffs against the
// current realized tree, and applies the resulting edits to the DOM.
func (m *Instance) Dispatch(msg any) error {
	_, err := m.fiber.Dispatch(msg)
	return err
}

func (m *Instance) render(msg any) ([]vdom.Edit, error) {
	m.model = m.app.Update(msg, m.model)
	root := m.app.View(m.model)
	edits, result := vdom.DiffSiblings(m.realized, []vdom.Node{root})
	if err := m.patcher.Apply(edits, m.el); err != nil {
		return nil, fmt.Errorf("vango: apply edits: %w", err)
	}
	m.realized = result
	return edits, nil
}

// emitFor wraps msg in a Handler suitable for binding to a Node's event,
// so a View can write m.On(SomeMsg) instead of constructing a Handler
// closure by hand at every call site.
func emitFor(m *Instance, msg any) vdom.Handler {
	return func(arg any) []vdom.Edit {
		edits, _ := m.render(msg)
		return edits
	}
}

// On returns a Handler that dispatches msg through this mount when the
// bound DOM event fires, ignoring the event argument. Use OnArg when the
// handler needs the extracted event value (e.g. an input's new text).
func (m *Instance) On(msg any) vdom.Handler {
	return emitFor(m, msg)
}

// OnArg returns a Handler that builds its message from the event argument
// dom.ExtractEventArg produced (typically a string for input/change events).
func (m *Instance) OnArg(build func(arg any) any) vdom.Handler {
	return func(arg any) []vdom.Edit {
		edits, _ := m.render(build(arg))
		return edits
	}
}
