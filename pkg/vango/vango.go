// Package vango is the top-level Elm-architecture loop: an App supplies
// Init/Update/View, and a mount (WASM, or a host-side server.Instance)
// drives them through the scheduler, the differ and a patcher.
package vango

import "github.com/loomkit/willow/pkg/vango/vdom"

// RenderMode selects where an App's state and render cycle live.
type RenderMode uint8

const (
	// ModeClient: WASM owns Model, runs Update/View/diff locally and
	// patches the real DOM directly through pkg/renderer/dom.
	ModeClient RenderMode = iota
	// ModeServerDriven: the host owns Model and the render cycle; only
	// realized trees and edit scripts cross the wire via pkg/live.
	ModeServerDriven
)

// App is the Elm-architecture program a mount drives. Model and Msg are
// any rather than a generic parameter: View's result type, vdom.Node, is
// not itself generic, and every mount-facing signature (Dispatch, event
// Handler) already erases to any at the event-bridge boundary, so a type
// parameter here would buy type safety Update/View can't keep past their
// own boundaries.
type App struct {
	Init   func() any
	Update func(msg any, model any) any
	View   func(model any) vdom.Node
}

// Context carries render-time information a View or event handler may
// need: which mode it is running under, its session id under
// ModeServerDriven, and a small bag of values components can thread
// through without changing every signature in between.
type Context struct {
	Mode      RenderMode
	SessionID string
	values    map[string]any
}

// NewContext constructs a context for the given mode.
func NewContext(mode RenderMode) *Context {
	return &Context{Mode: mode, values: make(map[string]any)}
}

// WithSessionID sets the session id and returns the context for chaining.
func (c *Context) WithSessionID(id string) *Context {
	c.SessionID = id
	return c
}

// Set stores a value under key.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get retrieves a value previously stored with Set.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Element shortcuts re-exported at package level so an App's View can write
// vango.Div(...) instead of reaching into vdom directly.
var (
	Div    = vdom.Div
	Span   = vdom.Span
	P      = vdom.P
	H1     = vdom.H1
	Button = vdom.Button
	Input  = vdom.Input
	Ul     = vdom.Ul
	Li     = vdom.Li
	Form   = vdom.Form
	Label  = vdom.Label
	Text   = vdom.Text
	Empty  = vdom.Empty
	Concat = vdom.Concat
	Keyed  = vdom.Keyed
	K      = vdom.K
)
