//go:build js && wasm
// +build js,wasm

package live

import (
	"strconv"
	"syscall/js"

	"github.com/loomkit/willow/pkg/renderer/dom"
)

// Client is the browser-side half of the event bridge for a server-driven
// mount: it holds the WebSocket, applies the host's realized tree and
// edit scripts directly to the DOM, and reports dispatched events back by
// the registry id the host assigned. It never runs Update or View itself
// — all of that happens on the host; the client only patches and relays.
type Client struct {
	ws     js.Value
	parent js.Value

	nextWID   uint32
	listeners map[uint32]map[string]js.Func

	onReady func()
	onError func(error)
}

// NewClient constructs a client that will render into parent once connected.
func NewClient(parent js.Value) *Client {
	return &Client{parent: parent, listeners: make(map[uint32]map[string]js.Func)}
}

// Connect opens the WebSocket and installs the message handlers.
func (c *Client) Connect(url string) {
	c.ws = js.Global().Get("WebSocket").New(url)

	c.ws.Set("onopen", js.FuncOf(func(this js.Value, args []js.Value) any {
		if c.onReady != nil {
			c.onReady()
		}
		return nil
	}))

	c.ws.Set("onmessage", js.FuncOf(func(this js.Value, args []js.Value) any {
		c.handleMessage(args[0].Get("data").String())
		return nil
	}))

	c.ws.Set("onerror", js.FuncOf(func(this js.Value, args []js.Value) any {
		if c.onError != nil {
			c.onError(nil)
		}
		return nil
	}))
}

// OnReady registers a callback fired once the socket opens.
func (c *Client) OnReady(fn func()) { c.onReady = fn }

// OnError registers a callback fired on a WebSocket error.
func (c *Client) OnError(fn func(error)) { c.onError = fn }

func (c *Client) handleMessage(raw string) {
	f, err := Unmarshal([]byte(raw))
	if err != nil {
		return
	}

	switch f.Type {
	case FrameHello:
		// Nothing to do beyond noting the session is live; reconnection
		// bookkeeping belongs to a higher layer than this client.
	case FramePatch:
		if len(f.Root) > 0 {
			c.applyRoot(f.Root)
		}
		if len(f.Edits) > 0 {
			c.applyEdits(f.Edits, c.parent)
		}
	}
}

func (c *Client) applyRoot(nodes []WireNode) {
	c.parent.Set("innerHTML", "")
	for _, n := range nodes {
		c.parent.Call("appendChild", c.materialize(n))
	}
}

// applyEdits walks parent's children with the same cursor discipline as
// dom.Patcher, against the wire edit shape instead of vdom.Edit.
func (c *Client) applyEdits(edits []WireEdit, parent js.Value) {
	original := snapshotChildren(parent)
	cursor := 0

	for _, e := range edits {
		switch e.Op {
		case WireSkip:
			cursor += e.N

		case WireDelete:
			for i := 0; i < e.N; i++ {
				c.releaseSubtree(original[cursor+i])
				parent.Call("removeChild", original[cursor+i])
			}
			cursor += e.N

		case WireReplace:
			old := original[cursor]
			fresh := c.materialize(*e.New)
			parent.Call("replaceChild", fresh, old)
			c.releaseSubtree(old)
			cursor++

		case WireInsert:
			fresh := c.materialize(*e.New)
			parent.Call("insertBefore", fresh, referenceNode(original, cursor))

		case WireMove:
			ref := referenceNode(original, cursor)
			for i := 0; i < e.N; i++ {
				parent.Call("insertBefore", original[e.From+i], ref)
			}

		case WireInPlace:
			el := original[cursor]
			for name, v := range e.Attrs {
				if v == nil {
					el.Call("removeAttribute", name)
				} else {
					el.Call("setAttribute", name, *v)
				}
			}
			wid := c.widOf(el)
			for name, id := range e.Events {
				if id == nil {
					c.unbindEvent(wid, el, name)
				} else {
					c.bindEvent(wid, el, name, *id)
				}
			}
			c.applyEdits(e.Children, el)
			cursor++
		}
	}
}

func snapshotChildren(parent js.Value) []js.Value {
	list := parent.Get("childNodes")
	n := list.Get("length").Int()
	out := make([]js.Value, n)
	for i := 0; i < n; i++ {
		out[i] = list.Index(i)
	}
	return out
}

func referenceNode(original []js.Value, cursor int) js.Value {
	if cursor < len(original) {
		return original[cursor]
	}
	return js.Null()
}

func (c *Client) materialize(n WireNode) js.Value {
	doc := js.Global().Get("document")
	if n.IsText {
		return doc.Call("createTextNode", n.Text)
	}

	el := doc.Call("createElement", n.Tag)
	for name, v := range n.Attrs {
		el.Call("setAttribute", name, v)
	}
	if len(n.Events) > 0 {
		wid := c.widOf(el)
		for name, id := range n.Events {
			c.bindEvent(wid, el, name, id)
		}
	}
	for _, child := range n.Children {
		el.Call("appendChild", c.materialize(child))
	}
	return el
}

// widOf returns this element's bookkeeping id, assigning and stamping one
// as a data attribute the first time the element is seen, mirroring
// dom.Patcher's scheme so released listeners are tracked the same way on
// both sides of the bridge.
func (c *Client) widOf(el js.Value) uint32 {
	attr := el.Call("getAttribute", "data-wid")
	if !attr.IsNull() && !attr.IsUndefined() {
		if n, err := strconv.ParseUint(attr.String(), 10, 32); err == nil {
			return uint32(n)
		}
	}
	c.nextWID++
	wid := c.nextWID
	el.Call("setAttribute", "data-wid", strconv.FormatUint(uint64(wid), 10))
	return wid
}

func (c *Client) bindEvent(wid uint32, el js.Value, name string, id int) {
	c.unbindEvent(wid, el, name)

	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		var arg any
		if len(args) > 0 {
			arg = dom.ExtractEventArg(args[0])
		}
		c.reportEvent(id, name, arg)
		return nil
	})

	el.Call("addEventListener", name, fn)

	if c.listeners[wid] == nil {
		c.listeners[wid] = make(map[string]js.Func)
	}
	c.listeners[wid][name] = fn
}

func (c *Client) unbindEvent(wid uint32, el js.Value, name string) {
	handlers, ok := c.listeners[wid]
	if !ok {
		return
	}
	if fn, ok := handlers[name]; ok {
		el.Call("removeEventListener", name, fn)
		fn.Release()
		delete(handlers, name)
	}
}

// releaseSubtree frees every listener this client tracks for node and its
// descendants, so Go-side callbacks don't leak when a subtree is removed.
func (c *Client) releaseSubtree(node js.Value) {
	if node.Get("nodeType").Int() != 1 { // not an Element
		return
	}
	if attr := node.Call("getAttribute", "data-wid"); !attr.IsNull() && !attr.IsUndefined() {
		if n, err := strconv.ParseUint(attr.String(), 10, 32); err == nil {
			wid := uint32(n)
			for name, fn := range c.listeners[wid] {
				node.Call("removeEventListener", name, fn)
				fn.Release()
			}
			delete(c.listeners, wid)
		}
	}
	children := node.Get("children")
	for i := 0; i < children.Get("length").Int(); i++ {
		c.releaseSubtree(children.Index(i))
	}
}

func (c *Client) reportEvent(id int, name string, arg any) {
	f := Frame{Type: FrameEvent, NodeID: id, Event: name, Arg: arg}
	data, err := Marshal(f)
	if err != nil {
		return
	}
	c.ws.Call("send", string(data))
}
