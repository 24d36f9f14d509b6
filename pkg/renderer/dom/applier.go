//go:build js && wasm
// +build js,wasm

package dom

import (
	"fmt"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/loomkit/willow/pkg/vango/vdom"
)

// boolAttrs lists the attributes that must be set as JS boolean properties
// rather than string attribute values, so e.g. disabled="false" doesn't end
// up true the way a literal DOM attribute would.
var boolAttrs = map[string]bool{
	"checked": true, "selected": true, "disabled": true,
	"readonly": true, "required": true, "multiple": true, "autofocus": true,
}

// Patcher applies an edit script against a live DOM subtree using a sibling
// cursor rather than a global node-id table: it walks the parent's existing
// children left to right in lockstep with the edit script, exactly as the
// differ produced it, and materializes, removes, moves or recurses into
// children as each edit calls for. The one piece of
// bookkeeping this still needs beyond pure tree-walking is releasing
// syscall/js callback handles on removal, which is tracked through a small
// internal id the patcher stamps onto elements it creates — an
// implementation detail private to this package, not part of the wire
// protocol or the edit script itself.
type Patcher struct {
	document  js.Value
	nextWID   uint32
	listeners map[uint32]map[string]js.Func
}

// NewPatcher constructs a Patcher bound to the current document.
func NewPatcher() *Patcher {
	return &Patcher{
		document:  js.Global().Get("document"),
		listeners: make(map[uint32]map[string]js.Func),
	}
}

// Apply walks parent's current children against edits and brings the DOM in
// line with the realized tree the edits describe.
func (p *Patcher) Apply(edits []vdom.Edit, parent js.Value) error {
	original := snapshotChildren(parent)
	cursor := 0

	for _, e := range edits {
		switch e.Op {
		case vdom.OpSkip:
			cursor += e.N

		case vdom.OpDelete:
			for i := 0; i < e.N; i++ {
				p.releaseSubtree(original[cursor+i])
				parent.Call("removeChild", original[cursor+i])
			}
			cursor += e.N

		case vdom.OpReplace:
			old := original[cursor]
			fresh := p.materialize(e.New)
			parent.Call("replaceChild", fresh, old)
			p.releaseSubtree(old)
			cursor++

		case vdom.OpInsert:
			fresh := p.materialize(e.New)
			parent.Call("insertBefore", fresh, referenceNode(original, cursor))

		case vdom.OpMove:
			ref := referenceNode(original, cursor)
			for i := 0; i < e.N; i++ {
				parent.Call("insertBefore", original[e.From+i], ref)
			}

		case vdom.OpInPlace:
			el := original[cursor]
			if err := p.applyInPlace(e, el); err != nil {
				return err
			}
			cursor++

		default:
			return fmt.Errorf("dom: unknown edit op %v", e.Op)
		}
	}
	return nil
}

func referenceNode(original []js.Value, cursor int) js.Value {
	if cursor < len(original) {
		return original[cursor]
	}
	return js.Null()
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

// applyInPlace mutates el's attributes, events and children without
// replacing its identity.
func (p *Patcher) applyInPlace(e vdom.Edit, el js.Value) error {
	for _, c := range e.AttrDelta {
		if c.Removed {
			removeAttr(el, c.Name)
		} else {
			setAttr(el, c.Name, c.Value)
		}
	}

	wid := p.widOf(el)
	for _, c := range e.EventDelta {
		switch c.Kind {
		case vdom.EventBind:
			p.bindEvent(wid, el, c.Name, c.Ref)
		case vdom.EventUnbind:
			p.unbindEvent(wid, el, c.Name)
		}
	}

	return p.Apply(e.ChildEdits, el)
}

// materialize builds a live DOM subtree (or DocumentFragment, for a keyed
// fragment) from a realized node, attaching event listeners as it goes.
func (p *Patcher) materialize(n vdom.RealizedNode) js.Value {
	switch n.Kind {
	case vdom.KindText:
		return p.document.Call("createTextNode", n.Text)

	case vdom.KindElement:
		el := p.document.Call("createElement", n.Tag)
		for name, v := range n.Attrs {
			setAttr(el, name, v)
		}
		if len(n.BoundEvents) > 0 {
			wid := p.widOf(el)
			for name, ref := range n.BoundEvents {
				p.bindEvent(wid, el, name, ref)
			}
		}
		for _, child := range n.Children {
			el.Call("appendChild", p.materialize(child))
		}
		return el

	case vdom.KindKeyedFragment, vdom.KindConcat:
		frag := p.document.Call("createDocumentFragment")
		for _, sub := range flattenRealized(n) {
			frag.Call("appendChild", p.materialize(sub))
		}
		return frag

	default:
		return js.Null()
	}
}

func flattenRealized(n vdom.RealizedNode) []vdom.RealizedNode {
	switch n.Kind {
	case vdom.KindKeyedFragment:
		var out []vdom.RealizedNode
		for _, kc := range n.KeyedChildren {
			out = append(out, kc.Nodes...)
		}
		return out
	case vdom.KindConcat:
		var out []vdom.RealizedNode
		for _, c := range n.Children {
			out = append(out, flattenRealized(c)...)
		}
		return out
	default:
		return []vdom.RealizedNode{n}
	}
}

func setAttr(el js.Value, name, value string) {
	switch name {
	case "class":
		el.Set("className", value)
	case "for":
		el.Set("htmlFor", value)
	case "value":
		tag := el.Get("tagName").String()
		if tag == "INPUT" || tag == "TEXTAREA" || tag == "SELECT" {
			el.Set("value", value)
			return
		}
		el.Call("setAttribute", name, value)
	default:
		if boolAttrs[name] {
			el.Set(name, value == "true" || value == name)
			return
		}
		el.Call("setAttribute", name, value)
	}
}

func removeAttr(el js.Value, name string) {
	switch name {
	case "class":
		el.Set("className", "")
	case "value":
		el.Set("value", "")
	default:
		if boolAttrs[name] {
			el.Set(name, false)
			return
		}
		el.Call("removeAttribute", name)
	}
}

// widOf returns this element's bookkeeping id, assigning and stamping one
// as a data attribute the first time the element is seen.
func (p *Patcher) widOf(el js.Value) uint32 {
	attr := el.Call("getAttribute", "data-wid")
	if !attr.IsNull() && !attr.IsUndefined() {
		if n, err := strconv.ParseUint(attr.String(), 10, 32); err == nil {
			return uint32(n)
		}
	}
	p.nextWID++
	wid := p.nextWID
	el.Call("setAttribute", "data-wid", strconv.FormatUint(uint64(wid), 10))
	return wid
}

// bindEvent attaches a DOM listener that dispatches through ref rather than
// a captured Handler, so a later in-place rebind of ref's cell (which emits
// no EventChange and re-attaches nothing) is still observed on the next
// event.
func (p *Patcher) bindEvent(wid uint32, el js.Value, name string, ref *vdom.HandlerRef) {
	p.unbindEvent(wid, el, name)

	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		var arg any
		if len(args) > 0 {
			arg = ExtractEventArg(args[0])
		}
		ref.Handler()(arg)
		return nil
	})

	el.Call("addEventListener", strings.ToLower(name), fn)

	if p.listeners[wid] == nil {
		p.listeners[wid] = make(map[string]js.Func)
	}
	p.listeners[wid][name] = fn
}

func (p *Patcher) unbindEvent(wid uint32, el js.Value, name string) {
	handlers, ok := p.listeners[wid]
	if !ok {
		return
	}
	if fn, ok := handlers[name]; ok {
		el.Call("removeEventListener", strings.ToLower(name), fn)
		fn.Release()
		delete(handlers, name)
	}
}

// releaseSubtree frees every listener this patcher tracks for node and its
// descendants, so Go-side callbacks don't leak when a subtree is removed.
func (p *Patcher) releaseSubtree(node js.Value) {
	if node.Get("nodeType").Int() != 1 { // not an Element
		return
	}
	if attr := node.Call("getAttribute", "data-wid"); !attr.IsNull() && !attr.IsUndefined() {
		if n, err := strconv.ParseUint(attr.String(), 10, 32); err == nil {
			wid := uint32(n)
			for name, fn := range p.listeners[wid] {
				node.Call("removeEventListener", strings.ToLower(name), fn)
				fn.Release()
			}
			delete(p.listeners, wid)
		}
	}
	children := node.Get("children")
	for i := 0; i < children.Get("length").Int(); i++ {
		p.releaseSubtree(children.Index(i))
	}
}

// ExtractEventArg pulls a minimal, wire-friendly representation out of a
// browser Event: input/change events yield the target's value, everything
// else yields nil. Richer shapes (mouse coordinates, key codes) are not
// extracted.
func ExtractEventArg(ev js.Value) any {
	switch ev.Get("type").String() {
	case "input", "change":
		target := ev.Get("target")
		if !target.IsUndefined() && !target.IsNull() {
			if v := target.Get("value"); !v.IsUndefined() {
				return v.String()
			}
		}
	}
	return nil
}
