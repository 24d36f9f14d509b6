// Package live implements the event bridge between a server-driven mount
// and its browser client: a JSON-over-WebSocket wire protocol carrying
// realized node trees and edit scripts one way, and event dispatches the
// other.
package live

import (
	"encoding/json"
	"fmt"

	"github.com/loomkit/willow/pkg/vango/vdom"
)

// WireKind tags the shape of a WireEdit. It never appears on the wire
// itself: the JSON discriminates an edit by which single key is present,
// not by a tag field, so WireKind only exists to drive Go-side switches.
type WireKind uint8

const (
	WireSkip WireKind = iota
	WireDelete
	WireReplace
	WireInsert
	WireMove
	WireInPlace
)

// WireAttrDelta maps an attribute name to its new value, or to nil if the
// attribute was removed. It marshals straight to a JSON object whose
// values are either strings or null.
type WireAttrDelta map[string]*string

// WireEventDelta maps an event name to the registry id a fresh binding was
// assigned, or to nil if the event was unbound. A rebind of an existing
// event never appears here at all.
type WireEventDelta map[string]*int

// WireNode is the JSON shape of one realized leaf: a bare string for text,
// or {"n":tag,"a":attrs,"e":events,"c":children} for an element. Keyed
// fragments and Concat nodes have no wire representation of their own —
// flattenLeaves inlines their contents wherever a WireNode is expected, so
// the client never needs to know a given leaf came from inside a fragment.
type WireNode struct {
	IsText bool
	Text   string

	Tag      string
	Attrs    map[string]string
	Events   map[string]int // event name -> registry id
	Children []WireNode
}

// wireElement is the on-the-wire shape of a non-text WireNode.
type wireElement struct {
	N string            `json:"n"`
	A map[string]string `json:"a,omitempty"`
	E map[string]int    `json:"e,omitempty"`
	C []WireNode        `json:"c,omitempty"`
}

// MarshalJSON encodes text nodes as a bare JSON string and everything else
// as a {"n",...} element object.
func (n WireNode) MarshalJSON() ([]byte, error) {
	if n.IsText {
		return json.Marshal(n.Text)
	}
	return json.Marshal(wireElement{N: n.Tag, A: n.Attrs, E: n.Events, C: n.Children})
}

// UnmarshalJSON tries a bare string first, falling back to the element
// shape, mirroring the discriminated encoding MarshalJSON produces.
func (n *WireNode) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*n = WireNode{IsText: true, Text: text}
		return nil
	}
	var el wireElement
	if err := json.Unmarshal(data, &el); err != nil {
		return fmt.Errorf("live: unmarshal node: %w", err)
	}
	*n = WireNode{Tag: el.N, Attrs: el.A, Events: el.E, Children: el.C}
	return nil
}

// WireEdit is the JSON shape of one vdom.Edit, discriminated by which
// single key is present rather than by an explicit op tag: {"s":n} skip,
// {"d":n} delete, {"r":node} replace, {"i":node} insert, {"f":from,"n":n}
// move, and an object with none of those keys (only "a"/"e"/"c", any of
// which may be absent) is an in-place update.
type WireEdit struct {
	Op   WireKind
	N    int
	New  *WireNode
	From int

	Attrs    WireAttrDelta
	Events   WireEventDelta
	Children []WireEdit
}

type wireSkip struct {
	S int `json:"s"`
}

type wireDelete struct {
	D int `json:"d"`
}

type wireReplace struct {
	R *WireNode `json:"r"`
}

type wireInsert struct {
	I *WireNode `json:"i"`
}

type wireMove struct {
	F int `json:"f"`
	N int `json:"n"`
}

type wireInPlace struct {
	A WireAttrDelta  `json:"a,omitempty"`
	E WireEventDelta `json:"e,omitempty"`
	C []WireEdit     `json:"c,omitempty"`
}

// MarshalJSON picks the single-key shape for e.Op.
func (e WireEdit) MarshalJSON() ([]byte, error) {
	switch e.Op {
	case WireSkip:
		return json.Marshal(wireSkip{S: e.N})
	case WireDelete:
		return json.Marshal(wireDelete{D: e.N})
	case WireReplace:
		return json.Marshal(wireReplace{R: e.New})
	case WireInsert:
		return json.Marshal(wireInsert{I: e.New})
	case WireMove:
		return json.Marshal(wireMove{F: e.From, N: e.N})
	case WireInPlace:
		return json.Marshal(wireInPlace{A: e.Attrs, E: e.Events, C: e.Children})
	default:
		return nil, fmt.Errorf("live: unknown wire edit op %v", e.Op)
	}
}

// UnmarshalJSON probes for each discriminating key in turn, same order as
// the scenarios in the wire format: s, d, r, i, f, else in-place.
func (e *WireEdit) UnmarshalJSON(data []byte) error {
	var probe struct {
		S *int      `json:"s"`
		D *int      `json:"d"`
		R *WireNode `json:"r"`
		I *WireNode `json:"i"`
		F *int      `json:"f"`
		N *int      `json:"n"`

		A WireAttrDelta  `json:"a"`
		E WireEventDelta `json:"e"`
		C []WireEdit     `json:"c"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("live: unmarshal edit: %w", err)
	}

	switch {
	case probe.S != nil:
		*e = WireEdit{Op: WireSkip, N: *probe.S}
	case probe.D != nil:
		*e = WireEdit{Op: WireDelete, N: *probe.D}
	case probe.R != nil:
		*e = WireEdit{Op: WireReplace, New: probe.R}
	case probe.I != nil:
		*e = WireEdit{Op: WireInsert, New: probe.I}
	case probe.F != nil:
		n := 0
		if probe.N != nil {
			n = *probe.N
		}
		*e = WireEdit{Op: WireMove, From: *probe.F, N: n}
	default:
		*e = WireEdit{Op: WireInPlace, Attrs: probe.A, Events: probe.E, Children: probe.C}
	}
	return nil
}

// Registry assigns stable integer ids to the HandlerRefs a session's
// encoded frames reference, so the browser can report an event back by id
// without either side needing to agree on a traversal-order counter. A
// HandlerRef keeps the same id for its whole lifetime, including across
// the Rebind calls an in-place diff performs.
type Registry struct {
	ids  map[*vdom.HandlerRef]int
	refs map[int]*vdom.HandlerRef
	next int
}

// NewRegistry constructs an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:  make(map[*vdom.HandlerRef]int),
		refs: make(map[int]*vdom.HandlerRef),
	}
}

// IDFor returns ref's stable wire id, assigning one the first time ref is seen.
func (r *Registry) IDFor(ref *vdom.HandlerRef) int {
	if id, ok := r.ids[ref]; ok {
		return id
	}
	r.next++
	id := r.next
	r.ids[ref] = id
	r.refs[id] = ref
	return id
}

// Lookup resolves a wire id back to its HandlerRef.
func (r *Registry) Lookup(id int) (*vdom.HandlerRef, bool) {
	ref, ok := r.refs[id]
	return ref, ok
}

// Forget releases the bookkeeping for a disposed HandlerRef. Safe to call
// on a ref that was never registered.
func (r *Registry) Forget(ref *vdom.HandlerRef) {
	if id, ok := r.ids[ref]; ok {
		delete(r.ids, ref)
		delete(r.refs, id)
	}
}

// flattenLeaves inlines the contents of any KindKeyedFragment or KindConcat
// node into the ordered list of Text/Element leaves it realizes to. The
// wire format has no marker for a fragment: it is transparent, so a
// fragment appearing as an element's child, or as a mount's whole root,
// contributes its leaves directly to the surrounding list.
func flattenLeaves(nodes []vdom.RealizedNode) []vdom.RealizedNode {
	var out []vdom.RealizedNode
	for _, n := range nodes {
		switch n.Kind {
		case vdom.KindKeyedFragment:
			for _, kc := range n.KeyedChildren {
				out = append(out, flattenLeaves(kc.Nodes)...)
			}
		case vdom.KindConcat:
			out = append(out, flattenLeaves(n.Children)...)
		default:
			out = append(out, n)
		}
	}
	return out
}

// EncodeNode converts a single realized leaf (Text or Element) into its
// wire representation, assigning a wire id to each bound event through
// reg. Callers holding a node that might itself be a fragment should use
// EncodeNodes instead, which flattens first.
func EncodeNode(n vdom.RealizedNode, reg *Registry) WireNode {
	switch n.Kind {
	case vdom.KindText:
		return WireNode{IsText: true, Text: n.Text}
	case vdom.KindElement:
		w := WireNode{Tag: n.Tag, Attrs: n.Attrs}
		if len(n.BoundEvents) > 0 {
			w.Events = make(map[string]int, len(n.BoundEvents))
			for name, ref := range n.BoundEvents {
				w.Events[name] = reg.IDFor(ref)
			}
		}
		for _, c := range flattenLeaves(n.Children) {
			w.Children = append(w.Children, EncodeNode(c, reg))
		}
		return w
	default:
		panic(vdom.ErrInvariant)
	}
}

// EncodeNodes flattens nodes into leaves and encodes each one, for the
// spots where the wire format wants a plain array rather than a single
// value: an element's children, and a mount's root.
func EncodeNodes(nodes []vdom.RealizedNode, reg *Registry) []WireNode {
	leaves := flattenLeaves(nodes)
	out := make([]WireNode, len(leaves))
	for i, l := range leaves {
		out[i] = EncodeNode(l, reg)
	}
	return out
}

// EncodeEdits converts an edit script into its wire representation. The
// mapping is one-to-many: an Insert or Replace whose New realizes to
// several actual nodes (a keyed fragment or Concat slot) expands into one
// wire edit per leaf, since a single WireEdit can only carry one WireNode.
func EncodeEdits(edits []vdom.Edit, reg *Registry) []WireEdit {
	out := make([]WireEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, encodeEdit(e, reg)...)
	}
	return out
}

func encodeEdit(e vdom.Edit, reg *Registry) []WireEdit {
	switch e.Op {
	case vdom.OpSkip:
		return []WireEdit{{Op: WireSkip, N: e.N}}

	case vdom.OpDelete:
		return []WireEdit{{Op: WireDelete, N: e.N}}

	case vdom.OpReplace:
		leaves := EncodeNodes([]vdom.RealizedNode{e.New}, reg)
		out := make([]WireEdit, 0, len(leaves))
		out = append(out, WireEdit{Op: WireReplace, New: &leaves[0]})
		for i := 1; i < len(leaves); i++ {
			out = append(out, WireEdit{Op: WireInsert, New: &leaves[i]})
		}
		return out

	case vdom.OpInsert:
		leaves := EncodeNodes([]vdom.RealizedNode{e.New}, reg)
		out := make([]WireEdit, 0, len(leaves))
		for i := range leaves {
			out = append(out, WireEdit{Op: WireInsert, New: &leaves[i]})
		}
		return out

	case vdom.OpMove:
		return []WireEdit{{Op: WireMove, From: e.From, N: e.N}}

	case vdom.OpInPlace:
		var children []WireEdit
		for _, c := range e.ChildEdits {
			children = append(children, encodeEdit(c, reg)...)
		}
		return []WireEdit{{
			Op:       WireInPlace,
			Attrs:    attrDeltaWire(e.AttrDelta),
			Events:   eventDeltaWire(e.EventDelta, reg),
			Children: children,
		}}

	default:
		panic(vdom.ErrInvariant)
	}
}

func attrDeltaWire(delta []vdom.AttrChange) WireAttrDelta {
	if len(delta) == 0 {
		return nil
	}
	out := make(WireAttrDelta, len(delta))
	for _, c := range delta {
		if c.Removed {
			out[c.Name] = nil
			continue
		}
		v := c.Value
		out[c.Name] = &v
	}
	return out
}

func eventDeltaWire(delta []vdom.EventChange, reg *Registry) WireEventDelta {
	if len(delta) == 0 {
		return nil
	}
	out := make(WireEventDelta, len(delta))
	for _, c := range delta {
		switch c.Kind {
		case vdom.EventBind:
			id := reg.IDFor(c.Ref)
			out[c.Name] = &id
		case vdom.EventUnbind:
			out[c.Name] = nil
			reg.Forget(c.Ref)
		}
	}
	return out
}

// FrameKind tags the top-level message shape exchanged over the socket.
type FrameKind string

const (
	FrameHello FrameKind = "hello"
	FramePatch FrameKind = "patch"
	FrameEvent FrameKind = "event"
	FramePing  FrameKind = "ping"
	FramePong  FrameKind = "pong"
)

// Frame is the envelope every message on the wire uses.
type Frame struct {
	Type FrameKind `json:"type"`

	// Hello
	SessionID string `json:"sessionId,omitempty"`

	// Patch: a fresh realized root (the first patch a session sends) or an
	// edit script against the previous root (every patch after that). Root is
	// a list rather than a single node because a mount's root can itself
	// realize to several actual nodes (a top-level keyed fragment).
	Root  []WireNode `json:"root,omitempty"`
	Edits []WireEdit `json:"edits,omitempty"`
	Seq   uint64     `json:"seq,omitempty"`

	// Event: the browser reporting a dispatched DOM event back to the host.
	NodeID int    `json:"nodeId,omitempty"`
	Event  string `json:"event,omitempty"`
	Arg    any    `json:"arg,omitempty"`
}

// Marshal encodes a frame as JSON.
func Marshal(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("live: marshal frame: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a frame from JSON.
func Unmarshal(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("live: unmarshal frame: %w", err)
	}
	return f, nil
}
