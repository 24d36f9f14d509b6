package vdom

import "fmt"

// ErrInvariant is wrapped by errors raised when a structural invariant the
// renderer or differ depends on is violated — an Empty or Concat node
// surfacing where a realized singleton is required.
var ErrInvariant = fmt.Errorf("internal invariant violated")

// HandlerRef is the mutable cell an Element's event is bound through. Its
// handler field is swapped in place by the differ when an element survives
// an in-place diff, so the wire id referencing it never
// changes across re-renders of the same element. Disposed is set once, when
// the element disappears or the event is removed; a disposed ref must never
// be invoked again.
type HandlerRef struct {
	handler  Handler
	disposed bool
}

// NewHandlerRef wraps a handler in a fresh, live HandlerRef.
func NewHandlerRef(h Handler) *HandlerRef {
	return &HandlerRef{handler: h}
}

// Handler returns the currently bound handler function.
func (r *HandlerRef) Handler() Handler {
	return r.handler
}

// Rebind swaps the handler in place without allocating a new reference,
// which is how an in-place diff updates an event without any wire traffic.
func (r *HandlerRef) Rebind(h Handler) {
	r.handler = h
}

// Disposed reports whether this reference has already been released.
func (r *HandlerRef) Disposed() bool {
	return r.disposed
}

// Dispose releases the handler reference. It is idempotent, but callers are
// expected to call it exactly once; a second call is tolerated so cleanup
// code doesn't need to track whether it already ran.
func (r *HandlerRef) Dispose() {
	r.disposed = true
	r.handler = nil
}

// RealizedNode mirrors live DOM output one to one, except that
// RKeyedFragment contributes its children directly to the parent's child
// list rather than producing a DOM node of its own. Empty and Concat never
// appear in a realized array — they are eliminated during rendering. The
// one exception is the KindConcat carrier wrapSingleton builds for an
// Insert edit's New when a keyed child realizes to other than one node.
type RealizedNode struct {
	Kind Kind // KindText, KindElement or KindKeyedFragment (KindConcat only in Edit.New)

	Text string

	Tag         string
	Attrs       map[string]string
	BoundEvents map[string]*HandlerRef
	Children    []RealizedNode

	// KeyedChildren holds (key, realized-children) pairs when Kind ==
	// KindKeyedFragment. Each entry's Nodes is itself a realized array,
	// since a single authored Node can realize to zero or more DOM nodes
	// (e.g. Empty realizes to nothing, Concat realizes to many).
	KeyedChildren []RealizedKeyedChild
}

// RealizedKeyedChild is one entry of a realized keyed fragment.
type RealizedKeyedChild struct {
	Key   string
	Nodes []RealizedNode
}

// ActualCount returns the number of live DOM children this realized node
// contributes: 1 for text or element, the sum of children's actual counts
// for a keyed fragment.
func (r RealizedNode) ActualCount() int {
	switch r.Kind {
	case KindText, KindElement:
		return 1
	case KindKeyedFragment:
		n := 0
		for _, kc := range r.KeyedChildren {
			n += actualCountOf(kc.Nodes)
		}
		return n
	case KindConcat:
		// Only ever constructed by wrapSingleton to carry a multi-node
		// keyed-child realization through a single Edit.New slot.
		return actualCountOf(r.Children)
	default:
		return 0
	}
}

func actualCountOf(nodes []RealizedNode) int {
	n := 0
	for _, rn := range nodes {
		n += rn.ActualCount()
	}
	return n
}

// Render flattens an authored forest into a realized array: Empty is
// discarded, Concat is spliced in place, Element becomes RElement (with a
// fresh HandlerRef per event), KeyedFragment becomes RKeyedFragment, and
// Text becomes RText. This is the renderer, C2 — it runs once per node that
// the differ decides needs to be materialized fresh (an Insert, a Replace,
// or the very first render of a mount).
func Render(nodes []Node) []RealizedNode {
	out := make([]RealizedNode, 0, len(nodes))
	for _, n := range nodes {
		out = renderInto(out, n)
	}
	return out
}

func renderInto(out []RealizedNode, n Node) []RealizedNode {
	switch n.Kind {
	case KindEmpty:
		return out
	case KindConcat:
		for _, child := range n.Concat {
			out = renderInto(out, child)
		}
		return out
	case KindText:
		return append(out, RealizedNode{Kind: KindText, Text: n.Text})
	case KindElement:
		return append(out, renderElement(n))
	case KindKeyedFragment:
		return append(out, renderKeyedFragment(n))
	default:
		panic(fmt.Errorf("%w: unknown node kind %d", ErrInvariant, n.Kind))
	}
}

// RenderOne realizes exactly one authored node into exactly one realized
// node, for call sites (InPlace recursion, single-slot keyed matches) that
// statically know they're handling a singleton. It panics with ErrInvariant
// if n is Empty or Concat, since those never realize to a single node —
// that should not happen once a tree has been flattened.
func RenderOne(n Node) RealizedNode {
	switch n.Kind {
	case KindText:
		return RealizedNode{Kind: KindText, Text: n.Text}
	case KindElement:
		return renderElement(n)
	case KindKeyedFragment:
		return renderKeyedFragment(n)
	default:
		panic(fmt.Errorf("%w: cannot realize a singleton %v node", ErrInvariant, n.Kind))
	}
}

func renderElement(n Node) RealizedNode {
	var bound map[string]*HandlerRef
	if len(n.Events) > 0 {
		bound = make(map[string]*HandlerRef, len(n.Events))
		for name, h := range n.Events {
			bound[name] = NewHandlerRef(h)
		}
	}
	r := RealizedNode{
		Kind:        KindElement,
		Tag:         n.Tag,
		Attrs:       n.Attrs,
		BoundEvents: bound,
		Children:    Render(n.Children),
	}
	return r
}

func renderKeyedFragment(n Node) RealizedNode {
	seen := make(map[string]bool, len(n.Keyed))
	entries := make([]RealizedKeyedChild, 0, len(n.Keyed))
	for _, kc := range n.Keyed {
		if seen[kc.Key] {
			// Author error: duplicate key. The later occurrence is dropped
			// (first-win semantics); no warning is logged for it.
			continue
		}
		seen[kc.Key] = true
		entries = append(entries, RealizedKeyedChild{
			Key:   kc.Key,
			Nodes: Render([]Node{kc.Node}),
		})
	}
	return RealizedNode{Kind: KindKeyedFragment, KeyedChildren: entries}
}

// DisposeAll releases every HandlerRef reachable from a realized array,
// used when an entire subtree is deleted or a mount is torn down.
func DisposeAll(nodes []RealizedNode) {
	for i := range nodes {
		disposeNode(&nodes[i])
	}
}

func disposeNode(n *RealizedNode) {
	switch n.Kind {
	case KindElement:
		for _, ref := range n.BoundEvents {
			ref.Dispose()
		}
		DisposeAll(n.Children)
	case KindKeyedFragment:
		for i := range n.KeyedChildren {
			DisposeAll(n.KeyedChildren[i].Nodes)
		}
	case KindConcat:
		DisposeAll(n.Children)
	}
}

// CountHandlers returns the number of live (non-disposed) HandlerRefs
// reachable from a realized array, used by tests asserting no handler leak.
func CountHandlers(nodes []RealizedNode) int {
	n := 0
	for i := range nodes {
		n += countHandlersNode(&nodes[i])
	}
	return n
}

func countHandlersNode(n *RealizedNode) int {
	switch n.Kind {
	case KindElement:
		count := 0
		for _, ref := range n.BoundEvents {
			if !ref.disposed {
				count++
			}
		}
		return count + CountHandlers(n.Children)
	case KindKeyedFragment:
		count := 0
		for i := range n.KeyedChildren {
			count += CountHandlers(n.KeyedChildren[i].Nodes)
		}
		return count
	default:
		return 0
	}
}
