// Package vdom implements the rendering core of the willow framework: an
// authored Node tree, its flattened Renderer output, the sibling-order
// Differ, and the Edit script the differ hands to a DOM patcher. Node,
// RealizedNode and Edit live side by side in one package since Handler's
// return type and RealizedNode's bound-event map already tie them together.
package vdom

// Kind tags the variant a Node carries.
type Kind uint8

const (
	// KindEmpty carries no DOM output.
	KindEmpty Kind = iota
	// KindText is a single text node.
	KindText
	// KindElement is a tagged DOM element with attributes, events and children.
	KindElement
	// KindConcat is transparent composition; it produces no DOM output of its own.
	KindConcat
	// KindKeyedFragment is an ordered, key-addressed sequence of children.
	KindKeyedFragment
)

// Handler is the callback bound to an event name on an Element. It is
// invoked by the event bridge with the extracted event argument (see
// ExtractEventArg) and returns the edit script produced by running the
// host's Update/View/diff cycle for the message the handler closed over.
type Handler func(arg any) []Edit

// KeyedChild pairs a stable string key with the authored Node it identifies
// inside a KeyedFragment.
type KeyedChild struct {
	Key  string
	Node Node
}

// Node is the immutable, author-facing value type for describing UI. It is
// a single tagged struct rather than a family of interfaces, which keeps
// reflect.DeepEqual-based table tests simple.
type Node struct {
	Kind Kind

	// Text is set when Kind == KindText.
	Text string

	// Tag, Attrs, Events and Children are set when Kind == KindElement.
	Tag      string
	Attrs    map[string]string
	Events   map[string]Handler
	Children []Node

	// Keyed is set when Kind == KindKeyedFragment.
	Keyed []KeyedChild

	// Concat is set when Kind == KindConcat.
	Concat []Node

	// Ref is carried on the authored Node only: Render does not copy it
	// into the RealizedNode, and neither the patcher nor the live client
	// invokes it.
	Ref func(ElementRef)
}

// Empty returns a node that contributes no DOM output.
func Empty() Node {
	return Node{Kind: KindEmpty}
}

// Text returns a text node.
func Text(s string) Node {
	return Node{Kind: KindText, Text: s}
}

// El returns an element node with the given tag, attributes, events and
// children. A nil attrs or events map is treated as empty.
func El(tag string, attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return Node{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    attrs,
		Events:   events,
		Children: children,
	}
}

// Concat composes a list of nodes transparently; it produces no DOM output
// of its own and is flattened away during rendering.
func Concat(nodes ...Node) Node {
	return Node{Kind: KindConcat, Concat: nodes}
}

// Keyed returns a keyed fragment from an ordered list of (key, node) pairs.
// Duplicate keys are not an error: rendering and diffing keep the first
// occurrence and drop the rest without logging a warning.
func Keyed(children ...KeyedChild) Node {
	return Node{Kind: KindKeyedFragment, Keyed: children}
}

// K is a convenience constructor for a single KeyedChild.
func K(key string, n Node) KeyedChild {
	return KeyedChild{Key: key, Node: n}
}

// Common tag shortcuts built through El.
func Div(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("div", attrs, events, children...)
}

func Span(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("span", attrs, events, children...)
}

func P(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("p", attrs, events, children...)
}

func H1(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("h1", attrs, events, children...)
}

func Button(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("button", attrs, events, children...)
}

func Input(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("input", attrs, events, children...)
}

func Ul(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("ul", attrs, events, children...)
}

func Li(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("li", attrs, events, children...)
}

func Form(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("form", attrs, events, children...)
}

func Label(attrs map[string]string, events map[string]Handler, children ...Node) Node {
	return El("label", attrs, events, children...)
}

// IsEmpty reports whether n is the Empty variant.
func (n Node) IsEmpty() bool { return n.Kind == KindEmpty }

// IsText reports whether n is a text node.
func (n Node) IsText() bool { return n.Kind == KindText }

// IsElement reports whether n is an element node.
func (n Node) IsElement() bool { return n.Kind == KindElement }

// IsConcat reports whether n is a concatenation node.
func (n Node) IsConcat() bool { return n.Kind == KindConcat }

// IsKeyedFragment reports whether n is a keyed fragment.
func (n Node) IsKeyedFragment() bool { return n.Kind == KindKeyedFragment }
