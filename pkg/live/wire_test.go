package live

import (
	"encoding/json"
	"testing"

	"github.com/loomkit/willow/pkg/vango/vdom"
)

func TestEncodeNode_Element(t *testing.T) {
	n := vdom.RenderOne(vdom.Button(map[string]string{"class": "go"},
		map[string]vdom.Handler{"click": func(any) []vdom.Edit { return nil }},
		vdom.Text("go")))

	reg := NewRegistry()
	w := EncodeNode(n, reg)

	if w.IsText || w.Tag != "button" {
		t.Fatalf("encoded node = %+v, want button element", w)
	}
	if len(w.Events) != 1 {
		t.Fatalf("Events = %+v, want one click entry", w.Events)
	}
	if _, ok := w.Events["click"]; !ok {
		t.Errorf("Events = %+v, want a click entry", w.Events)
	}
	if len(w.Children) != 1 || !w.Children[0].IsText || w.Children[0].Text != "go" {
		t.Fatalf("Children = %+v, want single text child", w.Children)
	}
}

func TestWireNode_TextMarshalsAsBareString(t *testing.T) {
	w := WireNode{IsText: true, Text: "hello"}
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"hello"` {
		t.Errorf("Marshal() = %s, want a bare JSON string", data)
	}

	var back WireNode
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.IsText || back.Text != "hello" {
		t.Errorf("round trip = %+v, want text node hello", back)
	}
}

func TestWireNode_ElementMarshalsWithSingleKeys(t *testing.T) {
	w := WireNode{Tag: "div", Attrs: map[string]string{"class": "x"}}
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("result is not a JSON object: %v", err)
	}
	if _, ok := raw["n"]; !ok {
		t.Errorf("encoded element missing n field: %s", data)
	}
	if _, ok := raw["a"]; !ok {
		t.Errorf("encoded element missing a field: %s", data)
	}
	if _, ok := raw["e"]; ok {
		t.Errorf("encoded element should omit empty e field: %s", data)
	}
}

func TestWireEdit_SkipMarshalsAsSingleKey(t *testing.T) {
	data, err := json.Marshal(WireEdit{Op: WireSkip, N: 3})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"s":3}` {
		t.Errorf("Marshal() = %s, want {\"s\":3}", data)
	}
}

func TestWireEdit_MoveMarshalsFromAndN(t *testing.T) {
	data, err := json.Marshal(WireEdit{Op: WireMove, From: 1, N: 2})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"f":1,"n":2}` {
		t.Errorf("Marshal() = %s, want {\"f\":1,\"n\":2}", data)
	}

	var back WireEdit
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Op != WireMove || back.From != 1 || back.N != 2 {
		t.Errorf("round trip = %+v, want Move{From:1,N:2}", back)
	}
}

func TestWireEdit_InPlaceRoundTrips(t *testing.T) {
	removed := WireAttrDelta{"id": nil}
	w := WireEdit{Op: WireInPlace, Attrs: removed}

	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back WireEdit
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Op != WireInPlace {
		t.Fatalf("round trip op = %v, want WireInPlace", back.Op)
	}
	v, ok := back.Attrs["id"]
	if !ok || v != nil {
		t.Errorf("Attrs[id] = %v, want present and nil (removed)", v)
	}
}

func TestRegistry_StableIDAcrossRebind(t *testing.T) {
	reg := NewRegistry()
	ref := vdom.NewHandlerRef(func(any) []vdom.Edit { return nil })

	id1 := reg.IDFor(ref)
	ref.Rebind(func(any) []vdom.Edit { return nil })
	id2 := reg.IDFor(ref)

	if id1 != id2 {
		t.Errorf("id changed across rebind: %d != %d", id1, id2)
	}

	got, ok := reg.Lookup(id1)
	if !ok || got != ref {
		t.Errorf("Lookup(%d) = %v, %v; want ref, true", id1, got, ok)
	}
}

func TestRegistry_ForgetRemovesMapping(t *testing.T) {
	reg := NewRegistry()
	ref := vdom.NewHandlerRef(func(any) []vdom.Edit { return nil })
	id := reg.IDFor(ref)

	reg.Forget(ref)

	if _, ok := reg.Lookup(id); ok {
		t.Error("expected Lookup to fail after Forget")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Type: FrameEvent, NodeID: 7, Event: "click", Arg: "hello"}
	data, err := Marshal(f)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Type != f.Type || got.NodeID != f.NodeID || got.Event != f.Event {
		t.Errorf("round trip = %+v, want %+v", got, f)
	}
}

func TestEncodeEdits_ReplaceCarriesNewNode(t *testing.T) {
	before := vdom.Render([]vdom.Node{vdom.Text("a")})
	edits, _ := vdom.DiffSiblings(before, []vdom.Node{vdom.Div(nil, nil)})

	reg := NewRegistry()
	wireEdits := EncodeEdits(edits, reg)
	if len(wireEdits) != 1 || wireEdits[0].Op != WireReplace {
		t.Fatalf("wireEdits = %+v, want single replace", wireEdits)
	}
	if wireEdits[0].New == nil || wireEdits[0].New.IsText || wireEdits[0].New.Tag != "div" {
		t.Errorf("New = %v, want encoded div element", wireEdits[0].New)
	}
}

func TestEncodeEdits_KeyedMoveCarriesActualCount(t *testing.T) {
	before := vdom.Render([]vdom.Node{vdom.Keyed(
		vdom.K("a", vdom.Text("A")),
		vdom.K("b", vdom.Text("B")),
	)})

	afterNodes := []vdom.Node{vdom.Keyed(
		vdom.K("b", vdom.Text("B")),
		vdom.K("a", vdom.Text("A")),
	)}
	edits, _ := vdom.DiffSiblings(before, afterNodes)

	reg := NewRegistry()
	wireEdits := EncodeEdits(edits, reg)
	if len(wireEdits) != 1 || wireEdits[0].Op != WireInPlace {
		t.Fatalf("wireEdits = %+v, want single in-place keyed fragment edit", wireEdits)
	}

	foundMove := false
	for _, c := range wireEdits[0].Children {
		if c.Op == WireMove {
			foundMove = true
			if c.N != 1 {
				t.Errorf("Move.N = %d, want 1", c.N)
			}
		}
	}
	if !foundMove {
		t.Errorf("expected a move among %+v", wireEdits[0].Children)
	}
}

func TestEncodeNodes_FlattensKeyedFragmentRoot(t *testing.T) {
	root := vdom.RenderOne(vdom.Keyed(
		vdom.K("a", vdom.Text("A")),
		vdom.K("b", vdom.Text("B")),
	))

	reg := NewRegistry()
	nodes := EncodeNodes([]vdom.RealizedNode{root}, reg)
	if len(nodes) != 2 {
		t.Fatalf("nodes = %+v, want 2 flattened leaves", nodes)
	}
	if nodes[0].Text != "A" || nodes[1].Text != "B" {
		t.Errorf("nodes = %+v, want [A B]", nodes)
	}
}
