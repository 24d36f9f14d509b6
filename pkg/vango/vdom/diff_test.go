package vdom

import "testing"

func opsOf(edits []Edit) []EditOp {
	ops := make([]EditOp, len(edits))
	for i, e := range edits {
		ops[i] = e.Op
	}
	return ops
}

func assertOps(t *testing.T, got []Edit, want []EditOp) {
	t.Helper()
	gotOps := opsOf(got)
	if len(gotOps) != len(want) {
		t.Fatalf("edits = %v (%d ops), want %d ops %v", got, len(gotOps), len(want), want)
	}
	for i := range want {
		if gotOps[i] != want[i] {
			t.Errorf("edit %d op = %v, want %v (full: %v)", i, gotOps[i], want[i], got)
		}
	}
}

func TestDiffSiblings_TextUnchangedSkips(t *testing.T) {
	before := Render([]Node{Text("same")})
	edits, _ := DiffSiblings(before, []Node{Text("same")})
	assertOps(t, edits, []EditOp{OpSkip})
	if edits[0].N != 1 {
		t.Errorf("Skip.N = %d, want 1", edits[0].N)
	}
}

func TestDiffSiblings_TextChangedReplaces(t *testing.T) {
	before := Render([]Node{Text("Hello")})
	edits, result := DiffSiblings(before, []Node{Text("World")})
	assertOps(t, edits, []EditOp{OpReplace})
	if edits[0].New.Text != "World" {
		t.Errorf("Replace.New.Text = %q, want World", edits[0].New.Text)
	}
	if result[0].Text != "World" {
		t.Errorf("result[0].Text = %q, want World", result[0].Text)
	}
}

func TestDiffSiblings_KindMismatchReplaces(t *testing.T) {
	before := Render([]Node{Text("Text")})
	edits, _ := DiffSiblings(before, []Node{Div(nil, nil)})
	assertOps(t, edits, []EditOp{OpReplace})
	if edits[0].New.Kind != KindElement {
		t.Errorf("expected replacement to realize an element, got %v", edits[0].New.Kind)
	}
}

func TestDiffSiblings_TagMismatchReplaces(t *testing.T) {
	before := Render([]Node{Div(nil, nil)})
	edits, _ := DiffSiblings(before, []Node{Span(nil, nil)})
	assertOps(t, edits, []EditOp{OpReplace})
}

func TestDiffSiblings_AttributeAddChangeRemove(t *testing.T) {
	before := Render([]Node{Div(map[string]string{"class": "old", "id": "x"}, nil)})
	after := []Node{Div(map[string]string{"class": "new", "data-new": "v"}, nil)}

	edits, _ := DiffSiblings(before, after)
	assertOps(t, edits, []EditOp{OpInPlace})

	byName := map[string]AttrChange{}
	for _, c := range edits[0].AttrDelta {
		byName[c.Name] = c
	}
	if c, ok := byName["class"]; !ok || c.Value != "new" || c.Removed {
		t.Errorf("class change = %+v, want set to new", c)
	}
	if c, ok := byName["id"]; !ok || !c.Removed {
		t.Errorf("id change = %+v, want removed", c)
	}
	if c, ok := byName["data-new"]; !ok || c.Value != "v" {
		t.Errorf("data-new change = %+v, want set to v", c)
	}
}

func TestDiffSiblings_NoOpElementCoalescesToSkip(t *testing.T) {
	attrs := map[string]string{"class": "same"}
	before := Render([]Node{Div(attrs, nil, Text("a"))})
	edits, _ := DiffSiblings(before, []Node{Div(attrs, nil, Text("a"))})
	assertOps(t, edits, []EditOp{OpSkip})
}

func TestDiffSiblings_EventRebindKeepsHandlerRef(t *testing.T) {
	first := func(any) []Edit { return []Edit{{Op: OpSkip, N: 1}} }
	second := func(any) []Edit { return []Edit{{Op: OpSkip, N: 2}} }

	before := Render([]Node{Button(nil, map[string]Handler{"click": first})})
	originalRef := before[0].BoundEvents["click"]

	edits, result := DiffSiblings(before, []Node{Button(nil, map[string]Handler{"click": second})})
	assertOps(t, edits, []EditOp{OpSkip})

	if result[0].BoundEvents["click"] != originalRef {
		t.Error("expected the same HandlerRef to survive an in-place diff")
	}
	if originalRef.Disposed() {
		t.Error("surviving handler must not be disposed")
	}
	if got := originalRef.Handler()(nil); len(got) != 1 || got[0].N != 2 {
		t.Errorf("Handler() = %v, want the rebound closure's result", got)
	}
}

func TestDiffSiblings_EventRemovedDisposesRef(t *testing.T) {
	before := Render([]Node{Button(nil, map[string]Handler{"click": func(any) []Edit { return nil }})})
	originalRef := before[0].BoundEvents["click"]

	DiffSiblings(before, []Node{Button(nil, nil)})

	if !originalRef.Disposed() {
		t.Error("expected removed handler's ref to be disposed")
	}
}

func TestDiffSiblings_TrailingInsertAndDelete(t *testing.T) {
	before := Render([]Node{Text("a"), Text("b")})

	insEdits, insResult := DiffSiblings(before, []Node{Text("a"), Text("b"), Text("c")})
	assertOps(t, insEdits, []EditOp{OpSkip, OpInsert})
	if len(insResult) != 3 || insResult[2].Text != "c" {
		t.Errorf("result = %v, want trailing c", insResult)
	}

	delEdits, delResult := DiffSiblings(before, []Node{Text("a")})
	assertOps(t, delEdits, []EditOp{OpSkip, OpDelete})
	if len(delResult) != 1 {
		t.Errorf("result = %v, want single surviving node", delResult)
	}
}

func TestDiffSiblings_DisposesReplacedSubtreeHandlers(t *testing.T) {
	before := Render([]Node{Button(nil, map[string]Handler{"click": func(any) []Edit { return nil }})})
	ref := before[0].BoundEvents["click"]

	DiffSiblings(before, []Node{Span(nil, nil)})

	if !ref.Disposed() {
		t.Error("replacing a subtree must dispose its handlers")
	}
}

func TestDiffKeyedFragment_StableKeysSkip(t *testing.T) {
	kf := func() Node {
		return Keyed(K("a", Text("A")), K("b", Text("B")))
	}
	before := Render([]Node{kf()})
	edit, _ := diffKeyedFragment(before[0], kf())
	if edit.Op != OpSkip {
		t.Errorf("op = %v, want Skip for an unchanged keyed list", edit.Op)
	}
}

func TestDiffKeyedFragment_ReorderProducesMove(t *testing.T) {
	before := Render([]Node{Keyed(K("a", Text("A")), K("b", Text("B")))})
	edit, result := diffKeyedFragment(before[0], Keyed(K("b", Text("B")), K("a", Text("A"))))

	foundMove := false
	for _, e := range edit.ChildEdits {
		if e.Op == OpMove {
			foundMove = true
		}
	}
	if !foundMove {
		t.Errorf("expected a Move edit for a reordered key, got %v", edit.ChildEdits)
	}
	if len(result.KeyedChildren) != 2 || result.KeyedChildren[0].Key != "b" {
		t.Errorf("result order = %v, want [b a]", result.KeyedChildren)
	}
}

func TestDiffKeyedFragment_DisappearingKeyDeletes(t *testing.T) {
	before := Render([]Node{Keyed(K("a", Text("A")), K("b", Text("B")))})
	edit, result := diffKeyedFragment(before[0], Keyed(K("a", Text("A"))))

	foundDelete := false
	for _, e := range edit.ChildEdits {
		if e.Op == OpDelete {
			foundDelete = true
		}
	}
	if !foundDelete {
		t.Errorf("expected a Delete edit for a disappearing key, got %v", edit.ChildEdits)
	}
	if len(result.KeyedChildren) != 1 || result.KeyedChildren[0].Key != "a" {
		t.Errorf("result = %v, want only key a", result.KeyedChildren)
	}
}

func TestDiffKeyedFragment_NewKeyInserts(t *testing.T) {
	before := Render([]Node{Keyed(K("a", Text("A")))})
	edit, result := diffKeyedFragment(before[0], Keyed(K("a", Text("A")), K("c", Text("C"))))

	foundInsert := false
	for _, e := range edit.ChildEdits {
		if e.Op == OpInsert {
			foundInsert = true
		}
	}
	if !foundInsert {
		t.Errorf("expected an Insert edit for a new key, got %v", edit.ChildEdits)
	}
	if len(result.KeyedChildren) != 2 || result.KeyedChildren[1].Key != "c" {
		t.Errorf("result = %v, want [a c]", result.KeyedChildren)
	}
}

// TestNoHandlerLeak exercises property P4: across a sequence of diffs,
// the number of live HandlerRefs must always equal the number of events
// currently authored, never more.
func TestNoHandlerLeak(t *testing.T) {
	mk := func(n int) Node {
		children := make([]Node, n)
		for i := range children {
			children[i] = Button(nil, map[string]Handler{"click": func(any) []Edit { return nil }})
		}
		return Div(nil, nil, children...)
	}

	realized := Render([]Node{mk(3)})
	if got := CountHandlers(realized); got != 3 {
		t.Fatalf("after initial render, CountHandlers() = %d, want 3", got)
	}

	_, realized = DiffSiblings(realized, []Node{mk(1)})
	if got := CountHandlers(realized); got != 1 {
		t.Fatalf("after shrink, CountHandlers() = %d, want 1", got)
	}

	_, realized = DiffSiblings(realized, []Node{mk(5)})
	if got := CountHandlers(realized); got != 5 {
		t.Fatalf("after grow, CountHandlers() = %d, want 5", got)
	}
}
