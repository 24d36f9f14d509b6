package vdom

// diffKeyedFragment diffs a single before/after keyed fragment slot. It
// never itself appears as a top-level edit: the reconciliation it computes
// is folded into an OpInPlace whose ChildEdits are expressed over actual
// DOM slots, exactly like an element's child diff, so the patcher doesn't
// need a separate code path for "inside a fragment" versus "inside an
// element".
//
// Reconciliation runs in two passes over the before-side entries: the first
// pass walks the before order,
// deleting any entry whose key no longer appears in after (a disappearing
// key); the second walks the after order, matching each key against its
// surviving before entry either as an in-place update (key kept its
// relative position) or a Move (key survived but moved forward), and
// realizing any key with no before counterpart as an Insert.
func diffKeyedFragment(b RealizedNode, a Node) (Edit, RealizedNode) {
	before := b.KeyedChildren
	after := a.Keyed

	beforeIdx := make(map[string]int, len(before))
	for i, kc := range before {
		if _, dup := beforeIdx[kc.Key]; !dup {
			beforeIdx[kc.Key] = i
		}
	}
	afterKeys := make(map[string]bool, len(after))
	for _, kc := range after {
		afterKeys[kc.Key] = true
	}

	var edits []Edit
	handled := make([]bool, len(before))

	// Pass 1: delete before-entries whose key disappeared, in before order,
	// coalescing consecutive runs.
	for i, kc := range before {
		if !afterKeys[kc.Key] {
			DisposeAll(kc.Nodes)
			edits = appendCoalesced(edits, Edit{Op: OpDelete, N: actualCountOf(kc.Nodes)})
			handled[i] = true // handled as "disposed of", not matched
		}
	}

	// Pass 2: walk after in order. lastMatched tracks the highest before
	// index placed so far; a key whose before index is less than lastMatched
	// has fallen out of order and must move.
	resultEntries := make([]RealizedKeyedChild, 0, len(after))
	lastMatched := -1
	seen := make(map[string]bool, len(after))

	for _, kc := range after {
		if seen[kc.Key] {
			continue // duplicate key in the authored fragment: first wins
		}
		seen[kc.Key] = true

		bi, existed := beforeIdx[kc.Key]
		if !existed {
			r := Render([]Node{kc.Node})
			edits = appendCoalesced(edits, Edit{Op: OpInsert, New: wrapSingleton(r)})
			resultEntries = append(resultEntries, RealizedKeyedChild{Key: kc.Key, Nodes: r})
			continue
		}

		beforeEntry := before[bi]
		subEdits, subResult := DiffSiblings(beforeEntry.Nodes, []Node{kc.Node})
		resultEntries = append(resultEntries, RealizedKeyedChild{Key: kc.Key, Nodes: subResult})

		if bi < lastMatched {
			// Out of order relative to prior matches: relocate, then apply
			// whatever in-place delta the content itself needs.
			edits = appendCoalesced(edits, Edit{
				Op:   OpMove,
				From: actualOffsetBefore(before, bi),
				N:    actualCountOf(beforeEntry.Nodes),
			})
			edits = appendCoalesced(edits, subEdits...)
			continue
		}
		lastMatched = bi
		edits = appendCoalesced(edits, subEdits...)
	}

	result := RealizedNode{Kind: KindKeyedFragment, KeyedChildren: resultEntries}

	if len(edits) == 1 && edits[0].Op == OpSkip {
		return Edit{Op: OpSkip, N: edits[0].N}, result
	}
	if len(edits) == 0 {
		return Edit{Op: OpSkip, N: 0}, result
	}
	return Edit{Op: OpInPlace, ChildEdits: edits}, result
}

// wrapSingleton collapses a single-node realized slice into the one
// RealizedNode an OpInsert/OpReplace edit carries. A KeyedChild's authored
// Node can itself realize to zero or more than one actual node (e.g. it is
// Empty or a Concat); those nodes are then carried as the Children of a
// KindConcat RealizedNode, which the patcher and the wire encoder flatten.
func wrapSingleton(nodes []RealizedNode) RealizedNode {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return RealizedNode{Kind: KindConcat, Children: nodes}
}

// actualOffsetBefore returns the actual-DOM-slot offset of before[idx]
// relative to the start of the before-side keyed fragment.
func actualOffsetBefore(before []RealizedKeyedChild, idx int) int {
	n := 0
	for i := 0; i < idx; i++ {
		n += actualCountOf(before[i].Nodes)
	}
	return n
}
