package bench

import (
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/loomkit/willow/pkg/live"
	"github.com/loomkit/willow/pkg/scheduler"
	"github.com/loomkit/willow/pkg/vango/vdom"
)

// TestDiffLatencyP95Under50ms mirrors a server-driven round trip: diff a
// 100-node sibling list, then wire-encode the resulting edit script, and
// checks that the combined cost's P95 stays under 50ms.
func TestDiffLatencyP95Under50ms(t *testing.T) {
	const rounds = 100

	latencies := make([]time.Duration, 0, rounds)
	before := vdom.Render([]vdom.Node{treeWithNNodes(100, "Node")})
	reg := live.NewRegistry()

	for i := 0; i < rounds; i++ {
		start := time.Now()

		edits, result := vdom.DiffSiblings(before, []vdom.Node{treeWithNNodes(100, modifiedLabel(i))})
		_ = live.EncodeEdits(edits, reg)

		latencies = append(latencies, time.Since(start))
		before = result
	}

	p50 := percentile(latencies, 50)
	p95 := percentile(latencies, 95)
	p99 := percentile(latencies, 99)
	t.Logf("diff+encode P50=%v P95=%v P99=%v", p50, p95, p99)

	if p95 > 50*time.Millisecond {
		t.Errorf("P95 latency %v exceeds 50ms budget", p95)
	}
}

// BenchmarkDiffSiblings benchmarks the differ alone against a 100-node list
// with every element's text and key attribute changed.
func BenchmarkDiffSiblings(b *testing.B) {
	before := vdom.Render([]vdom.Node{treeWithNNodes(100, "Node")})
	after := []vdom.Node{treeWithNNodes(100, "Modified")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vdom.DiffSiblings(before, after)
	}
}

// BenchmarkEncodeEdits benchmarks wire encoding of a typical edit script.
func BenchmarkEncodeEdits(b *testing.B) {
	before := vdom.Render([]vdom.Node{treeWithNNodes(100, "Node")})
	edits, _ := vdom.DiffSiblings(before, []vdom.Node{treeWithNNodes(100, "Modified")})
	reg := live.NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		live.EncodeEdits(edits, reg)
	}
}

// TestConcurrentFiberDispatch dispatches many messages across independent
// fibers concurrently and checks that per-dispatch latency stays bounded,
// matching the one-fiber-per-mount design: no fiber ever blocks on another.
func TestConcurrentFiberDispatch(t *testing.T) {
	const numFibers = 10
	const dispatchesPerFiber = 50

	var mu sync.Mutex
	var all []time.Duration

	var wg sync.WaitGroup
	for f := 0; f < numFibers; f++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count := 0
			fiber := scheduler.NewFiber(func(msg any) ([]vdom.Edit, error) {
				count++
				before := vdom.Render([]vdom.Node{treeWithNNodes(20, "Node")})
				edits, _ := vdom.DiffSiblings(before, []vdom.Node{treeWithNNodes(20, modifiedLabel(count))})
				return edits, nil
			}, nil)

			for i := 0; i < dispatchesPerFiber; i++ {
				start := time.Now()
				if _, err := fiber.Dispatch(i); err != nil {
					t.Error(err)
				}
				d := time.Since(start)

				mu.Lock()
				all = append(all, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	p95 := percentile(all, 95)
	t.Logf("concurrent dispatch (n=%d) P95=%v", len(all), p95)
	if p95 > 50*time.Millisecond {
		t.Errorf("concurrent dispatch P95 %v exceeds 50ms budget", p95)
	}
}

func treeWithNNodes(n int, label string) vdom.Node {
	children := make([]vdom.Node, n)
	for i := 0; i < n; i++ {
		children[i] = vdom.Div(map[string]string{"key": label}, nil, vdom.Text(label))
	}
	return vdom.Div(nil, nil, children...)
}

func modifiedLabel(seed int) string {
	if seed%10 == 0 {
		return "Modified"
	}
	return "Node"
}

func percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(math.Ceil(float64(len(sorted))*p/100.0)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
