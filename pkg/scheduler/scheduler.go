// Package scheduler runs a single mount's Update/View/diff cycle. A willow
// mount owns exactly one fiber whose dispatch is serialized under a mutex:
// at most one suspension point exists per mount (a round trip to the host
// or browser), so there is never more than one render in flight for a
// given fiber to coordinate with.
package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/loomkit/willow/pkg/vango/vdom"
)

// RenderFunc runs one Update/View pass for whatever message triggered it
// and returns the new realized tree's diff against the fiber's last render.
type RenderFunc func(msg any) ([]vdom.Edit, error)

// ErrorHandler handles a panic recovered from a RenderFunc. Returning true
// keeps the fiber scheduled; returning false marks it degraded so no
// further dispatch is attempted.
type ErrorHandler func(fiber *Fiber, err any) bool

// debugLog is set by platform-specific code: pkg/debug wires it to
// console.log in a WASM build. It is left nil in host builds, which use
// log/slog through pkg/server instead.
var debugLog func(args ...interface{})

// SetDebugLog installs the debug logging sink.
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Fiber is the execution context for one mounted component: its render
// function, its mutex-guarded dispatch, and whether it has been disabled
// by an unrecovered error.
type Fiber struct {
	mu        sync.Mutex
	render    RenderFunc
	onError   ErrorHandler
	degraded  bool
}

// NewFiber constructs a fiber around a render function.
func NewFiber(render RenderFunc, onError ErrorHandler) *Fiber {
	return &Fiber{render: render, onError: onError}
}

// Dispatch runs one render cycle for msg, recovering from any panic the
// render function raises. It is safe to call concurrently; calls are
// serialized so a mount's Update/View/diff cycle is never reentered while
// the previous one is still in flight.
func (f *Fiber) Dispatch(msg any) (edits []vdom.Edit, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.degraded {
		return nil, fmt.Errorf("scheduler: fiber is degraded, dispatch refused")
	}

	defer func() {
		if r := recover(); r != nil {
			if debugLog != nil {
				debugLog("fiber panic:", r, string(debug.Stack()))
			}
			keepGoing := true
			if f.onError != nil {
				keepGoing = f.onError(f, r)
			}
			if !keepGoing {
				f.degraded = true
			}
			err = fmt.Errorf("scheduler: render panicked: %v", r)
		}
	}()

	return f.render(msg)
}

// Degraded reports whether this fiber has stopped accepting dispatches.
func (f *Fiber) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}
