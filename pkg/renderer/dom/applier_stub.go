//go:build !js || !wasm
// +build !js !wasm

package dom

import (
	"fmt"

	"github.com/loomkit/willow/pkg/vango/vdom"
)

// Patcher is a stub for non-WASM builds: there is no live DOM to patch
// outside a browser, so every call fails loudly rather than silently
// doing nothing.
type Patcher struct{}

// NewPatcher returns a stub Patcher.
func NewPatcher() *Patcher {
	return &Patcher{}
}

// Apply always fails outside a WASM build.
func (p *Patcher) Apply(edits []vdom.Edit, parent any) error {
	return fmt.Errorf("dom: patching is only available in js/wasm builds")
}
