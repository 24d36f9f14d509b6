//go:build !js || !wasm
// +build !js !wasm

package vdom

// ElementRef is an opaque handle in non-WASM builds. Ref callbacks are
// never invoked outside a WASM mount, since there is no live DOM to hand
// back; the alias exists so shared code can still reference the type.
type ElementRef = any
