//go:build !js || !wasm
// +build !js !wasm

package vango

import "fmt"

// Instance is unusable outside a WASM build; ModeClient mounts only run
// in the browser.
type Instance struct{}

// Mount always fails outside a WASM build.
func Mount(selector string, app App) (*Instance, error) {
	return nil, fmt.Errorf("vango: Mount is only available in js/wasm builds")
}
