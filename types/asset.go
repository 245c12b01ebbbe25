// Package types provides common types used across Settle.
package types

import "strings"

// Asset identifies a fungible asset by its canonical symbol, e.g. "usdc",
// "weth". Symbols are compared byte-wise; pool keys require the pair to be
// sorted so that every (a, b) pair maps to exactly one pool identity.
type Asset string

// Native is the synthetic asset with no external balance of its own.
// It is exempt from reserve syncing and always reports as unsynced.
const Native Asset = ""

// IsNative reports whether the asset is the synthetic native asset.
func (a Asset) IsNative() bool { return a == Native }

// String returns the asset symbol, or "native" for the synthetic asset.
func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}
	return string(a)
}

// Less reports whether a sorts before other, byte-wise. The native asset
// sorts before every named asset.
func (a Asset) Less(other Asset) bool {
	return strings.Compare(string(a), string(other)) < 0
}

// SortAssets returns the pair in canonical order.
func SortAssets(a, b Asset) (Asset, Asset) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}
