// Package pool defines pool identity, state and operation parameters.
package pool

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/meridex/settle/id"
	"github.com/meridex/settle/types"
)

// Fee tiers in hundredths of a basis point (pips).
const (
	Fee001 uint32 = 100    // 0.01% - stable pairs
	Fee005 uint32 = 500    // 0.05%
	Fee030 uint32 = 3000   // 0.30% - standard
	Fee100 uint32 = 10000  // 1.00% - exotic pairs
	FeeMax uint32 = 100000 // 10% cap
)

// FeeDenominator converts a fee value to a fraction of the traded amount.
const FeeDenominator = 1_000_000

// ID uniquely identifies a pool as the hash of its key.
type ID [32]byte

// String returns the hex form of the pool ID.
func (p ID) String() string { return hex.EncodeToString(p[:]) }

// IDFromString parses the hex form of a pool ID.
func IDFromString(s string) (ID, error) {
	var p ID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(p) {
		return ID{}, errInvalidPoolID(s)
	}
	copy(p[:], b)
	return p, nil
}

// Key identifies a pool by its sorted asset pair, fee tier, spacing and
// optional extension. Two keys with the same fields address the same pool.
type Key struct {
	Asset0    types.Asset    // Lower-sorting asset
	Asset1    types.Asset    // Higher-sorting asset
	Fee       uint32         // Fee in pips
	Spacing   int32          // Price-step granularity for the curve
	Extension id.ExtensionID // Nil when the pool has no extension
}

// Sorted reports whether the asset pair is in canonical order.
func (k Key) Sorted() bool {
	return k.Asset0.Less(k.Asset1)
}

// HasExtension reports whether the pool carries an extension.
func (k Key) HasExtension() bool { return !k.Extension.IsNil() }

// ID computes the unique pool identifier.
func (k Key) ID() ID {
	h := blake3.New()
	h.Write([]byte(k.Asset0))
	h.Write([]byte{0})
	h.Write([]byte(k.Asset1))
	h.Write([]byte{0})

	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], k.Fee)
	binary.BigEndian.PutUint32(buf[4:], uint32(k.Spacing))
	h.Write(buf[:])

	h.Write([]byte(k.Extension.String()))

	var pid ID
	h.Digest().Read(pid[:])
	return pid
}
