package bitmask

import (
	"math/bits"
	"strings"
)

// Width bounds for the channel count
const (
	MinWidth = 1
	MaxWidth = 16
)

// Mask is the raw channel bitmask, bit i = channel i
type Mask uint16

// Has reports whether bit index is set
func (m Mask) Has(index int) bool {
	if index < 0 || index >= MaxWidth {
		return false
	}
	return (m>>uint(index))&1 == 1
}

// Changed returns indices below width whose bits differ between m and other
// Indices are ascending
func (m Mask) Changed(other Mask, width int) []int {
	delta := uint16(m^other) & uint16(lowMask(width))
	if delta == 0 {
		return nil
	}
	out := make([]int, 0, bits.OnesCount16(delta))
	for delta != 0 {
		i := bits.TrailingZeros16(delta)
		out = append(out, i)
		delta &^= 1 << uint(i)
	}
	return out
}

// Registry owns the canonical mask and the configured channel width
// Zero value is not usable, construct with New
type Registry struct {
	mask  Mask
	width int
}

// New creates a registry with all bits clear, width clamped to [MinWidth, MaxWidth]
func New(width int) *Registry {
	return &Registry{width: ClampWidth(width)}
}

// ClampWidth bounds n to [MinWidth, MaxWidth]
func ClampWidth(n int) int {
	if n < MinWidth {
		return MinWidth
	}
	if n > MaxWidth {
		return MaxWidth
	}
	return n
}

// Width returns the number of addressable channels
func (r *Registry) Width() int {
	return r.width
}

// Mask returns the raw stored mask
// Bits at or above Width may be set if the width was lowered after they were set
func (r *Registry) Mask() Mask {
	return r.mask
}

// InRange reports whether index addresses a channel
func (r *Registry) InRange(index int) bool {
	return index >= 0 && index < r.width
}

// IsBitSet returns the bit value; out-of-range indices read as false
func (r *Registry) IsBitSet(index int) bool {
	if !r.InRange(index) {
		return false
	}
	return r.mask.Has(index)
}

// SetBit sets or clears the bit and reports whether the mask changed
// Out-of-range indices and no-op writes return false
func (r *Registry) SetBit(index int, enabled bool) bool {
	if !r.InRange(index) || r.mask.Has(index) == enabled {
		return false
	}
	r.mask ^= 1 << uint(index)
	return true
}

// ToggleBit flips the bit, returns false only for out-of-range indices
func (r *Registry) ToggleBit(index int) bool {
	if !r.InRange(index) {
		return false
	}
	r.mask ^= 1 << uint(index)
	return true
}

// SetMask replaces the mask wholesale, truncated to the current width
// Returns the previous mask
func (r *Registry) SetMask(m Mask) Mask {
	old := r.mask
	r.mask = m & lowMask(r.width)
	return old
}

// SetFromBinaryString replaces the mask with the parsed string in one assignment
// Returns the previous mask
func (r *Registry) SetFromBinaryString(s string) Mask {
	return r.SetMask(ParseBinary(s, r.width))
}

// SetWidth clamps and applies a new width, returns the applied width and whether it changed
// Stored bits above the new width are kept
func (r *Registry) SetWidth(n int) (int, bool) {
	n = ClampWidth(n)
	if n == r.width {
		return n, false
	}
	r.width = n
	return n, true
}

// Reset clears every stored bit, including unreachable ones
func (r *Registry) Reset() Mask {
	old := r.mask
	r.mask = 0
	return old
}

// String renders exactly Width characters, MSB first
func (r *Registry) String() string {
	return FormatBinary(r.mask, r.width)
}

// ParseBinary reads an MSB-first string of '0'/'1'
// Only the rightmost width runes count; any rune other than '1' reads as 0
func ParseBinary(s string, width int) Mask {
	width = ClampWidth(width)
	runes := []rune(s)
	if len(runes) > width {
		runes = runes[len(runes)-width:]
	}
	var m Mask
	for _, c := range runes {
		m <<= 1
		if c == '1' {
			m |= 1
		}
	}
	return m
}

// FormatBinary renders the low width bits of m, zero-padded, MSB first
func FormatBinary(m Mask, width int) string {
	width = ClampWidth(width)
	var sb strings.Builder
	sb.Grow(width)
	for i := width - 1; i >= 0; i-- {
		if m.Has(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func lowMask(width int) Mask {
	width = ClampWidth(width)
	if width == MaxWidth {
		return ^Mask(0)
	}
	return Mask(1)<<uint(width) - 1
}
