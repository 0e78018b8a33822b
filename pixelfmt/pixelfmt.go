/*
NAME
  pixelfmt.go

DESCRIPTION
  pixelfmt.go converts the eight fixed-function pixel formats used by the
  sprite container (CI4, CI8, I4, I8, IA4, IA8, RGBA16, RGBA32) to a
  canonical RGBA8 byte buffer, replicating the source hardware's 5→8 and
  1→8 bit-expansion rules exactly.

LICENSE
  SPDX-License-Identifier: MIT
*/

// Package pixelfmt converts fixed-function console pixel formats to RGBA8.
package pixelfmt

import (
	"fmt"

	"github.com/bk64tools/bkasset/bkerr"
)

// Format identifies one of the eight source pixel encodings.
type Format int

const (
	CI4 Format = iota
	CI8
	I4
	I8
	IA4
	IA8
	RGBA16
	RGBA32
)

func (f Format) String() string {
	switch f {
	case CI4:
		return "CI4"
	case CI8:
		return "CI8"
	case I4:
		return "I4"
	case I8:
		return "I8"
	case IA4:
		return "IA4"
	case IA8:
		return "IA8"
	case RGBA16:
		return "RGBA16"
	case RGBA32:
		return "RGBA32"
	default:
		return "unknown"
	}
}

// BitsPerPixel returns the source bit depth of f.
func (f Format) BitsPerPixel() int {
	switch f {
	case CI4, I4, IA4:
		return 4
	case CI8, I8, IA8:
		return 8
	case RGBA16:
		return 16
	case RGBA32:
		return 32
	default:
		return 0
	}
}

// Indexed reports whether f requires a palette.
func (f Format) Indexed() bool { return f == CI4 || f == CI8 }

// expand5to8 replicates a 5-bit channel into 8 bits: the three high-order
// source bits fill the bottom, so expand(0)==0 and expand(31)==255.
func expand5to8(c5 byte) byte {
	return (c5 << 3) | (c5 >> 2)
}

// expand4to8 replicates a 4-bit nibble into 8 bits.
func expand4to8(n byte) byte {
	return (n << 4) | n
}

// expand3to8 replicates a 3-bit intensity field into 8 bits, used by IA4.
func expand3to8(i3 byte) byte {
	return (i3 << 5) | (i3 << 2) | (i3 >> 1)
}

// expand1to8 expands a single alpha bit to 0x00 or 0xFF.
func expand1to8(bit byte) byte {
	if bit != 0 {
		return 0xFF
	}
	return 0x00
}

// rgb5551ToRGBA8 decodes one big-endian RGB5551 halfword into four RGBA8
// bytes: 5 bits red, 5 green, 5 blue, 1 alpha.
func rgb5551ToRGBA8(hi, lo byte) [4]byte {
	v := uint16(hi)<<8 | uint16(lo)
	r := byte(v>>11) & 0x1F
	g := byte(v>>6) & 0x1F
	b := byte(v>>1) & 0x1F
	a := byte(v & 0x1)
	return [4]byte{expand5to8(r), expand5to8(g), expand5to8(b), expand1to8(a)}
}

// DecodeRGBA16 converts a buffer of big-endian RGB5551 halfwords to RGBA8.
func DecodeRGBA16(src []byte) ([]byte, error) {
	if len(src)%2 != 0 {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindTruncated,
			"RGBA16 source length %d is not a multiple of 2", len(src))
	}
	out := make([]byte, 0, len(src)*2)
	for i := 0; i < len(src); i += 2 {
		px := rgb5551ToRGBA8(src[i], src[i+1])
		out = append(out, px[:]...)
	}
	return out, nil
}

// DecodeRGBA32 passes an already-RGBA8 source through verbatim.
func DecodeRGBA32(src []byte) ([]byte, error) {
	if len(src)%4 != 0 {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindTruncated,
			"RGBA32 source length %d is not a multiple of 4", len(src))
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// DecodeI4 converts a buffer of 4-bit intensity nibbles (two per byte) to
// RGBA8, with intensity mapped to all three color channels and alpha fixed
// at 0xFF.
func DecodeI4(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src)*2*4)
	for _, b := range src {
		hi := expand4to8(b >> 4)
		lo := expand4to8(b & 0xF)
		out = append(out, hi, hi, hi, 0xFF, lo, lo, lo, 0xFF)
	}
	return out, nil
}

// DecodeI8 converts a buffer of 8-bit intensity bytes to RGBA8.
func DecodeI8(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src)*4)
	for _, b := range src {
		out = append(out, b, b, b, 0xFF)
	}
	return out, nil
}

// DecodeIA4 converts a buffer of packed 4-bit IA nibbles (two per byte,
// high nibble first) to RGBA8. Within each nibble the high 3 bits are
// intensity and the low bit is alpha.
func DecodeIA4(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src)*2*4)
	for _, b := range src {
		for _, nib := range [2]byte{b >> 4, b & 0xF} {
			i3 := (nib >> 1) & 0x7
			a1 := nib & 0x1
			i8 := expand3to8(i3)
			a8 := expand1to8(a1)
			out = append(out, i8, i8, i8, a8)
		}
	}
	return out, nil
}

// DecodeIA8 converts a buffer of bytes, each holding a 4-bit intensity
// nibble and a 4-bit alpha nibble, to RGBA8.
func DecodeIA8(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src)*4)
	for _, b := range src {
		i8 := expand4to8(b >> 4)
		a8 := expand4to8(b & 0xF)
		out = append(out, i8, i8, i8, a8)
	}
	return out, nil
}

// DecodeCI4 converts a buffer of packed 4-bit palette indices (two per
// byte, high nibble first) to RGBA8 using a 16-entry RGB5551 palette.
func DecodeCI4(src []byte, palette []byte) ([]byte, error) {
	if palette == nil {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindPaletteMissing, "CI4 requires a 16-entry palette")
	}
	out := make([]byte, 0, len(src)*2*4)
	for _, b := range src {
		for _, idx := range [2]byte{b >> 4, b & 0xF} {
			px, err := paletteLookup(palette, int(idx))
			if err != nil {
				return nil, err
			}
			out = append(out, px[:]...)
		}
	}
	return out, nil
}

// DecodeCI8 converts a buffer of 8-bit palette indices to RGBA8 using a
// 256-entry RGB5551 palette.
func DecodeCI8(src []byte, palette []byte) ([]byte, error) {
	if palette == nil {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindPaletteMissing, "CI8 requires a 256-entry palette")
	}
	out := make([]byte, 0, len(src)*4)
	for _, idx := range src {
		px, err := paletteLookup(palette, int(idx))
		if err != nil {
			return nil, err
		}
		out = append(out, px[:]...)
	}
	return out, nil
}

func paletteLookup(palette []byte, idx int) ([4]byte, error) {
	off := idx * 2
	if off+1 >= len(palette) {
		return [4]byte{}, bkerr.Newf("pixelfmt", off, bkerr.KindTruncated,
			"palette index %d out of range for %d-entry palette", idx, len(palette)/2)
	}
	return rgb5551ToRGBA8(palette[off], palette[off+1]), nil
}

// Decode dispatches to the decoder for format, validating that an indexed
// format was given a non-nil palette. An unknown/"unknown" format (handled
// upstream by the sprite codec) is a programmer error here.
func Decode(format Format, src, palette []byte) ([]byte, error) {
	switch format {
	case CI4:
		return DecodeCI4(src, palette)
	case CI8:
		return DecodeCI8(src, palette)
	case I4:
		return DecodeI4(src)
	case I8:
		return DecodeI8(src)
	case IA4:
		return DecodeIA4(src)
	case IA8:
		return DecodeIA8(src)
	case RGBA16:
		return DecodeRGBA16(src)
	case RGBA32:
		return DecodeRGBA32(src)
	default:
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindInvariantViolation, "%s", fmt.Sprintf("unsupported pixel format %v", format))
	}
}
