/*
NAME
  encode.go

DESCRIPTION
  encode.go provides the inverse of pixelfmt.go's Decode functions: given a
  canonical RGBA8 buffer that was produced by Decode, recover the original
  fixed-function source bytes. The bit-compression rules are the exact
  inverse of the expansion rules in pixelfmt.go, so a buffer that came from
  Decode round-trips losslessly, except that a CI4/CI8 pixel whose colour
  sits in several palette slots encodes to the lowest such slot.

LICENSE
  SPDX-License-Identifier: MIT
*/

package pixelfmt

import "github.com/bk64tools/bkasset/bkerr"

// compress5 recovers a 5-bit channel from its expand5to8 result.
func compress5(c8 byte) byte { return c8 >> 3 }

// compress4 recovers a 4-bit nibble from its expand4to8 result.
func compress4(c8 byte) byte { return c8 >> 4 }

// compress3 recovers a 3-bit intensity field from its expand3to8 result.
func compress3(c8 byte) byte { return c8 >> 5 }

// compress1 recovers a single alpha bit from its expand1to8 result.
func compress1(c8 byte) byte {
	if c8 != 0 {
		return 1
	}
	return 0
}

// rgba8ToRGB5551 packs one RGBA8 pixel into a big-endian RGB5551 halfword.
func rgba8ToRGB5551(px [4]byte) (hi, lo byte) {
	r, g, b, a := compress5(px[0]), compress5(px[1]), compress5(px[2]), compress1(px[3])
	v := uint16(r)<<11 | uint16(g)<<6 | uint16(b)<<1 | uint16(a)
	return byte(v >> 8), byte(v)
}

// EncodeRGBA16 packs an RGBA8 buffer into big-endian RGB5551 halfwords.
func EncodeRGBA16(src []byte) ([]byte, error) {
	if len(src)%4 != 0 {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindTruncated,
			"RGBA8 source length %d is not a multiple of 4", len(src))
	}
	out := make([]byte, 0, len(src)/2)
	for i := 0; i < len(src); i += 4 {
		hi, lo := rgba8ToRGB5551([4]byte{src[i], src[i+1], src[i+2], src[i+3]})
		out = append(out, hi, lo)
	}
	return out, nil
}

// EncodeRGBA32 passes an RGBA8 buffer through verbatim.
func EncodeRGBA32(src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// EncodeI4 packs an RGBA8 buffer, two pixels per byte, using each pixel's
// red channel as its intensity nibble.
func EncodeI4(src []byte) ([]byte, error) {
	if len(src)%8 != 0 {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindTruncated,
			"I4 source must hold an even number of pixels, got %d bytes", len(src))
	}
	out := make([]byte, 0, len(src)/8)
	for i := 0; i < len(src); i += 8 {
		hi := compress4(src[i])
		lo := compress4(src[i+4])
		out = append(out, hi<<4|lo)
	}
	return out, nil
}

// EncodeI8 packs an RGBA8 buffer to one intensity byte per pixel, taken
// from the red channel.
func EncodeI8(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src)/4)
	for i := 0; i < len(src); i += 4 {
		out = append(out, src[i])
	}
	return out, nil
}

// EncodeIA4 packs an RGBA8 buffer, two pixels per byte, each nibble holding
// a 3-bit intensity and a 1-bit alpha.
func EncodeIA4(src []byte) ([]byte, error) {
	if len(src)%8 != 0 {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindTruncated,
			"IA4 source must hold an even number of pixels, got %d bytes", len(src))
	}
	out := make([]byte, 0, len(src)/8)
	for i := 0; i < len(src); i += 8 {
		hiNib := compress3(src[i])<<1 | compress1(src[i+3])
		loNib := compress3(src[i+4])<<1 | compress1(src[i+7])
		out = append(out, hiNib<<4|loNib)
	}
	return out, nil
}

// EncodeIA8 packs an RGBA8 buffer to one byte per pixel, a 4-bit intensity
// nibble and a 4-bit alpha nibble.
func EncodeIA8(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src)/4)
	for i := 0; i < len(src); i += 4 {
		out = append(out, compress4(src[i])<<4|compress4(src[i+3]))
	}
	return out, nil
}

// buildPaletteIndex maps each RGB5551 entry's decoded RGBA8 value to its
// palette slot, for reversing CI4/CI8.
func buildPaletteIndex(palette []byte) map[[4]byte]int {
	out := make(map[[4]byte]int, len(palette)/2)
	for i := 0; i+1 < len(palette); i += 2 {
		px := rgb5551ToRGBA8(palette[i], palette[i+1])
		idx := i / 2
		if _, exists := out[px]; !exists {
			out[px] = idx
		}
	}
	return out
}

func lookupIndex(index map[[4]byte]int, px [4]byte) (int, error) {
	i, ok := index[px]
	if !ok {
		return 0, bkerr.Newf("pixelfmt", 0, bkerr.KindPaletteMissing,
			"pixel %v has no matching palette entry", px)
	}
	return i, nil
}

// EncodeCI4 packs an RGBA8 buffer, two pixels per byte, as 4-bit indices
// into palette.
func EncodeCI4(src, palette []byte) ([]byte, error) {
	index := buildPaletteIndex(palette)
	if len(src)%8 != 0 {
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindTruncated,
			"CI4 source must hold an even number of pixels, got %d bytes", len(src))
	}
	out := make([]byte, 0, len(src)/8)
	for i := 0; i < len(src); i += 8 {
		hi, err := lookupIndex(index, [4]byte{src[i], src[i+1], src[i+2], src[i+3]})
		if err != nil {
			return nil, err
		}
		lo, err := lookupIndex(index, [4]byte{src[i+4], src[i+5], src[i+6], src[i+7]})
		if err != nil {
			return nil, err
		}
		out = append(out, byte(hi)<<4|byte(lo))
	}
	return out, nil
}

// EncodeCI8 packs an RGBA8 buffer to one 8-bit palette index per pixel.
func EncodeCI8(src, palette []byte) ([]byte, error) {
	index := buildPaletteIndex(palette)
	out := make([]byte, 0, len(src)/4)
	for i := 0; i < len(src); i += 4 {
		idx, err := lookupIndex(index, [4]byte{src[i], src[i+1], src[i+2], src[i+3]})
		if err != nil {
			return nil, err
		}
		out = append(out, byte(idx))
	}
	return out, nil
}

// Encode dispatches to the encoder that inverts Decode for format.
func Encode(format Format, src, palette []byte) ([]byte, error) {
	switch format {
	case CI4:
		return EncodeCI4(src, palette)
	case CI8:
		return EncodeCI8(src, palette)
	case I4:
		return EncodeI4(src)
	case I8:
		return EncodeI8(src)
	case IA4:
		return EncodeIA4(src)
	case IA8:
		return EncodeIA8(src)
	case RGBA16:
		return EncodeRGBA16(src)
	case RGBA32:
		return EncodeRGBA32(src)
	default:
		return nil, bkerr.Newf("pixelfmt", 0, bkerr.KindInvariantViolation, "unsupported pixel format %v", format)
	}
}
