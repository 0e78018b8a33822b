/*
NAME
  pixelfmt_test.go

DESCRIPTION
  pixelfmt_test.go tests the pixel format converters against the bit
  replication fixed points and scenarios from the format specification.

LICENSE
  SPDX-License-Identifier: MIT
*/

package pixelfmt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpand5to8FixedPoints(t *testing.T) {
	if got := expand5to8(0); got != 0 {
		t.Errorf("expand5to8(0) = %d, want 0", got)
	}
	if got := expand5to8(31); got != 255 {
		t.Errorf("expand5to8(31) = %d, want 255", got)
	}
}

func TestExpand4to8FixedPoints(t *testing.T) {
	if got := expand4to8(0); got != 0 {
		t.Errorf("expand4to8(0) = %d, want 0", got)
	}
	if got := expand4to8(15); got != 255 {
		t.Errorf("expand4to8(15) = %d, want 255", got)
	}
}

func TestDecodeRGBA16Scenario(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"red-alpha", []byte{0xF8, 0x01}, []byte{0xFF, 0x00, 0x00, 0xFF}},
		{"alpha-only", []byte{0x00, 0x01}, []byte{0x00, 0x00, 0x00, 0xFF}},
		{"transparent-black", []byte{0x00, 0x00}, []byte{0x00, 0x00, 0x00, 0x00}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := DecodeRGBA16(c.in)
			if err != nil {
				t.Fatalf("DecodeRGBA16: unexpected error: %v", err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("DecodeRGBA16(%x) mismatch (-want +got):\n%s", c.in, diff)
			}
		})
	}
}

func TestDecodeI4(t *testing.T) {
	got, err := DecodeI4([]byte{0xF0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0xFF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeI4 mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCI4PaletteMissing(t *testing.T) {
	if _, err := DecodeCI4([]byte{0x01}, nil); err == nil {
		t.Fatal("DecodeCI4 with nil palette: got nil error, want palette-missing error")
	}
}

func TestDecodeCI4(t *testing.T) {
	// Palette entry 1 is RGB5551 0xF801 -> opaque red.
	palette := make([]byte, 32)
	palette[2] = 0xF8
	palette[3] = 0x01
	got, err := DecodeCI4([]byte{0x10}, palette) // high nibble=1, low nibble=0
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xFF, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00, 0x00}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeCI4 mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeIA4NibbleSplit(t *testing.T) {
	// high nibble 0xF = intensity 0b111, alpha 1; low nibble 0x0 = all zero.
	got, err := DecodeIA4([]byte{0xF0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeIA4 mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeIA8(t *testing.T) {
	got, err := DecodeIA8([]byte{0xF0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xFF, 0xFF, 0xFF, 0x00}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeIA8 mismatch (-want +got):\n%s", diff)
	}
}

func TestAlphaByteIsBinaryForOneBitSources(t *testing.T) {
	got, err := DecodeRGBA16([]byte{0x12, 0x34, 0xAB, 0xCD})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 3; i < len(got); i += 4 {
		if got[i] != 0x00 && got[i] != 0xFF {
			t.Errorf("alpha byte at %d = 0x%02X, want 0x00 or 0xFF", i, got[i])
		}
	}
}
