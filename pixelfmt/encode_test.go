/*
NAME
  encode_test.go

DESCRIPTION
  encode_test.go checks that Encode inverts Decode for RGBA16, I4, I8, IA4,
  IA8 and CI4, since
  the sprite sidecar path relies on that property to rebuild source bytes
  from a canonical RGBA8 buffer.

LICENSE
  SPDX-License-Identifier: MIT
*/

package pixelfmt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeRGBA16RoundTrip(t *testing.T) {
	src := []byte{0xF8, 0x01, 0x00, 0x00, 0x07, 0xC0}
	decoded, err := DecodeRGBA16(src)
	if err != nil {
		t.Fatalf("DecodeRGBA16: unexpected error: %v", err)
	}
	got, err := EncodeRGBA16(decoded)
	if err != nil {
		t.Fatalf("EncodeRGBA16: unexpected error: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("EncodeRGBA16(DecodeRGBA16(src)) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeI4RoundTrip(t *testing.T) {
	src := []byte{0xF0, 0x3C}
	decoded, err := DecodeI4(src)
	if err != nil {
		t.Fatalf("DecodeI4: unexpected error: %v", err)
	}
	got, err := EncodeI4(decoded)
	if err != nil {
		t.Fatalf("EncodeI4: unexpected error: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("EncodeI4(DecodeI4(src)) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeI8RoundTrip(t *testing.T) {
	src := []byte{0x00, 0x7F, 0xFF, 0x10}
	decoded, err := DecodeI8(src)
	if err != nil {
		t.Fatalf("DecodeI8: unexpected error: %v", err)
	}
	got, err := EncodeI8(decoded)
	if err != nil {
		t.Fatalf("EncodeI8: unexpected error: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("EncodeI8(DecodeI8(src)) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeIA4RoundTrip(t *testing.T) {
	src := []byte{0xF0, 0x0D}
	decoded, err := DecodeIA4(src)
	if err != nil {
		t.Fatalf("DecodeIA4: unexpected error: %v", err)
	}
	got, err := EncodeIA4(decoded)
	if err != nil {
		t.Fatalf("EncodeIA4: unexpected error: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("EncodeIA4(DecodeIA4(src)) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeIA8RoundTrip(t *testing.T) {
	src := []byte{0xF0, 0x08}
	decoded, err := DecodeIA8(src)
	if err != nil {
		t.Fatalf("DecodeIA8: unexpected error: %v", err)
	}
	got, err := EncodeIA8(decoded)
	if err != nil {
		t.Fatalf("EncodeIA8: unexpected error: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("EncodeIA8(DecodeIA8(src)) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeCI4RoundTrip(t *testing.T) {
	palette := make([]byte, 32)
	palette[2], palette[3] = 0xF8, 0x01 // entry 1: opaque red
	palette[4], palette[5] = 0x07, 0xC0 // entry 2: opaque green
	src := []byte{0x12}
	decoded, err := DecodeCI4(src, palette)
	if err != nil {
		t.Fatalf("DecodeCI4: unexpected error: %v", err)
	}
	got, err := EncodeCI4(decoded, palette)
	if err != nil {
		t.Fatalf("EncodeCI4: unexpected error: %v", err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("EncodeCI4(DecodeCI4(src, palette), palette) mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeCI4UnmatchedPixelErrors(t *testing.T) {
	palette := make([]byte, 32)
	if _, err := EncodeCI4([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}, palette); err == nil {
		t.Fatal("EncodeCI4 with no matching palette entry: got nil error, want palette-missing error")
	}
}
