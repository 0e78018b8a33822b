/*
NAME
  sidecar_test.go

DESCRIPTION
  sidecar_test.go checks the sidecar YAML document shape and the
  round trip from a decoded Sprite through Marshal/Unmarshal back to an
  equivalent Sprite.

LICENSE
  SPDX-License-Identifier: MIT
*/

package sidecar

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bk64tools/bkasset/pixelfmt"
	"github.com/bk64tools/bkasset/sprite"
)

func buildRGBA32Sprite() *sprite.Sprite {
	pixels := []byte{
		0xFF, 0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF,
		0x00, 0x00, 0xFF, 0xFF, 0x11, 0x22, 0x33, 0xFF,
	}
	return &sprite.Sprite{
		Format: pixelfmt.RGBA32,
		Frames: []sprite.Frame{{
			OriginX: 3, OriginY: 4,
			Width: 2, Height: 2,
			Pixels: pixels,
		}},
	}
}

func TestMarshalDocumentShape(t *testing.T) {
	s := buildRGBA32Sprite()
	doc, pngs, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	if len(pngs) != 1 {
		t.Fatalf("Marshal: got %d PNGs, want 1", len(pngs))
	}
	text := string(doc)
	for _, want := range []string{"format: RGBA32", "originX: 3", "originY: 4", "width: 2", "height: 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("sidecar document missing %q, got:\n%s", want, text)
		}
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	s := buildRGBA32Sprite()
	doc, pngs, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	got, err := Unmarshal(doc, pngs, nil)
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error: %v", err)
	}
	if got.Format != s.Format {
		t.Errorf("Format = %v, want %v", got.Format, s.Format)
	}
	if len(got.Frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(got.Frames))
	}
	gf, wf := got.Frames[0], s.Frames[0]
	if gf.OriginX != wf.OriginX || gf.OriginY != wf.OriginY || gf.Width != wf.Width || gf.Height != wf.Height {
		t.Errorf("frame metadata mismatch: got %+v, want origin (%d,%d) size %dx%d",
			gf, wf.OriginX, wf.OriginY, wf.Width, wf.Height)
	}
	if diff := cmp.Diff(wf.Pixels, gf.Pixels); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestSidecarRoundTripIndexed(t *testing.T) {
	palette := make([]byte, 32)
	palette[2], palette[3] = 0xF8, 0x01 // entry 1: opaque red
	palette[4], palette[5] = 0x07, 0xC0 // entry 2: opaque green
	pixels, err := pixelfmt.DecodeCI4([]byte{0x12}, palette)
	if err != nil {
		t.Fatalf("DecodeCI4: unexpected error: %v", err)
	}
	s := &sprite.Sprite{
		Format: pixelfmt.CI4,
		Frames: []sprite.Frame{{Width: 2, Height: 1, Palette: palette, Pixels: pixels}},
	}

	doc, pngs, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	got, err := Unmarshal(doc, pngs, func(int) []byte { return palette })
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error: %v", err)
	}
	if diff := cmp.Diff(pixels, got.Frames[0].Pixels); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
	wantEncoded := []byte{0x12}
	if diff := cmp.Diff(wantEncoded, got.Frames[0].Chunks[0].PixelsEncoded); diff != "" {
		t.Errorf("re-encoded chunk bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalUnknownFormatErrors(t *testing.T) {
	s := &sprite.Sprite{Unknown: true, Raw: []byte{0, 1, 2, 3}}
	if _, _, err := Marshal(s); err == nil {
		t.Fatal("Marshal of an unknown-format sprite: got nil error, want invariant-violation error")
	}
}
