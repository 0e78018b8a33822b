/*
NAME
  main_test.go

DESCRIPTION
  main_test.go exercises the CLI's file-to-file dispatch for each mode
  without touching the real logging or flag parsing paths.

LICENSE
  SPDX-License-Identifier: MIT
*/

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/bk64tools/bkasset/bkreader"
)

func TestRunLevelSetupRoundtrip(t *testing.T) {
	// Build a fully empty level setup by hand: 1x1x1 lattice needs exactly
	// one voxel record, so use an explicit degenerate 0..0 range with one
	// bare voxel terminator, then the camera and lighting lists empty.
	w := bkreader.NewWriter()
	w.U8(1) // VoxelList
	w.U8(1) // start gate present
	for i := 0; i < 3; i++ {
		w.I32(0) // start (0,0,0)
	}
	for i := 0; i < 3; i++ {
		w.I32(0) // end (0,0,0)
	}
	w.U8(1) // voxel terminator (one voxel, no tagged blocks)
	w.U8(3) // CameraNodeList
	w.U8(0) // no nodes
	w.U8(4) // LightingNodeList
	w.U8(0) // no nodes
	w.U8(0) // top-level terminator
	buf := w.Bytes()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	out := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(in, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	log := zap.NewNop()
	if err := run(log, "levelsetup", "roundtrip", in, out, false); err != nil {
		t.Fatalf("run: unexpected error: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(buf, got); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestRunLevelSetupTextRoundtrip(t *testing.T) {
	w := bkreader.NewWriter()
	w.U8(1)
	w.U8(1)
	for i := 0; i < 6; i++ {
		w.I32(0)
	}
	w.U8(1)
	w.U8(3)
	w.U8(0)
	w.U8(4)
	w.U8(0)
	w.U8(0)
	buf := w.Bytes()

	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	textOut := filepath.Join(dir, "out.yaml")
	binOut := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(in, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	log := zap.NewNop()
	if err := run(log, "levelsetup", "decode", in, textOut, true); err != nil {
		t.Fatalf("run decode: unexpected error: %v", err)
	}
	if err := run(log, "levelsetup", "encode", textOut, binOut, true); err != nil {
		t.Fatalf("run encode: unexpected error: %v", err)
	}

	got, err := os.ReadFile(binOut)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(buf, got); diff != "" {
		t.Errorf("decode/encode round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	out := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(in, []byte{0}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := run(zap.NewNop(), "unknown", "roundtrip", in, out, false); err == nil {
		t.Fatal("run with unknown -kind: got nil error, want an error")
	}
}
