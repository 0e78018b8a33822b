/*
NAME
  text_test.go

DESCRIPTION
  text_test.go checks the YAML document shape produced by Marshal and the
  round trip from a decoded LevelSetup through Marshal/Unmarshal.

LICENSE
  SPDX-License-Identifier: MIT
*/

package text

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bk64tools/bkasset/levelsetup"
)

func buildLevelSetup() *levelsetup.LevelSetup {
	return &levelsetup.LevelSetup{
		Voxels: levelsetup.VoxelList{
			Start: levelsetup.Vec3i{X: 0, Y: 0, Z: 0},
			End:   levelsetup.Vec3i{X: 0, Y: 0, Z: 0},
			Voxels: []levelsetup.Voxel{{
				Objects: []levelsetup.ObjectSlot{
					{Present: false},
					{Present: true, Bytes: make([]byte, 20)},
				},
				Props: [][]byte{make([]byte, 16)},
			}},
			HasTrailing: true,
		},
		Cameras: levelsetup.CameraNodeList{
			Nodes: []levelsetup.CameraNode{{
				Index: 7, HasType: true, Type: 1,
				Sections: []levelsetup.Section{
					{Tag: 1, Bytes: make([]byte, 12)},
					{Tag: 5, Bytes: make([]byte, 4)},
				},
			}},
		},
		Lightings: levelsetup.LightingNodeList{
			Nodes: []levelsetup.LightingNode{{
				Position: [3]float32{1, 2, 3},
				Flags:    [2]float32{0.5, -0.5},
				RGB:      [3]byte{0x10, 0x20, 0x30},
			}},
		},
	}
}

func TestMarshalDocumentShape(t *testing.T) {
	ls := buildLevelSetup()
	out, err := Marshal(ls)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	text := string(out)
	for _, want := range []string{"type: LevelSetup", "voxels:", "cameras:", "lightings:", "102030"} {
		if !strings.Contains(text, want) {
			t.Errorf("document missing %q, got:\n%s", want, text)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	ls := buildLevelSetup()
	out, err := Marshal(ls)
	if err != nil {
		t.Fatalf("Marshal: unexpected error: %v", err)
	}
	got, err := Unmarshal(out)
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error: %v", err)
	}
	if diff := cmp.Diff(ls, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalWrongTypeErrors(t *testing.T) {
	doc := []byte("type: NotLevelSetup\n")
	if _, err := Unmarshal(doc); err == nil {
		t.Fatal("Unmarshal with wrong `type` key: got nil error, want an error")
	}
}

func TestUnmarshalAcceptsInlineFlowNotation(t *testing.T) {
	doc := []byte(`type: LevelSetup
voxels: {startPosition: {x: 0, y: 0, z: 0}, endPosition: {x: 0, y: 0, z: 0}, hasTrailing: false, voxels: []}
cameras: []
lightings: []
`)
	got, err := Unmarshal(doc)
	if err != nil {
		t.Fatalf("Unmarshal: unexpected error: %v", err)
	}
	if len(got.Voxels.Voxels) != 0 || len(got.Cameras.Nodes) != 0 || len(got.Lightings.Nodes) != 0 {
		t.Errorf("expected all-empty LevelSetup, got %+v", got)
	}
}
