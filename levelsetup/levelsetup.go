/*
NAME
  levelsetup.go

DESCRIPTION
  levelsetup.go decodes and re-encodes the LevelSetup asset: a fixed
  sequence of three command-tagged sections (VoxelList, CameraNodeList,
  LightingNodeList) terminated by a zero byte, plus the opaque
  passthrough path for the one known-unparseable map.

LICENSE
  SPDX-License-Identifier: MIT
*/

// Package levelsetup decodes and encodes the LevelSetup asset described
// in spec.md §4.4: a voxel lattice, a camera node list, and a lighting
// node list, each a command-tagged binary section.
package levelsetup

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bk64tools/bkasset/bkerr"
	"github.com/bk64tools/bkasset/bkreader"
)

// LevelSetup is the in-memory form of a level-setup asset. When Opaque is
// true, Raw holds the entire input verbatim and the three section fields
// are left at their zero values; see DecodeOpaque.
type LevelSetup struct {
	Opaque    bool
	Raw       []byte
	Voxels    VoxelList
	Cameras   CameraNodeList
	Lightings LightingNodeList
}

// DecodeOpaque returns a LevelSetup that carries buf verbatim without
// parsing it. Callers use this for the one map classified externally as
// unparseable (map_idx == 113, per spec.md §6); the codec itself has no
// way to recognize that condition from the bytes alone.
func DecodeOpaque(buf []byte) *LevelSetup {
	return &LevelSetup{Opaque: true, Raw: append([]byte(nil), buf...)}
}

// Decode parses a LevelSetup from raw bytes: command 1 selects VoxelList,
// 3 selects CameraNodeList, 4 selects LightingNodeList, 0 terminates, in
// that fixed order with no repeats and no other legal top-level command.
func Decode(buf []byte, log *zap.Logger) (*LevelSetup, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("decoding level setup", zap.Int("bytes", len(buf)))

	r := bkreader.New(buf)
	ls := &LevelSetup{}

	if err := expectTopLevel(r, 1); err != nil {
		return nil, err
	}
	voxels, err := decodeVoxelList(r)
	if err != nil {
		return nil, err
	}
	ls.Voxels = voxels

	if err := expectTopLevel(r, 3); err != nil {
		return nil, err
	}
	cameras, err := decodeCameraNodeList(r)
	if err != nil {
		return nil, err
	}
	ls.Cameras = cameras

	if err := expectTopLevel(r, 4); err != nil {
		return nil, err
	}
	lightings, err := decodeLightingNodeList(r)
	if err != nil {
		return nil, err
	}
	ls.Lightings = lightings

	if err := expectTopLevel(r, 0); err != nil {
		return nil, err
	}

	return ls, nil
}

func expectTopLevel(r *bkreader.Reader, want byte) error {
	const phase = "level-setup"
	got, err := r.U8(phase)
	if err != nil {
		return errors.Wrapf(err, "%s: top-level command", phase)
	}
	if got != want {
		return bkerr.Newf(phase, r.Offset()-1, bkerr.KindUnexpectedByte,
			"top-level command 0x%02X, want 0x%02X", got, want)
	}
	return nil
}

// Encode re-emits a LevelSetup, reproducing the fixed command order and,
// for Opaque values, the original bytes verbatim.
func Encode(ls *LevelSetup, log *zap.Logger) ([]byte, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if ls.Opaque {
		return append([]byte(nil), ls.Raw...), nil
	}

	w := bkreader.NewWriter()
	if err := encodeVoxelList(w, ls.Voxels); err != nil {
		return nil, err
	}
	encodeCameraNodeList(w, ls.Cameras)
	encodeLightingNodeList(w, ls.Lightings)
	w.U8(0)
	return w.Bytes(), nil
}
