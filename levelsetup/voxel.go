/*
NAME
  voxel.go

DESCRIPTION
  voxel.go decodes and re-encodes the VoxelList section: a 3D integer
  lattice of Voxel records, each a tagged-block sequence carrying opaque
  object and prop payloads.

LICENSE
  SPDX-License-Identifier: MIT
*/

package levelsetup

import (
	"github.com/pkg/errors"

	"github.com/bk64tools/bkasset/bkerr"
	"github.com/bk64tools/bkasset/bkreader"
)

// Vec3i is a 3-tuple of signed 32-bit integers, used for the lattice
// bounds of a VoxelList.
type Vec3i struct {
	X, Y, Z int32
}

// ObjectSlot is one entry in a Voxel's objects sequence. A "none" slot
// (Present == false) represents a declared-but-empty position; see
// spec.md §9's open question on this distinction.
type ObjectSlot struct {
	Present bool
	Bytes   []byte // 20 raw bytes when Present
}

// Voxel holds the opaque per-cell payload read from a tagged-block
// sequence terminated by tag 1.
type Voxel struct {
	Objects []ObjectSlot
	Props   [][]byte // each entry 16 raw bytes
}

// VoxelList is the lattice-indexed sequence of Voxel records that follows
// command byte 1 at the top level.
type VoxelList struct {
	Start, End  Vec3i
	Voxels      []Voxel
	HasTrailing bool // whether the optional 0-gated trailing byte was present
}

const (
	objectKindTimed  = 0x06
	objectKindActor  = 0x0A
	objectRecordSize = 20
	propRecordSize   = 16
)

func readVec3i(r *bkreader.Reader, phase string) (Vec3i, error) {
	x, err := r.I32(phase)
	if err != nil {
		return Vec3i{}, err
	}
	y, err := r.I32(phase)
	if err != nil {
		return Vec3i{}, err
	}
	z, err := r.I32(phase)
	if err != nil {
		return Vec3i{}, err
	}
	return Vec3i{X: x, Y: y, Z: z}, nil
}

func writeVec3i(w *bkreader.Writer, v Vec3i) {
	w.I32(v.X)
	w.I32(v.Y)
	w.I32(v.Z)
}

// decodeVoxelList parses the VoxelList body immediately following the
// top-level command byte 1.
func decodeVoxelList(r *bkreader.Reader) (VoxelList, error) {
	const phase = "voxels"
	var vl VoxelList

	start, ok, err := bkreader.IfExpected(r, phase, 1, func(r *bkreader.Reader) (Vec3i, error) {
		return readVec3i(r, phase)
	})
	if err != nil {
		return VoxelList{}, errors.Wrapf(err, "%s: start vector", phase)
	}
	if ok {
		vl.Start = start
	}

	end, err := readVec3i(r, phase)
	if err != nil {
		return VoxelList{}, errors.Wrapf(err, "%s: end vector", phase)
	}
	vl.End = end

	volume := 1
	for _, span := range [3]int32{
		end.X - vl.Start.X + 1,
		end.Y - vl.Start.Y + 1,
		end.Z - vl.Start.Z + 1,
	} {
		if span < 0 {
			return VoxelList{}, bkerr.Newf(phase, r.Offset(), bkerr.KindInvariantViolation,
				"lattice end precedes start: span %d", span)
		}
		volume *= int(span)
	}

	vl.Voxels = make([]Voxel, 0, volume)
	for i := 0; i < volume; i++ {
		v, err := decodeVoxel(r)
		if err != nil {
			return VoxelList{}, err
		}
		vl.Voxels = append(vl.Voxels, v)
	}

	_, trailing, err := bkreader.IfExpected(r, phase, 0, func(r *bkreader.Reader) (byte, error) {
		return 0, nil
	})
	if err != nil {
		return VoxelList{}, errors.Wrapf(err, "%s: trailing byte", phase)
	}
	vl.HasTrailing = trailing

	return vl, nil
}

func decodeVoxel(r *bkreader.Reader) (Voxel, error) {
	const phase = "voxels"
	var v Voxel

	for {
		tag, err := r.U8(phase)
		if err != nil {
			return Voxel{}, errors.Wrapf(err, "%s: voxel tag", phase)
		}
		switch tag {
		case 1:
			return v, nil
		case 3:
			kind, err := r.U8(phase)
			if err != nil {
				return Voxel{}, errors.Wrapf(err, "%s: object kind", phase)
			}
			if kind != objectKindTimed && kind != objectKindActor {
				return Voxel{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
					"object kind 0x%02X is not 0x%02X or 0x%02X", kind, objectKindTimed, objectKindActor)
			}
			count, err := r.U8(phase)
			if err != nil {
				return Voxel{}, errors.Wrapf(err, "%s: object count", phase)
			}
			if count == 0 {
				v.Objects = append(v.Objects, ObjectSlot{Present: false})
				continue
			}
			blob, ok, err := bkreader.IfExpected(r, phase, kind+1, func(r *bkreader.Reader) ([]byte, error) {
				return r.Raw(phase, int(count)*objectRecordSize)
			})
			if err != nil {
				return Voxel{}, errors.Wrapf(err, "%s: object block", phase)
			}
			if !ok {
				return Voxel{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
					"object block missing required gate 0x%02X", kind+1)
			}
			for i := 0; i < int(count); i++ {
				off := i * objectRecordSize
				v.Objects = append(v.Objects, ObjectSlot{Present: true, Bytes: blob[off : off+objectRecordSize]})
			}
		case 8:
			count, err := r.U8(phase)
			if err != nil {
				return Voxel{}, errors.Wrapf(err, "%s: prop count", phase)
			}
			if count == 0 {
				continue
			}
			blob, ok, err := bkreader.IfExpected(r, phase, 9, func(r *bkreader.Reader) ([]byte, error) {
				return r.Raw(phase, int(count)*propRecordSize)
			})
			if err != nil {
				return Voxel{}, errors.Wrapf(err, "%s: prop block", phase)
			}
			if !ok {
				return Voxel{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
					"prop block missing required gate 0x09")
			}
			for i := 0; i < int(count); i++ {
				off := i * propRecordSize
				v.Props = append(v.Props, blob[off:off+propRecordSize])
			}
		default:
			return Voxel{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
				"illegal voxel tag 0x%02X", tag)
		}
	}
}

// encodeVoxelList re-emits a VoxelList exactly as described in spec.md
// §4.4, including the optional trailing byte.
func encodeVoxelList(w *bkreader.Writer, vl VoxelList) error {
	const phase = "voxels"
	w.U8(1)
	w.U8(1) // start gate
	writeVec3i(w, vl.Start)
	writeVec3i(w, vl.End)
	for i, v := range vl.Voxels {
		if err := encodeVoxel(w, v); err != nil {
			return errors.Wrapf(err, "%s: voxel %d", phase, i)
		}
	}
	if vl.HasTrailing {
		w.U8(0)
	}
	return nil
}

// encodeVoxel re-emits one voxel's present objects aggregated into a
// single kind-0xA block, followed by a single props block, then the tag-1
// terminator. None-slots have no on-disk representation on re-emit; see
// DESIGN.md for the resolution of spec.md's open question on this point.
func encodeVoxel(w *bkreader.Writer, v Voxel) error {
	const phase = "voxels"
	var present [][]byte
	for _, o := range v.Objects {
		if o.Present {
			present = append(present, o.Bytes)
		}
	}
	if len(present) > 0 {
		if len(present) > 255 {
			return bkerr.Newf(phase, w.Len(), bkerr.KindCountOverflow,
				"voxel has %d present objects, which overflows the one-byte object count", len(present))
		}
		w.U8(3)
		w.U8(objectKindActor)
		w.U8(uint8(len(present)))
		w.U8(objectKindActor + 1)
		for _, b := range present {
			w.Raw(b)
		}
	}
	if len(v.Props) > 0 {
		if len(v.Props) > 255 {
			return bkerr.Newf(phase, w.Len(), bkerr.KindCountOverflow,
				"voxel has %d props, which overflows the one-byte prop count", len(v.Props))
		}
		w.U8(8)
		w.U8(uint8(len(v.Props)))
		w.U8(9)
		for _, b := range v.Props {
			w.Raw(b)
		}
	}
	w.U8(1)
	return nil
}
