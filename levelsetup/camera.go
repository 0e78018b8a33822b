/*
NAME
  camera.go

DESCRIPTION
  camera.go decodes and re-encodes the CameraNodeList section: an ordered
  sequence of camera nodes, each carrying a typed sequence of opaque
  sections whose payload length is determined by the (type, tag) pair.

LICENSE
  SPDX-License-Identifier: MIT
*/

package levelsetup

import (
	"github.com/pkg/errors"

	"github.com/bk64tools/bkasset/bkerr"
	"github.com/bk64tools/bkasset/bkreader"
)

// Section is one tagged, opaque payload attached to a CameraNode. Bytes
// are preserved verbatim from the on-disk big-endian encoding.
type Section struct {
	Tag   byte
	Bytes []byte
}

// CameraNode is one entry in a CameraNodeList.
type CameraNode struct {
	Index    int16
	HasType  bool // whether the 2-gated type byte was present on disk
	Type     uint8
	Sections []Section
}

// CameraNodeList is the ordered sequence of CameraNode that follows
// command byte 3 at the top level.
type CameraNodeList struct {
	Nodes []CameraNode
}

// sectionPayloadLen returns the byte length of a section's payload for
// the given (node type, section tag) pair, per spec.md §4.4's table.
func sectionPayloadLen(typ, tag byte) (int, bool) {
	switch typ {
	case 1:
		switch tag {
		case 1, 4:
			return 12, true
		case 2, 3:
			return 8, true
		case 5:
			return 4, true
		}
	case 2:
		switch tag {
		case 1, 2:
			return 12, true
		}
	case 3:
		switch tag {
		case 1, 4:
			return 12, true
		case 2, 3, 6:
			return 8, true
		case 5:
			return 4, true
		}
	case 4:
		switch tag {
		case 1:
			return 4, true
		}
	}
	return 0, false
}

func hasSections(typ uint8) bool {
	return typ == 1 || typ == 2 || typ == 3 || typ == 4
}

func decodeCameraNodeList(r *bkreader.Reader) (CameraNodeList, error) {
	const phase = "cameras"
	var cl CameraNodeList

	for {
		tag, err := r.U8(phase)
		if err != nil {
			return CameraNodeList{}, errors.Wrapf(err, "%s: node tag", phase)
		}
		if tag == 0 {
			return cl, nil
		}
		if tag != 1 {
			return CameraNodeList{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
				"illegal camera node tag 0x%02X", tag)
		}

		index, err := r.I16(phase)
		if err != nil {
			return CameraNodeList{}, errors.Wrapf(err, "%s: node index", phase)
		}

		typeVal, hasType, err := bkreader.IfExpected(r, phase, 2, func(r *bkreader.Reader) (uint8, error) {
			return r.U8(phase)
		})
		if err != nil {
			return CameraNodeList{}, errors.Wrapf(err, "%s: node type", phase)
		}

		node := CameraNode{Index: index, HasType: hasType, Type: typeVal}

		if hasSections(typeVal) {
			for {
				sectionTag, err := r.U8(phase)
				if err != nil {
					return CameraNodeList{}, errors.Wrapf(err, "%s: section tag", phase)
				}
				if sectionTag == 0 {
					break
				}
				n, ok := sectionPayloadLen(typeVal, sectionTag)
				if !ok {
					return CameraNodeList{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
						"illegal section tag 0x%02X for node type %d", sectionTag, typeVal)
				}
				payload, err := r.Raw(phase, n)
				if err != nil {
					return CameraNodeList{}, errors.Wrapf(err, "%s: section payload", phase)
				}
				node.Sections = append(node.Sections, Section{Tag: sectionTag, Bytes: payload})
			}
		}

		cl.Nodes = append(cl.Nodes, node)
	}
}

func encodeCameraNodeList(w *bkreader.Writer, cl CameraNodeList) {
	w.U8(3)
	for _, node := range cl.Nodes {
		w.U8(1)
		w.I16(node.Index)
		if node.HasType {
			w.U8(2)
			w.U8(node.Type)
		}
		if hasSections(node.Type) {
			for _, s := range node.Sections {
				w.U8(s.Tag)
				w.Raw(s.Bytes)
			}
			w.U8(0)
		}
	}
	w.U8(0)
}
