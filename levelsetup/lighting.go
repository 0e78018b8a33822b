/*
NAME
  lighting.go

DESCRIPTION
  lighting.go decodes and re-encodes the LightingNodeList section: an
  ordered sequence of lighting nodes, each with a mandatory position,
  flags, and RGB color.

LICENSE
  SPDX-License-Identifier: MIT
*/

package levelsetup

import (
	"github.com/pkg/errors"

	"github.com/bk64tools/bkasset/bkerr"
	"github.com/bk64tools/bkasset/bkreader"
)

// LightingNode is one entry in a LightingNodeList. Unlike CameraNodeList's
// type gate, the three gates here are mandatory; decodeLightingNodeList
// treats their absence as a parse error rather than defaulting, per
// spec.md §4.4's redesign of the source's lenient behavior.
type LightingNode struct {
	Position [3]float32
	Flags    [2]float32
	RGB      [3]byte
}

// LightingNodeList is the ordered sequence of LightingNode that follows
// command byte 4 at the top level.
type LightingNodeList struct {
	Nodes []LightingNode
}

func readFloats(r *bkreader.Reader, phase string, n int) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		v, err := r.F32(phase)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func decodeLightingNodeList(r *bkreader.Reader) (LightingNodeList, error) {
	const phase = "lightings"
	var ll LightingNodeList

	for {
		tag, err := r.U8(phase)
		if err != nil {
			return LightingNodeList{}, errors.Wrapf(err, "%s: node tag", phase)
		}
		if tag == 0 {
			return ll, nil
		}
		if tag != 1 {
			return LightingNodeList{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
				"illegal lighting node tag 0x%02X", tag)
		}

		var node LightingNode

		pos, ok, err := bkreader.IfExpected(r, phase, 2, func(r *bkreader.Reader) ([]float32, error) {
			return readFloats(r, phase, 3)
		})
		if err != nil {
			return LightingNodeList{}, errors.Wrapf(err, "%s: position", phase)
		}
		if !ok {
			return LightingNodeList{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
				"lighting node missing mandatory position gate 0x02")
		}
		copy(node.Position[:], pos)

		flags, ok, err := bkreader.IfExpected(r, phase, 3, func(r *bkreader.Reader) ([]float32, error) {
			return readFloats(r, phase, 2)
		})
		if err != nil {
			return LightingNodeList{}, errors.Wrapf(err, "%s: flags", phase)
		}
		if !ok {
			return LightingNodeList{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
				"lighting node missing mandatory flags gate 0x03")
		}
		copy(node.Flags[:], flags)

		rgb, ok, err := bkreader.IfExpected(r, phase, 4, func(r *bkreader.Reader) ([3]byte, error) {
			var out [3]byte
			for i := range out {
				w, err := r.U32(phase)
				if err != nil {
					return out, err
				}
				out[i] = byte(w)
			}
			return out, nil
		})
		if err != nil {
			return LightingNodeList{}, errors.Wrapf(err, "%s: rgb", phase)
		}
		if !ok {
			return LightingNodeList{}, bkerr.Newf(phase, r.Offset(), bkerr.KindUnexpectedByte,
				"lighting node missing mandatory rgb gate 0x04")
		}
		node.RGB = rgb

		ll.Nodes = append(ll.Nodes, node)
	}
}

func encodeLightingNodeList(w *bkreader.Writer, ll LightingNodeList) {
	w.U8(4)
	for _, node := range ll.Nodes {
		w.U8(1)
		w.U8(2)
		for _, f := range node.Position {
			w.F32(f)
		}
		w.U8(3)
		for _, f := range node.Flags {
			w.F32(f)
		}
		w.U8(4)
		for _, c := range node.RGB {
			w.U8(0)
			w.U8(0)
			w.U8(0)
			w.U8(c)
		}
	}
	w.U8(0)
}
