/*
NAME
  sidecar.go

DESCRIPTION
  sidecar.go implements the sprite's textual form: a YAML sidecar document
  carrying the frame metadata PNG can't represent (pixel format, per-frame
  origin), with each frame's canonical RGBA8 buffer written as its own PNG.

LICENSE
  SPDX-License-Identifier: MIT
*/

// Package sidecar reads and writes the PNG + YAML sidecar textual form of
// a Sprite, described in SPEC_FULL.md §NEW-4.3.
package sidecar

import (
	"bytes"
	"image"
	"image/png"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bk64tools/bkasset/bkerr"
	"github.com/bk64tools/bkasset/pixelfmt"
	"github.com/bk64tools/bkasset/sprite"
)

const phase = "sprite-sidecar"

// Marshal renders s as a sidecar YAML document plus one PNG per frame. The
// returned PNGs are in frame order; name them "<name>.<n>.png" alongside
// "<name>.yaml" holding the returned document bytes.
//
// Unknown sprites (format word not recognized) have no textual form;
// callers must fall back to the binary path for those, per spec.md §1's
// in-scope/out-of-scope split on the opaque passthrough case. A special
// (>0x100 frame count) sprite marshals fine, but Unmarshal always rebuilds
// the normal single-chunk-per-frame convention: the sidecar records only
// pixels, format, and per-frame geometry, not which on-disk frame-table
// convention produced them.
func Marshal(s *sprite.Sprite) (yamlDoc []byte, pngs [][]byte, err error) {
	if s.Unknown {
		return nil, nil, bkerr.Newf(phase, 0, bkerr.KindInvariantViolation,
			"sprite with unrecognized format has no textual form")
	}

	root := mappingNode("format", scalar(s.Format.String()), "frames", framesNode(s.Frames))
	out, merr := yaml.Marshal(root)
	if merr != nil {
		return nil, nil, bkerr.New(phase, 0, bkerr.KindInvariantViolation, merr)
	}

	pngs = make([][]byte, len(s.Frames))
	for i, f := range s.Frames {
		img := &image.RGBA{Pix: f.Pixels, Stride: int(f.Width) * 4, Rect: image.Rect(0, 0, int(f.Width), int(f.Height))}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, nil, bkerr.New(phase, 0, bkerr.KindInvariantViolation, err)
		}
		pngs[i] = buf.Bytes()
	}
	return out, pngs, nil
}

func framesNode(frames []sprite.Frame) *yaml.Node {
	items := make([]*yaml.Node, 0, len(frames))
	for _, f := range frames {
		items = append(items, mappingNode(
			"width", intScalar(int64(f.Width)),
			"height", intScalar(int64(f.Height)),
			"originX", intScalar(int64(f.OriginX)),
			"originY", intScalar(int64(f.OriginY)),
		))
	}
	return &yaml.Node{Kind: yaml.SequenceNode, Content: items}
}

// Unmarshal parses a sidecar document and its frame PNGs (in frame order)
// back into a Sprite. Each frame is reconstructed as a single chunk
// spanning the whole frame; this loses any original multi-chunk layout
// but reproduces the same canonical pixels, origin, and format, which is
// all the sidecar format records. See DESIGN.md for this scope decision.
func Unmarshal(yamlDoc []byte, pngs [][]byte, palette func(frameIdx int) []byte) (*sprite.Sprite, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(yamlDoc, &root); err != nil {
		return nil, bkerr.New(phase, 0, bkerr.KindInvariantViolation, err)
	}
	if len(root.Content) != 1 {
		return nil, bkerr.Newf(phase, 0, bkerr.KindInvariantViolation, "empty sidecar document")
	}
	doc := root.Content[0]

	formatNode := findKey(doc, "format")
	if formatNode == nil {
		return nil, bkerr.Newf(phase, 0, bkerr.KindTruncated, "sidecar missing `format` key")
	}
	format, ok := formatFromName(formatNode.Value)
	if !ok {
		return nil, bkerr.Newf(phase, 0, bkerr.KindUnexpectedByte, "unrecognized format name %q", formatNode.Value)
	}

	frameList := findKey(doc, "frames")
	if frameList == nil {
		return nil, bkerr.Newf(phase, 0, bkerr.KindTruncated, "sidecar missing `frames` key")
	}
	if len(frameList.Content) != len(pngs) {
		return nil, bkerr.Newf(phase, 0, bkerr.KindInvariantViolation,
			"sidecar declares %d frames but %d PNGs were given", len(frameList.Content), len(pngs))
	}

	s := &sprite.Sprite{Format: format}
	for i, entry := range frameList.Content {
		width, err := parseInt(findKey(entry, "width"))
		if err != nil {
			return nil, err
		}
		height, err := parseInt(findKey(entry, "height"))
		if err != nil {
			return nil, err
		}
		originX, err := parseInt(findKey(entry, "originX"))
		if err != nil {
			return nil, err
		}
		originY, err := parseInt(findKey(entry, "originY"))
		if err != nil {
			return nil, err
		}

		img, err := png.Decode(bytes.NewReader(pngs[i]))
		if err != nil {
			return nil, bkerr.New(phase, 0, bkerr.KindInvariantViolation, err)
		}
		rgba, ok := img.(*image.RGBA)
		if !ok {
			rgba = toRGBA(img)
		}

		var pal []byte
		if format.Indexed() && palette != nil {
			pal = palette(i)
		}
		encoded, err := pixelfmt.Encode(format, rgba.Pix, pal)
		if err != nil {
			return nil, bkerr.New(phase, 0, bkerr.KindInvariantViolation, err)
		}

		frame := sprite.Frame{
			OriginX: int16(originX),
			OriginY: int16(originY),
			Width:   uint16(width),
			Height:  uint16(height),
			Palette: pal,
			Chunks: []sprite.Chunk{{
				X: 0, Y: 0, W: uint16(width), H: uint16(height), PixelsEncoded: encoded,
			}},
			Pixels: rgba.Pix,
		}
		s.Frames = append(s.Frames, frame)
	}
	return s, nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

var formatNames = map[string]pixelfmt.Format{
	"CI4": pixelfmt.CI4, "CI8": pixelfmt.CI8,
	"I4": pixelfmt.I4, "I8": pixelfmt.I8,
	"IA4": pixelfmt.IA4, "IA8": pixelfmt.IA8,
	"RGBA16": pixelfmt.RGBA16, "RGBA32": pixelfmt.RGBA32,
}

func formatFromName(name string) (pixelfmt.Format, bool) {
	f, ok := formatNames[name]
	return f, ok
}

func scalar(v string) *yaml.Node   { return &yaml.Node{Kind: yaml.ScalarNode, Value: v} }
func intScalar(v int64) *yaml.Node { return scalar(strconv.FormatInt(v, 10)) }

func mappingNode(kv ...interface{}) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Content = append(n.Content, scalar(kv[i].(string)), kv[i+1].(*yaml.Node))
	}
	return n
}

func findKey(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func parseInt(n *yaml.Node) (int64, error) {
	if n == nil {
		return 0, bkerr.Newf(phase, 0, bkerr.KindTruncated, "missing integer field")
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, bkerr.New(phase, n.Line, bkerr.KindUnexpectedByte, err)
	}
	return v, nil
}
