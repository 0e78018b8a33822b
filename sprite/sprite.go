/*
NAME
  sprite.go

DESCRIPTION
  sprite.go decodes and re-encodes the multi-frame sprite container: a
  4-byte header, a per-frame offset table (or a single special-cased chunk
  for very large frame counts), and per-frame chunk lists that composite
  onto a transparent RGBA8 canvas.

LICENSE
  SPDX-License-Identifier: MIT
*/

// Package sprite decodes and encodes the multi-frame, multi-format sprite
// container described in spec.md §4.3.
package sprite

import (
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/bk64tools/bkasset/bkerr"
	"github.com/bk64tools/bkasset/bkreader"
	"github.com/bk64tools/bkasset/pixelfmt"
)

const specialThreshold = 0x100

// formatCodes maps the on-disk format word to a pixelfmt.Format. Any code
// not present here decodes as "unknown".
var formatCodes = map[uint16]pixelfmt.Format{
	0x0001: pixelfmt.CI4,
	0x0004: pixelfmt.CI8,
	0x0020: pixelfmt.I4,
	0x0040: pixelfmt.I8,
	0x0400: pixelfmt.RGBA16,
	0x0800: pixelfmt.RGBA32,
}

var formatWords = func() map[pixelfmt.Format]uint16 {
	out := make(map[pixelfmt.Format]uint16, len(formatCodes))
	for w, f := range formatCodes {
		out[f] = w
	}
	return out
}()

// Sprite is the in-memory form of a sprite container.
type Sprite struct {
	Format    pixelfmt.Format
	Unknown   bool     // true if RawFormat had no known mapping.
	RawFormat uint16   // preserved verbatim when Unknown.
	Special   bool     // true if the frame table used the special (>0x100) convention.
	RawCount  uint16   // the on-disk frame count, preserved verbatim for the special case
	HeaderPad [12]byte // the 12 reserved bytes between the 4-byte header and the offset table, preserved verbatim; in the special layout only the first 4 are used, holding bytes 4..8 before the chunk
	Raw       []byte   // the whole input, preserved when Unknown is true.
	Frames    []Frame
}

// Chunk is one sub-rectangle composited onto a frame's canvas.
type Chunk struct {
	X, Y          int16
	W, H          uint16
	PixelsEncoded []byte // raw, still-encoded pixel bytes as read from disk
}

// Frame is one sprite frame: a declared size, an optional palette, and the
// chunks that were composited to build its canonical RGBA8 pixel buffer.
type Frame struct {
	OriginX, OriginY int16
	Width, Height    uint16
	FramePad         [10]byte // reserved header bytes, preserved verbatim for re-encode
	Palette          []byte   // RGB5551 entries, big-endian; nil if not indexed
	Chunks           []Chunk
	Pixels           []byte // canonical RGBA8, length 4*Width*Height
}

// Decode parses a sprite container from raw bytes.
func Decode(buf []byte, log *zap.Logger) (*Sprite, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("decoding sprite", zap.Int("bytes", len(buf)))

	r := bkreader.New(buf)
	count, err := r.U16("sprite-header")
	if err != nil {
		return nil, wrap("sprite-header", r, err)
	}
	rawFormat, err := r.U16("sprite-header")
	if err != nil {
		return nil, wrap("sprite-header", r, err)
	}

	format, known := formatCodes[rawFormat]
	s := &Sprite{Format: format, Unknown: !known, RawFormat: rawFormat, RawCount: count}

	if !known {
		s.Raw = append([]byte(nil), buf...)
		return s, nil
	}

	if int(count) > specialThreshold {
		s.Special = true
		copy(s.HeaderPad[:4], buf[4:8])
		frame, err := decodeSpecialFrame(bkreader.New(buf[8:]))
		if err != nil {
			return nil, err
		}
		s.Frames = []Frame{*frame}
		return s, nil
	}

	pad, err := r.Raw("sprite-header", 12)
	if err != nil {
		return nil, wrap("sprite-header", r, err)
	}
	copy(s.HeaderPad[:], pad)

	offsets, err := bkreader.ReadN(r, int(count), func(r *bkreader.Reader) (uint32, error) {
		return r.U32("sprite-header")
	})
	if err != nil {
		return nil, wrap("sprite-header", r, err)
	}

	base := 0x10 + 4*int(count)
	s.Frames = make([]Frame, 0, len(offsets))
	for i, off := range offsets {
		addr := base + int(off)
		if addr > len(buf) {
			return nil, bkerr.Newf("sprite-frame", addr, bkerr.KindTruncated,
				"frame %d offset %d resolves past end of input", i, addr)
		}
		frame, err := decodeFrame(bkreader.New(buf[addr:]), format, log)
		if err != nil {
			return nil, err
		}
		s.Frames = append(s.Frames, *frame)
	}
	return s, nil
}

func decodeFrame(r *bkreader.Reader, format pixelfmt.Format, log *zap.Logger) (*Frame, error) {
	ox, err := r.I16("sprite-frame")
	if err != nil {
		return nil, wrap("sprite-frame", r, err)
	}
	oy, err := r.I16("sprite-frame")
	if err != nil {
		return nil, wrap("sprite-frame", r, err)
	}
	w, err := r.U16("sprite-frame")
	if err != nil {
		return nil, wrap("sprite-frame", r, err)
	}
	h, err := r.U16("sprite-frame")
	if err != nil {
		return nil, wrap("sprite-frame", r, err)
	}
	chunkCount, err := r.U16("sprite-frame")
	if err != nil {
		return nil, wrap("sprite-frame", r, err)
	}
	pad, err := r.Raw("sprite-frame", 10)
	if err != nil {
		return nil, wrap("sprite-frame", r, err)
	}

	f := &Frame{OriginX: ox, OriginY: oy, Width: w, Height: h}
	copy(f.FramePad[:], pad)

	if format.Indexed() {
		r.AlignUp(8)
		palLen := 32
		if format == pixelfmt.CI8 {
			palLen = 512
		}
		pal, err := r.Raw("sprite-frame", palLen)
		if err != nil {
			return nil, wrap("sprite-frame", r, err)
		}
		f.Palette = pal
	}

	f.Chunks = make([]Chunk, 0, chunkCount)
	for i := 0; i < int(chunkCount); i++ {
		cx, err := r.I16("sprite-chunk")
		if err != nil {
			return nil, wrap("sprite-chunk", r, err)
		}
		cy, err := r.I16("sprite-chunk")
		if err != nil {
			return nil, wrap("sprite-chunk", r, err)
		}
		cw, err := r.U16("sprite-chunk")
		if err != nil {
			return nil, wrap("sprite-chunk", r, err)
		}
		ch, err := r.U16("sprite-chunk")
		if err != nil {
			return nil, wrap("sprite-chunk", r, err)
		}
		r.AlignUp(8)
		nbytes := int(cw) * int(ch) * format.BitsPerPixel() / 8
		pix, err := r.Raw("sprite-chunk", nbytes)
		if err != nil {
			return nil, wrap("sprite-chunk", r, err)
		}
		f.Chunks = append(f.Chunks, Chunk{X: cx, Y: cy, W: cw, H: ch, PixelsEncoded: pix})
	}

	pixels, err := compositeFrame(f, format)
	if err != nil {
		return nil, err
	}
	f.Pixels = pixels
	return f, nil
}

// decodeSpecialFrame parses the special (>0x100 frame count) layout: a
// single chunk, with no frame header, starting at absolute offset 8. Per
// spec.md §4.3 its pixels are always decoded as RGBA16, regardless of the
// sprite's declared format word.
func decodeSpecialFrame(r *bkreader.Reader) (*Frame, error) {
	cx, err := r.I16("sprite-chunk")
	if err != nil {
		return nil, wrap("sprite-chunk", r, err)
	}
	cy, err := r.I16("sprite-chunk")
	if err != nil {
		return nil, wrap("sprite-chunk", r, err)
	}
	cw, err := r.U16("sprite-chunk")
	if err != nil {
		return nil, wrap("sprite-chunk", r, err)
	}
	ch, err := r.U16("sprite-chunk")
	if err != nil {
		return nil, wrap("sprite-chunk", r, err)
	}
	nbytes := int(cw) * int(ch) * pixelfmt.RGBA16.BitsPerPixel() / 8
	pix, err := r.Raw("sprite-chunk", nbytes)
	if err != nil {
		return nil, wrap("sprite-chunk", r, err)
	}

	f := &Frame{OriginX: 0, OriginY: 0, Width: cw, Height: ch,
		Chunks: []Chunk{{X: cx, Y: cy, W: cw, H: ch, PixelsEncoded: pix}}}
	pixels, err := compositeFrame(f, pixelfmt.RGBA16)
	if err != nil {
		return nil, err
	}
	f.Pixels = pixels
	return f, nil
}

// encodeSpecialFrame re-emits the special single-chunk layout starting at
// the sprite's byte offset 8.
func encodeSpecialFrame(f *Frame) ([]byte, error) {
	if len(f.Chunks) != 1 {
		return nil, bkerr.Newf("sprite-chunk", 0, bkerr.KindInvariantViolation,
			"special sprite frame must have exactly one chunk, got %d", len(f.Chunks))
	}
	c := f.Chunks[0]
	w := bkreader.NewWriter()
	w.I16(c.X)
	w.I16(c.Y)
	w.U16(c.W)
	w.U16(c.H)
	w.Raw(c.PixelsEncoded)
	return w.Bytes(), nil
}

// compositeFrame decodes each chunk's pixels and paints them onto a
// transparent RGBA8 canvas sized Width x Height, per spec.md §4.3's
// single-chunk origin override. Painting goes through golang.org/x/image/draw
// rather than a hand-rolled copy loop; draw.Over on an initially-transparent
// canvas is equivalent to an overwrite for the non-overlapping chunk layouts
// this format produces.
func compositeFrame(f *Frame, format pixelfmt.Format) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))

	for i, c := range f.Chunks {
		decoded, err := pixelfmt.Decode(format, c.PixelsEncoded, f.Palette)
		if err != nil {
			return nil, errors.Wrapf(err, "sprite-chunk %d", i)
		}

		ox, oy := int(c.X), int(c.Y)
		if len(f.Chunks) == 1 {
			ox, oy = 0, 0
		}

		src := &image.RGBA{Pix: decoded, Stride: int(c.W) * 4, Rect: image.Rect(0, 0, int(c.W), int(c.H))}
		dstRect := image.Rect(ox, oy, ox+int(c.W), oy+int(c.H))
		draw.Draw(canvas, dstRect, src, image.Point{}, draw.Over)
	}
	return canvas.Pix, nil
}

// Encode re-emits a Sprite as raw bytes, reproducing its on-disk layout
// exactly, including the offset table and per-chunk/per-frame alignment
// padding.
func Encode(s *Sprite, log *zap.Logger) ([]byte, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if s.Unknown {
		return append([]byte(nil), s.Raw...), nil
	}

	w := bkreader.NewWriter()
	if s.Special {
		w.U16(s.RawCount)
		w.U16(formatWords[s.Format])
		if len(s.Frames) != 1 {
			return nil, bkerr.Newf("sprite-header", 0, bkerr.KindInvariantViolation,
				"special sprite must have exactly one frame, got %d", len(s.Frames))
		}
		fb, err := encodeSpecialFrame(&s.Frames[0])
		if err != nil {
			return nil, err
		}
		w.Raw(s.HeaderPad[:4])
		w.Raw(fb)
		return w.Bytes(), nil
	}

	w.U16(uint16(len(s.Frames)))
	w.U16(formatWords[s.Format])
	w.Raw(s.HeaderPad[:])

	frameBufs := make([][]byte, len(s.Frames))
	for i := range s.Frames {
		fb, err := encodeFrame(&s.Frames[i], s.Format)
		if err != nil {
			return nil, err
		}
		frameBufs[i] = fb
	}

	offset := 0
	for _, fb := range frameBufs {
		w.U32(uint32(offset))
		offset += len(fb)
	}
	for _, fb := range frameBufs {
		w.Raw(fb)
	}
	return w.Bytes(), nil
}

func encodeFrame(f *Frame, format pixelfmt.Format) ([]byte, error) {
	w := bkreader.NewWriter()
	w.I16(f.OriginX)
	w.I16(f.OriginY)
	w.U16(f.Width)
	w.U16(f.Height)
	w.U16(uint16(len(f.Chunks)))
	w.Raw(f.FramePad[:])

	if format.Indexed() {
		w.AlignUp(8)
		w.Raw(f.Palette)
	}

	for _, c := range f.Chunks {
		w.I16(c.X)
		w.I16(c.Y)
		w.U16(c.W)
		w.U16(c.H)
		w.AlignUp(8)
		w.Raw(c.PixelsEncoded)
	}
	return w.Bytes(), nil
}

func wrap(phase string, r *bkreader.Reader, err error) error {
	return errors.Wrapf(err, "%s at offset %d", phase, r.Offset())
}
