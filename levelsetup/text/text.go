/*
NAME
  text.go

DESCRIPTION
  text.go implements the textual document form of a LevelSetup asset: a
  YAML tree with a leading `type` key and `voxels`, `cameras`, `lightings`
  top-level mappings, built and walked with gopkg.in/yaml.v3's yaml.Node
  API so both block and inline-flow notation parse identically.

LICENSE
  SPDX-License-Identifier: MIT
*/

// Package text implements the YAML textual serializer and parser for
// LevelSetup, described in spec.md §4.5.
package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bk64tools/bkasset/bkerr"
	"github.com/bk64tools/bkasset/levelsetup"
)

const phase = "level-setup-text"

// Marshal renders ls as the YAML document described in spec.md §4.5.
func Marshal(ls *levelsetup.LevelSetup) ([]byte, error) {
	root := mappingNode(
		"type", scalar("LevelSetup"),
		"voxels", voxelsNode(ls.Voxels),
		"cameras", camerasNode(ls.Cameras),
		"lightings", lightingsNode(ls.Lightings),
	)
	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, bkerr.New(phase, 0, bkerr.KindInvariantViolation, err)
	}
	return out, nil
}

// Unmarshal parses a YAML document in the form emitted by Marshal back
// into a LevelSetup.
func Unmarshal(data []byte) (*levelsetup.LevelSetup, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, bkerr.New(phase, 0, bkerr.KindInvariantViolation, err)
	}
	if len(root.Content) != 1 {
		return nil, bkerr.Newf(phase, 0, bkerr.KindInvariantViolation, "empty document")
	}
	doc := root.Content[0]

	typeNode := findKey(doc, "type")
	if typeNode == nil || typeNode.Value != "LevelSetup" {
		return nil, bkerr.Newf(phase, 0, bkerr.KindUnexpectedByte, "missing or wrong `type` key")
	}

	ls := &levelsetup.LevelSetup{}

	voxelsDoc := findKey(doc, "voxels")
	if voxelsDoc == nil {
		return nil, bkerr.Newf(phase, 0, bkerr.KindTruncated, "missing `voxels` key")
	}
	voxels, err := parseVoxels(voxelsDoc)
	if err != nil {
		return nil, err
	}
	ls.Voxels = voxels

	camerasDoc := findKey(doc, "cameras")
	if camerasDoc == nil {
		return nil, bkerr.Newf(phase, 0, bkerr.KindTruncated, "missing `cameras` key")
	}
	cameras, err := parseCameras(camerasDoc)
	if err != nil {
		return nil, err
	}
	ls.Cameras = cameras

	lightingsDoc := findKey(doc, "lightings")
	if lightingsDoc == nil {
		return nil, bkerr.Newf(phase, 0, bkerr.KindTruncated, "missing `lightings` key")
	}
	lightings, err := parseLightings(lightingsDoc)
	if err != nil {
		return nil, err
	}
	ls.Lightings = lightings

	return ls, nil
}

// --- node construction helpers ---

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func intScalar(v int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatInt(v, 10)}
}

func boolScalar(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(v)}
}

func mappingNode(kv ...interface{}) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic("mappingNode: even arguments must be string keys")
		}
		val, ok := kv[i+1].(*yaml.Node)
		if !ok {
			panic("mappingNode: odd arguments must be *yaml.Node")
		}
		n.Content = append(n.Content, scalar(key), val)
	}
	return n
}

func sequenceNode(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Content: items}
}

func vecNode(x, y, z int32) *yaml.Node {
	return mappingNode("x", intScalar(int64(x)), "y", intScalar(int64(y)), "z", intScalar(int64(z)))
}

func floatVecNode(v [3]float32) *yaml.Node {
	return mappingNode(
		"x", scalar(strconv.FormatFloat(float64(v[0]), 'g', -1, 32)),
		"y", scalar(strconv.FormatFloat(float64(v[1]), 'g', -1, 32)),
		"z", scalar(strconv.FormatFloat(float64(v[2]), 'g', -1, 32)),
	)
}

// byteArrayNode renders b as the inline flow literal `[0x.., 0x.., …]`,
// or `[]` for an empty/nil slice.
func byteArrayNode(b []byte) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range b {
		n.Content = append(n.Content, scalar(fmt.Sprintf("0x%02x", v)))
	}
	return n
}

func parseByteArray(n *yaml.Node) ([]byte, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, bkerr.Newf(phase, n.Line, bkerr.KindUnexpectedByte, "expected byte-array sequence")
	}
	out := make([]byte, 0, len(n.Content))
	for _, item := range n.Content {
		s := strings.TrimPrefix(item.Value, "0x")
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return nil, bkerr.New(phase, n.Line, bkerr.KindUnexpectedByte, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
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
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, bkerr.New(phase, n.Line, bkerr.KindUnexpectedByte, err)
	}
	return v, nil
}

func parseFloat(n *yaml.Node) (float32, error) {
	v, err := strconv.ParseFloat(n.Value, 32)
	if err != nil {
		return 0, bkerr.New(phase, n.Line, bkerr.KindUnexpectedByte, err)
	}
	return float32(v), nil
}

func parseBool(n *yaml.Node) (bool, error) {
	v, err := strconv.ParseBool(n.Value)
	if err != nil {
		return false, bkerr.New(phase, n.Line, bkerr.KindUnexpectedByte, err)
	}
	return v, nil
}

func parseVec(n *yaml.Node) (levelsetup.Vec3i, error) {
	x, err := parseInt(findKey(n, "x"))
	if err != nil {
		return levelsetup.Vec3i{}, err
	}
	y, err := parseInt(findKey(n, "y"))
	if err != nil {
		return levelsetup.Vec3i{}, err
	}
	z, err := parseInt(findKey(n, "z"))
	if err != nil {
		return levelsetup.Vec3i{}, err
	}
	return levelsetup.Vec3i{X: int32(x), Y: int32(y), Z: int32(z)}, nil
}

func parseFloatVec(n *yaml.Node) ([3]float32, error) {
	var out [3]float32
	for i, k := range [3]string{"x", "y", "z"} {
		f, err := parseFloat(findKey(n, k))
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}

// --- voxels ---

func voxelsNode(vl levelsetup.VoxelList) *yaml.Node {
	entries := make([]*yaml.Node, 0, len(vl.Voxels))
	for _, v := range vl.Voxels {
		objs := sequenceNode()
		for _, o := range v.Objects {
			if o.Present {
				objs.Content = append(objs.Content, byteArrayNode(o.Bytes))
			} else {
				objs.Content = append(objs.Content, byteArrayNode(nil))
			}
		}
		props := sequenceNode()
		for _, p := range v.Props {
			props.Content = append(props.Content, byteArrayNode(p))
		}
		entries = append(entries, mappingNode("objects", objs, "props", props))
	}
	return mappingNode(
		"startPosition", vecNode(vl.Start.X, vl.Start.Y, vl.Start.Z),
		"endPosition", vecNode(vl.End.X, vl.End.Y, vl.End.Z),
		"hasTrailing", boolScalar(vl.HasTrailing),
		"voxels", sequenceNode(entries...),
	)
}

func parseVoxels(n *yaml.Node) (levelsetup.VoxelList, error) {
	var vl levelsetup.VoxelList

	startNode := findKey(n, "startPosition")
	endNode := findKey(n, "endPosition")
	if startNode == nil || endNode == nil {
		return levelsetup.VoxelList{}, bkerr.Newf(phase, n.Line, bkerr.KindTruncated,
			"voxels document missing startPosition/endPosition")
	}
	start, err := parseVec(startNode)
	if err != nil {
		return levelsetup.VoxelList{}, err
	}
	end, err := parseVec(endNode)
	if err != nil {
		return levelsetup.VoxelList{}, err
	}
	vl.Start, vl.End = start, end

	if ht := findKey(n, "hasTrailing"); ht != nil {
		b, err := parseBool(ht)
		if err != nil {
			return levelsetup.VoxelList{}, err
		}
		vl.HasTrailing = b
	}

	listNode := findKey(n, "voxels")
	if listNode == nil {
		return levelsetup.VoxelList{}, bkerr.Newf(phase, n.Line, bkerr.KindTruncated, "voxels document missing `voxels` sequence")
	}
	for _, entry := range listNode.Content {
		var v levelsetup.Voxel
		objsNode := findKey(entry, "objects")
		for _, o := range objsNode.Content {
			b, err := parseByteArray(o)
			if err != nil {
				return levelsetup.VoxelList{}, err
			}
			if len(b) == 0 {
				v.Objects = append(v.Objects, levelsetup.ObjectSlot{Present: false})
			} else {
				v.Objects = append(v.Objects, levelsetup.ObjectSlot{Present: true, Bytes: b})
			}
		}
		propsNode := findKey(entry, "props")
		for _, p := range propsNode.Content {
			b, err := parseByteArray(p)
			if err != nil {
				return levelsetup.VoxelList{}, err
			}
			v.Props = append(v.Props, b)
		}
		vl.Voxels = append(vl.Voxels, v)
	}
	return vl, nil
}

// --- cameras ---

func camerasNode(cl levelsetup.CameraNodeList) *yaml.Node {
	nodes := make([]*yaml.Node, 0, len(cl.Nodes))
	for _, n := range cl.Nodes {
		sections := sequenceNode()
		for _, s := range n.Sections {
			sections.Content = append(sections.Content, mappingNode(
				"section", intScalar(int64(s.Tag)),
				"bytes", byteArrayNode(s.Bytes),
			))
		}
		nodes = append(nodes, mappingNode(
			"index", intScalar(int64(n.Index)),
			"hasType", boolScalar(n.HasType),
			"type", intScalar(int64(n.Type)),
			"sections", sections,
		))
	}
	return sequenceNode(nodes...)
}

func parseCameras(n *yaml.Node) (levelsetup.CameraNodeList, error) {
	var cl levelsetup.CameraNodeList
	for _, entry := range n.Content {
		index, err := parseInt(findKey(entry, "index"))
		if err != nil {
			return levelsetup.CameraNodeList{}, err
		}
		hasType, err := parseBool(findKey(entry, "hasType"))
		if err != nil {
			return levelsetup.CameraNodeList{}, err
		}
		typ, err := parseInt(findKey(entry, "type"))
		if err != nil {
			return levelsetup.CameraNodeList{}, err
		}
		node := levelsetup.CameraNode{Index: int16(index), HasType: hasType, Type: uint8(typ)}

		sectionsNode := findKey(entry, "sections")
		for _, s := range sectionsNode.Content {
			tag, err := parseInt(findKey(s, "section"))
			if err != nil {
				return levelsetup.CameraNodeList{}, err
			}
			b, err := parseByteArray(findKey(s, "bytes"))
			if err != nil {
				return levelsetup.CameraNodeList{}, err
			}
			node.Sections = append(node.Sections, levelsetup.Section{Tag: byte(tag), Bytes: b})
		}
		cl.Nodes = append(cl.Nodes, node)
	}
	return cl, nil
}

// --- lightings ---

func lightingsNode(ll levelsetup.LightingNodeList) *yaml.Node {
	nodes := make([]*yaml.Node, 0, len(ll.Nodes))
	for _, n := range ll.Nodes {
		flags := sequenceNode()
		for _, f := range n.Flags {
			flags.Content = append(flags.Content, byteArrayNode(float32Bytes(f)))
		}
		nodes = append(nodes, mappingNode(
			"position", floatVecNode(n.Position),
			"flags", flags,
			"rgb", scalar(fmt.Sprintf("%02X%02X%02X", n.RGB[0], n.RGB[1], n.RGB[2])),
		))
	}
	return sequenceNode(nodes...)
}

func parseLightings(n *yaml.Node) (levelsetup.LightingNodeList, error) {
	var ll levelsetup.LightingNodeList
	for _, entry := range n.Content {
		posNode := findKey(entry, "position")
		pos, err := parseFloatVec(posNode)
		if err != nil {
			return levelsetup.LightingNodeList{}, err
		}

		flagsNode := findKey(entry, "flags")
		if len(flagsNode.Content) != 2 {
			return levelsetup.LightingNodeList{}, bkerr.Newf(phase, entry.Line, bkerr.KindUnexpectedByte,
				"flags must have exactly 2 entries, got %d", len(flagsNode.Content))
		}
		var flags [2]float32
		for i, f := range flagsNode.Content {
			b, err := parseByteArray(f)
			if err != nil {
				return levelsetup.LightingNodeList{}, err
			}
			if len(b) != 4 {
				return levelsetup.LightingNodeList{}, bkerr.Newf(phase, f.Line, bkerr.KindUnexpectedByte,
					"flags entry must be 4 bytes, got %d", len(b))
			}
			flags[i] = bytesToFloat32(b)
		}

		rgbNode := findKey(entry, "rgb")
		rgb, err := parseRGBHex(rgbNode.Value)
		if err != nil {
			return levelsetup.LightingNodeList{}, err
		}

		ll.Nodes = append(ll.Nodes, levelsetup.LightingNode{Position: pos, Flags: flags, RGB: rgb})
	}
	return ll, nil
}

func parseRGBHex(s string) ([3]byte, error) {
	var out [3]byte
	if len(s) != 6 {
		return out, bkerr.Newf(phase, 0, bkerr.KindUnexpectedByte, "rgb hex triple must be 6 characters, got %q", s)
	}
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return out, bkerr.New(phase, 0, bkerr.KindUnexpectedByte, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}

func float32Bytes(f float32) []byte {
	bits := math.Float32bits(f)
	return []byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)}
}

func bytesToFloat32(b []byte) float32 {
	bits := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	return math.Float32frombits(bits)
}
