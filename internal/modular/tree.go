package modular

import (
	"github.com/jxl-go/jxl/internal/entropy"
	"github.com/jxl-go/jxl/internal/xlerr"
)

// Property indexes one of the per-pixel properties a tree split node
// can test (spec §4.4 "meta-adaptive tree"; the same tree shape
// modular channels use for their own predictor/context selection,
// spec §4.5).
type Property int

const (
	PropertyChannel Property = iota
	PropertyY
	PropertyX
	PropertyWest
	PropertyNorth
	PropertyNorthWest
	PropertyNorthEast
	PropertyWestWest
)

// Node is one entry of a decoded meta-adaptive tree: either a split
// (test Property against Value, branch) or a leaf (Predictor + context
// id feeding the entropy decoder, plus a multiplier/offset applied to
// the decoded residual before it's added to the prediction).
type Node struct {
	IsLeaf bool

	Property Property
	Value    int32
	Left     int
	Right    int

	Predictor  Predictor
	Context    int
	Multiplier int32
}

// Tree is a flattened node array; node 0 is the root.
type Tree []Node

// treeBuilder threads the shared node slice and remaining node budget
// through the recursive descent in DecodeTree.
type treeBuilder struct {
	sr        *entropy.SymbolReader
	tree      Tree
	remaining int
}

// DecodeTree reads a tree from br using sr (already positioned at the
// tree's own histogram bundle, spec §4.4: "a meta-adaptive tree" with a
// size bound the caller enforces before calling this). The bitstream
// serializes the tree depth-first: each node is a leaf (predictor +
// context) or a split (property, value, then its two subtrees in
// order).
//
// Decoded with a recursive-descent reader over the coded split/leaf
// nodes, following a property/value split tree rather than a fixed
// mode table.
func DecodeTree(sr *entropy.SymbolReader, maxNodes int) (Tree, error) {
	b := &treeBuilder{sr: sr, remaining: maxNodes}
	if _, err := b.decodeNode(); err != nil {
		return nil, err
	}
	if len(b.tree) == 0 {
		return nil, xlerr.New(xlerr.InvalidPredictor, "empty tree")
	}
	return b.tree, nil
}

// decodeNode reads one node (and, for a split, its two subtrees) and
// returns its index in b.tree.
func (b *treeBuilder) decodeNode() (int, error) {
	if b.remaining <= 0 {
		return 0, xlerr.New(xlerr.InvalidPredictor, "tree exceeds node budget")
	}
	b.remaining--

	nodeKind, err := b.sr.ReadSymbol(0)
	if err != nil {
		return 0, err
	}
	idx := len(b.tree)
	b.tree = append(b.tree, Node{})

	if nodeKind == 0 {
		predSym, err := b.sr.ReadSymbol(1)
		if err != nil {
			return 0, err
		}
		ctxSym, err := b.sr.ReadSymbol(2)
		if err != nil {
			return 0, err
		}
		b.tree[idx] = Node{
			IsLeaf:     true,
			Predictor:  Predictor(predSym),
			Context:    int(ctxSym),
			Multiplier: 1,
		}
		return idx, nil
	}

	propSym, err := b.sr.ReadSymbol(3)
	if err != nil {
		return 0, err
	}
	valSym, err := b.sr.ReadSymbol(4)
	if err != nil {
		return 0, err
	}

	left, err := b.decodeNode()
	if err != nil {
		return 0, err
	}
	right, err := b.decodeNode()
	if err != nil {
		return 0, err
	}
	b.tree[idx] = Node{
		Property: Property(propSym),
		Value:    int32(valSym),
		Left:     left,
		Right:    right,
	}
	return idx, nil
}

// propertyValue extracts the property this node tests from a pixel's
// context.
func propertyValue(p Property, channel, x, y int, n Neighborhood) int32 {
	switch p {
	case PropertyChannel:
		return int32(channel)
	case PropertyY:
		return int32(y)
	case PropertyX:
		return int32(x)
	case PropertyWest:
		return n.West
	case PropertyNorth:
		return n.North
	case PropertyNorthWest:
		return n.NorthWest
	case PropertyNorthEast:
		return n.NorthEast
	case PropertyWestWest:
		return n.WestWest
	default:
		return 0
	}
}

// Leaf walks the tree for one pixel's properties and returns the
// selected leaf node.
func (t Tree) Leaf(channel, x, y int, n Neighborhood) Node {
	idx := 0
	for {
		node := t[idx]
		if node.IsLeaf {
			return node
		}
		v := propertyValue(node.Property, channel, x, y, n)
		if v <= node.Value {
			idx = node.Left
		} else {
			idx = node.Right
		}
		if idx < 0 || idx >= len(t) {
			return Node{IsLeaf: true, Predictor: PredictorGradient}
		}
	}
}
