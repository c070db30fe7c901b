package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrMalformedTree = errors.New("malformed decision tree")

// BranchOp is the comparison a child's incoming edge applies.
type BranchOp int

const (
	BranchNone BranchOp = iota
	BranchLessOrEqual
	BranchGreater
)

// Branch describes the edge leading into a node. The root has BranchNone.
type Branch struct {
	Op        BranchOp
	Threshold decimal.Decimal
}

func LessOrEqual(threshold decimal.Decimal) Branch {
	return Branch{Op: BranchLessOrEqual, Threshold: threshold}
}

func Greater(threshold decimal.Decimal) Branch {
	return Branch{Op: BranchGreater, Threshold: threshold}
}

// Holds reports whether v satisfies the branch condition.
func (b Branch) Holds(v decimal.Decimal) bool {
	switch b.Op {
	case BranchLessOrEqual:
		return v.LessThanOrEqual(b.Threshold)
	case BranchGreater:
		return v.GreaterThan(b.Threshold)
	default:
		return false
	}
}

func (b Branch) String() string {
	switch b.Op {
	case BranchLessOrEqual:
		return "<= " + b.Threshold.String()
	case BranchGreater:
		return "> " + b.Threshold.String()
	default:
		return ""
	}
}

// Node is either a *Leaf or an *Internal.
type Node interface {
	IncomingBranch() Branch
	node()
}

// Leaf is a terminal node carrying the predicted class.
type Leaf struct {
	Incoming Branch
	Answer   SeverityClass
}

// Internal splits on Attribute at Threshold. Left holds values <= Threshold,
// Right holds values > Threshold.
type Internal struct {
	Incoming  Branch
	Attribute Attribute
	Threshold decimal.Decimal
	Left      Node
	Right     Node
}

func (l *Leaf) IncomingBranch() Branch     { return l.Incoming }
func (n *Internal) IncomingBranch() Branch { return n.Incoming }

func (*Leaf) node()     {}
func (*Internal) node() {}

// Tree is a built decision tree. It is read-only once Build returns.
type Tree struct {
	Root Node
}

// Classify walks from the root to a leaf. Reaching a node whose children
// do not cover the value means the tree was not produced by Build and
// yields ErrMalformedTree.
func (t *Tree) Classify(m Measured) (SeverityClass, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: nil tree", ErrMalformedTree)
	}

	current := t.Root
	for {
		switch n := current.(type) {
		case *Leaf:
			return n.Answer, nil
		case *Internal:
			v := m.Value(n.Attribute)
			next, ok := n.child(v)
			if !ok {
				return 0, fmt.Errorf("%w: no branch of %s accepts %s", ErrMalformedTree, n.Attribute, v)
			}
			current = next
		default:
			return 0, fmt.Errorf("%w: unexpected node %T", ErrMalformedTree, current)
		}
	}
}

func (n *Internal) child(v decimal.Decimal) (Node, bool) {
	for _, c := range [2]Node{n.Left, n.Right} {
		if c != nil && c.IncomingBranch().Holds(v) {
			return c, true
		}
	}
	return nil, false
}

// Classify runs one test instance through tree.
func Classify(tree *Tree, inst UnlabeledInstance) (Prediction, error) {
	class, err := tree.Classify(inst)
	if err != nil {
		return Prediction{}, fmt.Errorf("classify instance %d: %w", inst.ID, err)
	}
	return Prediction{ID: inst.ID, Class: class}, nil
}

// Levels returns the nodes grouped by depth, root first, each level in
// left-to-right order.
func (t *Tree) Levels() [][]Node {
	if t == nil || t.Root == nil {
		return nil
	}

	var levels [][]Node
	row := []Node{t.Root}
	for len(row) > 0 {
		levels = append(levels, row)
		var next []Node
		for _, n := range row {
			if in, ok := n.(*Internal); ok {
				next = append(next, in.Left, in.Right)
			}
		}
		row = next
	}
	return levels
}

// Depth is the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	levels := t.Levels()
	if len(levels) == 0 {
		return 0
	}
	return len(levels) - 1
}

func (t *Tree) LeafCount() int {
	count := 0
	for _, row := range t.Levels() {
		for _, n := range row {
			if _, ok := n.(*Leaf); ok {
				count++
			}
		}
	}
	return count
}
