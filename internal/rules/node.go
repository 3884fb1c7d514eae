package rules

import "github.com/gobwas/glob"

type nodeKind uint8

const (
	// singleSegment matches exactly one path component.
	singleSegment nodeKind = iota
	// multiSegment is "**" and matches any number of components, including none.
	multiSegment
)

// node is one segment of one or more rules in the decision graph. It owns its
// children exclusively; children are kept in declaration order.
type node struct {
	kind     nodeKind
	pattern  string
	matcher  glob.Glob
	actions  *Actions
	children []*node
}

// newNode builds the node kind for a segment pattern.
func newNode(segment string, actions *Actions) (*node, error) {
	if segment == doubleStar {
		return &node{kind: multiSegment, pattern: segment, actions: actions}, nil
	}

	m, err := compileSegment(segment)
	if err != nil {
		return nil, err
	}
	return &node{kind: singleSegment, pattern: segment, matcher: m, actions: actions}, nil
}

// evaluate folds this node's contribution for the remaining path segments
// into res. Anything applied later overrides what was applied before.
func (n *node) evaluate(segments []string, res *ActionResult) {
	switch n.kind {
	case singleSegment:
		n.evaluateSingle(segments, res)
	case multiSegment:
		n.evaluateMulti(segments, res)
	}
}

func (n *node) evaluateSingle(segments []string, res *ActionResult) {
	if !n.matcher.Match(segments[0]) {
		return
	}
	if n.actions != nil {
		res.Actions = *n.actions
	}

	if len(segments) == 1 {
		if len(n.children) > 0 {
			res.Descend = true
		}
		return
	}

	for _, child := range n.children {
		child.evaluate(segments[1:], res)
	}
}

func (n *node) evaluateMulti(segments []string, res *ActionResult) {
	if n.actions != nil {
		res.Actions = *n.actions
	}
	if len(n.children) == 0 {
		return
	}

	if len(segments) == 1 {
		res.Descend = true
	}

	// "**" absorbs the first i segments; at least one is left for the children.
	for i := 0; i < len(segments); i++ {
		for _, child := range n.children {
			child.evaluate(segments[i:], res)
		}
	}
}

// lastChild returns the most recently appended child, or nil.
func (n *node) lastChild() *node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// removeChildren drops every direct child with the given raw pattern,
// together with its subtree.
func (n *node) removeChildren(pattern string) {
	kept := n.children[:0]
	for _, child := range n.children {
		if child.pattern != pattern {
			kept = append(kept, child)
		}
	}
	for i := len(kept); i < len(n.children); i++ {
		n.children[i] = nil
	}
	n.children = kept
}
