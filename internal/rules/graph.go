package rules

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultActions apply to every path no rule matches: the template is
// emptied and user overlays are left alone.
var DefaultActions = Actions{Base: Delete, User: Keep}

// Graph is an ordered forest of decision nodes built from rules. Rules are
// added in precedence order; once frozen the graph is read-only and safe for
// concurrent queries.
type Graph struct {
	root   node
	frozen bool
	rules  int
}

// New returns a graph holding only the implicit default rule "**".
func New() *Graph {
	def := DefaultActions
	return &Graph{
		root: node{
			children: []*node{{kind: multiSegment, pattern: doubleStar, actions: &def}},
		},
	}
}

// Freeze marks the graph as complete. Further insertions fail with ErrFrozen.
func (g *Graph) Freeze() {
	g.frozen = true
}

// Frozen reports whether the graph has been frozen.
func (g *Graph) Frozen() bool {
	return g.frozen
}

// Len returns the number of rules inserted, excluding the implicit default.
func (g *Graph) Len() int {
	return g.rules
}

// AddRule inserts one rule. Later rules take precedence over earlier ones at
// the same depth.
func (g *Graph) AddRule(segments []string, actions Actions) error {
	if g.frozen {
		return ErrFrozen
	}
	if len(segments) == 0 {
		return fmt.Errorf("%w: pattern has no segments", ErrInvalidPattern)
	}
	// Compile every segment up front so a bad pattern never leaves a
	// partially inserted rule behind.
	for _, seg := range segments {
		if seg == doubleStar {
			continue
		}
		if _, err := compileSegment(seg); err != nil {
			return err
		}
	}

	if err := insert(&g.root, segments, actions); err != nil {
		return err
	}
	g.rules++
	return nil
}

// insert adds the remaining segments below parent, depth first.
func insert(parent *node, segments []string, actions Actions) error {
	segment := segments[0]

	if len(segments) == 1 {
		// An exact redeclaration replaces the earlier leaf and its subtree.
		parent.removeChildren(segment)
		a := actions
		n, err := newNode(segment, &a)
		if err != nil {
			return err
		}
		parent.children = append(parent.children, n)
		return nil
	}

	// Only the most recent sibling may be reused, otherwise this rule would
	// be evaluated before rules declared after that sibling.
	if last := parent.lastChild(); last == nil || last.pattern != segment {
		n, err := newNode(segment, nil)
		if err != nil {
			return err
		}
		parent.children = append(parent.children, n)
	}

	for _, child := range parent.children {
		if child.pattern != segment {
			continue
		}
		if err := insert(child, segments[1:], actions); err != nil {
			return err
		}
	}
	return nil
}

// GetAction resolves the actions for a path relative to the cleanup root.
// Without any matching rule the result is keep for both modes.
func (g *Graph) GetAction(relPath string) ActionResult {
	res := ActionResult{Actions: Actions{Base: Keep, User: Keep}}

	segments := pathSegments(relPath)
	if len(segments) == 0 {
		return res
	}

	for _, n := range g.root.children {
		n.evaluate(segments, &res)
	}
	return res
}

// pathSegments splits a relative path into its non-empty components.
func pathSegments(relPath string) []string {
	relPath = filepath.ToSlash(relPath)
	relPath = strings.Trim(relPath, "/")
	if relPath == "" || relPath == "." {
		return nil
	}

	parts := strings.Split(relPath, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" && p != "." {
			segments = append(segments, p)
		}
	}
	return segments
}
