package command

import (
	"context"
	"fmt"
	"strings"
)

// Find walks path from root, resolving each context node against q and
// matching the next segment by ID first, then by label. An empty path
// returns root.
func Find(ctx context.Context, root *Node, q Query, path []string) (*Node, error) {
	n := root
	for i, seg := range path {
		children, err := n.Children(ctx, q)
		if err != nil {
			return nil, err
		}
		next := match(children, seg)
		if next == nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(path[:i+1], " / "), ErrNotFound)
		}
		n = next
	}
	return n, nil
}

func match(children []*Node, seg string) *Node {
	for _, c := range children {
		if c.meta.ID != "" && c.meta.ID == seg {
			return c
		}
	}
	for _, c := range children {
		if c.meta.Label == seg {
			return c
		}
	}
	return nil
}

// Tree is a resolved snapshot of a node and its descendants.
type Tree struct {
	Metadata
	Kind     Kind    `json:"kind"`
	Children []*Tree `json:"children,omitempty"`
}

// Expand resolves n into a Tree down to depth levels of children. A
// negative depth expands fully; zero returns n alone.
func Expand(ctx context.Context, n *Node, q Query, depth int) (*Tree, error) {
	t := &Tree{Metadata: n.meta, Kind: n.kind}
	if n.kind != Context || depth == 0 {
		return t, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	children, err := n.Children(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", n.meta.Label, err)
	}
	t.Children = make([]*Tree, 0, len(children))
	for _, c := range children {
		ct, err := Expand(ctx, c, q, depth-1)
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, ct)
	}
	return t, nil
}

// Leaves returns the number of leaves in t.
func (t *Tree) Leaves() int {
	if t.Kind == Leaf {
		return 1
	}
	n := 0
	for _, c := range t.Children {
		n += c.Leaves()
	}
	return n
}
