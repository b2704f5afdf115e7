// Package command implements palette command nodes.
//
// A Node is either a leaf, which carries an Action, or a context, which
// carries a Resolver producing its children on demand. The Kind
// discriminant is fixed at construction and consumers switch on it.
// Nodes are rebuilt on every resolution pass and never mutated.
package command

import (
	"context"
	"errors"
	"fmt"
)

// Kind discriminates leaf and context nodes.
type Kind int

const (
	Leaf Kind = iota + 1
	Context
)

// String returns "leaf" or "context".
func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Context:
		return "context"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Sentinel errors.
var (
	ErrConfiguration = errors.New("invalid command definition")
	ErrNotLeaf       = errors.New("command is not runnable")
	ErrNotContext    = errors.New("command has no children")
	ErrNotFound      = errors.New("command not found")
	ErrStale         = errors.New("query superseded by a newer one")
)

// ConfigurationError reports a Def with both or neither of Run and Commands.
type ConfigurationError struct {
	Label string
	Both  bool
}

func (e *ConfigurationError) Error() string {
	if e.Both {
		return fmt.Sprintf("command %q: only one of run or commands may be defined", e.Label)
	}
	return fmt.Sprintf("command %q: one of run or commands must be defined", e.Label)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// Metadata describes a node to the host.
type Metadata struct {
	ID          string `json:"id,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Query is the host state a resolver is invoked with.
type Query struct {
	Active bool   `json:"active"`
	Search string `json:"search"`
	// Token identifies the query for staleness checks. Zero is untracked.
	Token uint64 `json:"-"`
}

// Action runs a leaf.
type Action func(ctx context.Context) error

// Resolver returns a context node's children in display order.
type Resolver func(ctx context.Context, q Query) ([]*Node, error)

// Def is the raw definition passed to New.
type Def struct {
	Metadata
	Run      Action
	Commands Resolver
}

// Node is an immutable command node.
type Node struct {
	kind     Kind
	meta     Metadata
	action   Action
	resolver Resolver
}

// New validates d and builds a node. Exactly one of Run and Commands must
// be set.
func New(d Def) (*Node, error) {
	switch {
	case d.Run != nil && d.Commands != nil:
		return nil, &ConfigurationError{Label: d.Label, Both: true}
	case d.Run != nil:
		return &Node{kind: Leaf, meta: d.Metadata, action: d.Run}, nil
	case d.Commands != nil:
		return &Node{kind: Context, meta: d.Metadata, resolver: d.Commands}, nil
	default:
		return nil, &ConfigurationError{Label: d.Label}
	}
}

// NewLeaf builds a leaf. It panics if run is nil.
func NewLeaf(meta Metadata, run Action) *Node {
	return must(New(Def{Metadata: meta, Run: run}))
}

// NewContext builds a context node. It panics if resolve is nil.
func NewContext(meta Metadata, resolve Resolver) *Node {
	return must(New(Def{Metadata: meta, Commands: resolve}))
}

func must(n *Node, err error) *Node {
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Node) Kind() Kind         { return n.kind }
func (n *Node) Metadata() Metadata { return n.meta }

// Run executes a leaf.
func (n *Node) Run(ctx context.Context) error {
	if n.kind != Leaf {
		return fmt.Errorf("%s: %w", n.meta.Label, ErrNotLeaf)
	}
	return n.action(ctx)
}

// Children resolves a context node against q.
func (n *Node) Children(ctx context.Context, q Query) ([]*Node, error) {
	if n.kind != Context {
		return nil, fmt.Errorf("%s: %w", n.meta.Label, ErrNotContext)
	}
	return n.resolver(ctx, q)
}
