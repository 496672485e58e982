// Package document holds the design document tree the manifest is built from.
//
// Nodes are decided once, at ingestion, into one of three kinds: a variant
// family (a component set with variant axes), a standalone component, or
// anything else. Only variant families carry variant axes.
package document

import "fmt"

// Source node types recognized by the decoder.
const (
	TypeDocument     = "DOCUMENT"
	TypeCanvas       = "CANVAS"
	TypeComponentSet = "COMPONENT_SET"
	TypeComponent    = "COMPONENT"
)

// Kind classifies a node for the manifest scan.
type Kind int

const (
	KindOther Kind = iota
	KindVariantFamily
	KindStandaloneComponent
)

func (k Kind) String() string {
	switch k {
	case KindVariantFamily:
		return "variant-family"
	case KindStandaloneComponent:
		return "standalone-component"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// VariantAxis is one named dimension of variation within a variant family.
type VariantAxis struct {
	Name   string
	Values []string
}

// Node is one entry of the document tree.
type Node struct {
	Kind Kind
	Type string // raw source type, e.g. "COMPONENT_SET"
	Name string
	Key  string

	// Parent is a weak back-reference set by Append and the decoder.
	Parent *Node

	// Variants is only set on KindVariantFamily nodes, in source order.
	Variants []VariantAxis

	Children []*Node
}

// NewVariantFamily returns a component set node with the given axes.
func NewVariantFamily(name, key string, axes ...VariantAxis) *Node {
	return &Node{
		Kind:     KindVariantFamily,
		Type:     TypeComponentSet,
		Name:     name,
		Key:      key,
		Variants: axes,
	}
}

// NewComponent returns a standalone component node.
func NewComponent(name, key string) *Node {
	return &Node{
		Kind: KindStandaloneComponent,
		Type: TypeComponent,
		Name: name,
		Key:  key,
	}
}

// NewContainer returns a node of any other type, e.g. a page or a frame.
func NewContainer(typ, name, key string) *Node {
	return &Node{
		Kind: KindOther,
		Type: typ,
		Name: name,
		Key:  key,
	}
}

// Append adds children in order and points their Parent at n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			c.Parent = n
		}
		n.Children = append(n.Children, c)
	}
	return n
}

// IsVariantFamily reports whether n is a non-nil variant family.
func (n *Node) IsVariantFamily() bool {
	return n != nil && n.Kind == KindVariantFamily
}

// Label identifies the node in error paths.
func (n *Node) Label() string {
	if n.Name != "" {
		return fmt.Sprintf("%s %q", n.Type, n.Name)
	}
	if n.Key != "" {
		return fmt.Sprintf("%s %s", n.Type, n.Key)
	}
	return n.Type
}
