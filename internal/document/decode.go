package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Document is a decoded design document.
type Document struct {
	Name string

	// Root is the DOCUMENT node when the input had one.
	Root *Node

	// Roots are the top-level trees to scan, one per page for a full file.
	Roots []*Node
}

// componentMeta is the file-level metadata Figma returns per component id.
type componentMeta struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type fileEnvelope struct {
	Name          string                   `json:"name"`
	Type          string                   `json:"type"`
	Document      json.RawMessage          `json:"document"`
	Components    map[string]componentMeta `json:"components"`
	ComponentSets map[string]componentMeta `json:"componentSets"`
}

type rawNode struct {
	ID                           string          `json:"id"`
	Key                          string          `json:"key"`
	Name                         string          `json:"name"`
	Type                         string          `json:"type"`
	VariantGroupProperties       json.RawMessage `json:"variantGroupProperties"`
	ComponentPropertyDefinitions json.RawMessage `json:"componentPropertyDefinitions"`
	Children                     json.RawMessage `json:"children"`
}

type rawAxis struct {
	Values []string `json:"values"`
}

type rawPropertyDefinition struct {
	Type           string   `json:"type"`
	VariantOptions []string `json:"variantOptions"`
}

// member is one name/value pair of a JSON object, kept in source order.
type member struct {
	Name  string
	Value json.RawMessage
}

var errNotObject = errors.New("not a JSON object")

// Decode reads a design document from r. Accepted shapes are a Figma file
// response, a single DOCUMENT node, a single node, or an array of nodes.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, contractError("$", "empty document", nil)
	}

	d := &decoder{}
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, contractError("$", "invalid node array", err)
		}
		roots, err := d.nodes(items, "$", nil)
		if err != nil {
			return nil, err
		}
		return &Document{Roots: roots}, nil
	case '{':
	default:
		return nil, contractError("$", "document must be a JSON object or array", nil)
	}

	var env fileEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, contractError("$", "invalid document", err)
	}
	d.components = env.Components
	d.componentSets = env.ComponentSets

	switch {
	case len(env.Document) > 0:
		root, err := d.node(env.Document, "$.document", nil)
		if err != nil {
			return nil, err
		}
		return &Document{Name: env.Name, Root: root, Roots: root.Children}, nil
	case env.Type == TypeDocument:
		root, err := d.node(trimmed, "$", nil)
		if err != nil {
			return nil, err
		}
		return &Document{Name: root.Name, Root: root, Roots: root.Children}, nil
	default:
		n, err := d.node(trimmed, "$", nil)
		if err != nil {
			return nil, err
		}
		return &Document{Roots: []*Node{n}}, nil
	}
}

type decoder struct {
	components    map[string]componentMeta
	componentSets map[string]componentMeta
}

func (d *decoder) nodes(items []json.RawMessage, path string, parent *Node) ([]*Node, error) {
	out := make([]*Node, 0, len(items))
	for i, item := range items {
		n, err := d.node(item, fmt.Sprintf("%s[%d]", path, i), parent)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (d *decoder) node(data json.RawMessage, path string, parent *Node) (*Node, error) {
	if !isObject(data) {
		return nil, contractError(path, "node is not a JSON object", nil)
	}
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, contractError(path, "malformed node", err)
	}

	axes, err := d.variantAxes(raw, path)
	if err != nil {
		return nil, err
	}

	n := &Node{
		Type:   raw.Type,
		Name:   raw.Name,
		Key:    d.resolveKey(raw),
		Parent: parent,
	}
	switch {
	case raw.Type == TypeComponentSet || len(axes) > 0:
		n.Kind = KindVariantFamily
		n.Variants = axes
	case raw.Type == TypeComponent:
		n.Kind = KindStandaloneComponent
	default:
		n.Kind = KindOther
	}

	if len(raw.Children) > 0 {
		var items []json.RawMessage
		if isNull(raw.Children) {
			return nil, contractError(path+".children", "children is null", nil)
		}
		if err := json.Unmarshal(raw.Children, &items); err != nil {
			return nil, contractError(path+".children", "children is not an array", err)
		}
		children, err := d.nodes(items, path+".children", n)
		if err != nil {
			return nil, err
		}
		n.Children = children
	}
	return n, nil
}

// resolveKey prefers the node's own key, then the file-level component
// metadata for its id, then the id itself.
func (d *decoder) resolveKey(raw rawNode) string {
	if raw.Key != "" {
		return raw.Key
	}
	meta := d.components
	if raw.Type == TypeComponentSet {
		meta = d.componentSets
	}
	if m, ok := meta[raw.ID]; ok && m.Key != "" {
		return m.Key
	}
	return raw.ID
}

func (d *decoder) variantAxes(raw rawNode, path string) ([]VariantAxis, error) {
	if len(raw.VariantGroupProperties) > 0 && !isNull(raw.VariantGroupProperties) {
		members, err := objectMembers(raw.VariantGroupProperties)
		if err != nil {
			return nil, contractError(path+".variantGroupProperties", "invalid variant metadata", err)
		}
		axes := make([]VariantAxis, 0, len(members))
		for _, m := range members {
			var a rawAxis
			if isObject(m.Value) {
				if err := json.Unmarshal(m.Value, &a); err != nil {
					return nil, contractError(path+".variantGroupProperties."+m.Name, "invalid variant axis", err)
				}
			}
			axes = append(axes, VariantAxis{Name: m.Name, Values: a.Values})
		}
		return axes, nil
	}

	if len(raw.ComponentPropertyDefinitions) > 0 && !isNull(raw.ComponentPropertyDefinitions) {
		members, err := objectMembers(raw.ComponentPropertyDefinitions)
		if err != nil {
			return nil, contractError(path+".componentPropertyDefinitions", "invalid property definitions", err)
		}
		var axes []VariantAxis
		for _, m := range members {
			var def rawPropertyDefinition
			if err := json.Unmarshal(m.Value, &def); err != nil {
				return nil, contractError(path+".componentPropertyDefinitions."+m.Name, "invalid property definition", err)
			}
			if def.Type == "VARIANT" {
				axes = append(axes, VariantAxis{Name: m.Name, Values: def.VariantOptions})
			}
		}
		return axes, nil
	}
	return nil, nil
}

// objectMembers decodes a JSON object keeping member order. A repeated name
// keeps its first position and takes the last value.
func objectMembers(data json.RawMessage) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	var out []member
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if i, seen := index[name]; seen {
			out[i].Value = value
			continue
		}
		index[name] = len(out)
		out = append(out, member{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
