package manifest

import (
	"fmt"
	"time"

	"github.com/javanhut/helix-manifest/internal/document"
)

// DefaultMaxDepth bounds how deep a scan descends before giving up.
const DefaultMaxDepth = 1024

// StructuralError is returned when a scan descends past its depth ceiling,
// which happens with cyclic or pathologically deep input.
type StructuralError struct {
	Depth int
	Limit int
	Path  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("document tree exceeds depth limit %d at depth %d (%s)", e.Limit, e.Depth, e.Path)
}

// Options controls a scan.
type Options struct {
	// MaxDepth is the deepest level visited; roots are at depth 1.
	MaxDepth int

	// Now supplies the generation timestamp.
	Now func() time.Time
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxDepth: DefaultMaxDepth,
		Now:      time.Now,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Collision records a name that more than one node normalized to.
type Collision struct {
	Name        string
	PreviousKey string
	Key         string
}

// Stats summarizes one scan.
type Stats struct {
	Visited    int
	Entries    int
	Collisions []Collision
}

// Generate scans roots and wraps the result in a manifest stamped with a
// single captured instant.
func Generate(roots []*document.Node, opts Options) (*Manifest, error) {
	m, _, err := GenerateWithStats(roots, opts)
	return m, err
}

// GenerateWithStats is Generate that also returns the scan statistics.
func GenerateWithStats(roots []*document.Node, opts Options) (*Manifest, Stats, error) {
	opts = opts.withDefaults()
	components, stats, err := Scan(roots, opts)
	if err != nil {
		return nil, Stats{}, err
	}
	now := opts.Now()
	return &Manifest{
		Version:     now,
		GeneratedAt: now,
		Components:  components,
	}, stats, nil
}

// Scan walks every tree in roots, pre-order with children in source order,
// and collects one entry per variant family and per standalone component
// that is not itself a variant of a family.
//
// When two nodes normalize to the same name the node visited last wins and
// the name keeps the position of its first insertion. Callers that want to
// surface such clashes can inspect Stats.Collisions.
func Scan(roots []*document.Node, opts Options) (*Components, Stats, error) {
	opts = opts.withDefaults()
	s := &scanner{
		maxDepth:   opts.MaxDepth,
		components: NewComponents(),
	}
	for i, root := range roots {
		if err := s.visit(root, 1, fmt.Sprintf("roots[%d]", i)); err != nil {
			return nil, Stats{}, err
		}
	}
	s.stats.Entries = s.components.Len()
	return s.components, s.stats, nil
}

type scanner struct {
	maxDepth   int
	components *Components
	stats      Stats
}

func (s *scanner) visit(n *document.Node, depth int, path string) error {
	if n == nil {
		return &document.InputContractError{Path: path, Reason: "nil node"}
	}
	if depth > s.maxDepth {
		return &StructuralError{Depth: depth, Limit: s.maxDepth, Path: path}
	}
	s.stats.Visited++

	if entry, ok := classify(n); ok {
		name := Normalize(n.Name)
		if prev, replaced := s.components.Set(name, entry); replaced {
			s.stats.Collisions = append(s.stats.Collisions, Collision{
				Name:        name,
				PreviousKey: prev.Key,
				Key:         entry.Key,
			})
		}
	}

	for i, child := range n.Children {
		if err := s.visit(child, depth+1, childPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

// classify applies the entry rules in order; the first match wins.
func classify(n *document.Node) (ComponentEntry, bool) {
	switch {
	case n.Kind == document.KindVariantFamily:
		return ComponentEntry{Key: n.Key, VariantProps: ExtractVariantProps(n)}, true
	case n.Kind == document.KindStandaloneComponent && !n.Parent.IsVariantFamily():
		return ComponentEntry{Key: n.Key, VariantProps: []string{}}, true
	default:
		// Variants inside a family are represented by the family.
		return ComponentEntry{}, false
	}
}

func childPath(parent string, i int) string {
	return fmt.Sprintf("%s.children[%d]", parent, i)
}
