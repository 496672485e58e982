package manifest

import "github.com/javanhut/helix-manifest/internal/document"

// ExtractVariantProps returns the variant axis names of n in source order.
// The result is empty, never nil, when n carries no variant metadata.
func ExtractVariantProps(n *document.Node) []string {
	if n == nil || len(n.Variants) == 0 {
		return []string{}
	}
	props := make([]string, 0, len(n.Variants))
	for _, axis := range n.Variants {
		props = append(props, axis.Name)
	}
	return props
}
