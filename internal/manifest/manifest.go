// Package manifest builds the component manifest of a design document: a
// mapping from normalized component names to component keys and variant
// axes, stamped with the time it was generated.
package manifest

import (
	"bytes"
	"encoding/json"
	"io"
	"time"
)

// TimestampLayout is the ISO-8601 form manifests use for their timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ComponentEntry is the manifest record of one component.
type ComponentEntry struct {
	Key          string   `json:"key"`
	VariantProps []string `json:"variantProps"`
}

// Components is an insertion-ordered mapping from normalized name to entry.
// Setting an existing name replaces its entry in place.
type Components struct {
	names   []string
	entries map[string]ComponentEntry
}

// NewComponents returns an empty mapping.
func NewComponents() *Components {
	return &Components{entries: make(map[string]ComponentEntry)}
}

// Set stores e under name and reports whether it replaced an entry.
func (c *Components) Set(name string, e ComponentEntry) (ComponentEntry, bool) {
	if e.VariantProps == nil {
		e.VariantProps = []string{}
	}
	prev, exists := c.entries[name]
	if !exists {
		c.names = append(c.names, name)
	}
	c.entries[name] = e
	return prev, exists
}

// Get returns the entry stored under name.
func (c *Components) Get(name string) (ComponentEntry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Len returns the number of entries.
func (c *Components) Len() int { return len(c.names) }

// Names returns the entry names in insertion order.
func (c *Components) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (c *Components) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(c.entries[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Manifest is one generated snapshot. Version and GeneratedAt always hold
// the same instant.
type Manifest struct {
	Version     time.Time
	GeneratedAt time.Time
	Components  *Components
}

type manifestJSON struct {
	Version     string      `json:"version"`
	GeneratedAt string      `json:"generatedAt"`
	Components  *Components `json:"components"`
}

// MarshalJSON encodes the manifest with UTC millisecond timestamps.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	components := m.Components
	if components == nil {
		components = NewComponents()
	}
	return marshalNoEscape(manifestJSON{
		Version:     FormatTimestamp(m.Version),
		GeneratedAt: FormatTimestamp(m.GeneratedAt),
		Components:  components,
	})
}

// Encode writes the manifest as indented JSON followed by a newline.
func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// JSON returns the indented encoding without a trailing newline.
func (m *Manifest) JSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FormatTimestamp renders t in the manifest timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
