// Package document provides the abstract, format-agnostic document tree
// the writers populate. A Node is an ordered object, an array, or a scalar;
// object keys keep their insertion order so encoded output is stable.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Kind is the shape of a node.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindScalar
)

type entry struct {
	key  string
	node *Node
}

// Node is one element of a document tree. Nodes are not safe for
// concurrent mutation; each request builds its own tree.
type Node struct {
	kind    Kind
	entries []entry
	index   map[string]int
	items   []*Node
	value   any
}

// NewObject creates an empty object node.
func NewObject() *Node {
	return &Node{kind: KindObject, index: make(map[string]int)}
}

// NewArray creates an empty array node.
func NewArray() *Node {
	return &Node{kind: KindArray}
}

// Scalar wraps a value. A *Node is returned unchanged.
func Scalar(v any) *Node {
	if n, ok := v.(*Node); ok {
		return n
	}
	return &Node{kind: KindScalar, value: v}
}

// Kind returns the node shape.
func (n *Node) Kind() Kind {
	return n.kind
}

// Value returns the scalar value.
func (n *Node) Value() any {
	return n.value
}

// Set stores v under key, replacing an existing entry in place.
func (n *Node) Set(key string, v any) *Node {
	n.mustBe(KindObject)
	child := Scalar(v)
	if i, ok := n.index[key]; ok {
		n.entries[i].node = child
		return n
	}
	n.index[key] = len(n.entries)
	n.entries = append(n.entries, entry{key: key, node: child})
	return n
}

// Object returns the object child under key, creating it when missing.
func (n *Node) Object(key string) *Node {
	if c, ok := n.Get(key); ok && c.kind == KindObject {
		return c
	}
	c := NewObject()
	n.Set(key, c)
	return c
}

// Array returns the array child under key, creating it when missing.
func (n *Node) Array(key string) *Node {
	if c, ok := n.Get(key); ok && c.kind == KindArray {
		return c
	}
	c := NewArray()
	n.Set(key, c)
	return c
}

// Get returns the child under key.
func (n *Node) Get(key string) (*Node, bool) {
	if n.kind != KindObject {
		return nil, false
	}
	i, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.entries[i].node, true
}

// Lookup follows a path of object keys.
func (n *Node) Lookup(path ...string) (*Node, bool) {
	cur := n
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Delete removes key, keeping the order of the remaining entries.
func (n *Node) Delete(key string) {
	i, ok := n.index[key]
	if !ok {
		return
	}
	n.entries = append(n.entries[:i], n.entries[i+1:]...)
	delete(n.index, key)
	for j := i; j < len(n.entries); j++ {
		n.index[n.entries[j].key] = j
	}
}

// Keys returns the object keys in insertion order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.entries))
	for i, e := range n.entries {
		keys[i] = e.key
	}
	return keys
}

// Append adds an element to an array node.
func (n *Node) Append(v any) *Node {
	n.mustBe(KindArray)
	n.items = append(n.items, Scalar(v))
	return n
}

// AppendObject adds and returns a new object element.
func (n *Node) AppendObject() *Node {
	c := NewObject()
	n.Append(c)
	return c
}

// Items returns the array elements.
func (n *Node) Items() []*Node {
	return n.items
}

// Len returns the number of entries or elements.
func (n *Node) Len() int {
	switch n.kind {
	case KindObject:
		return len(n.entries)
	case KindArray:
		return len(n.items)
	default:
		return 0
	}
}

func (n *Node) mustBe(k Kind) {
	if n.kind != k {
		panic(fmt.Sprintf("document: operation on %v node, want %v", n.kind, k))
	}
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "scalar"
	}
}

// Interface converts the tree into plain maps, slices and values.
func (n *Node) Interface() any {
	switch n.kind {
	case KindObject:
		m := make(map[string]any, len(n.entries))
		for _, e := range n.entries {
			m[e.key] = e.node.Interface()
		}
		return m
	case KindArray:
		s := make([]any, len(n.items))
		for i, item := range n.items {
			s[i] = item.Interface()
		}
		return s
	default:
		return n.value
	}
}

// Equal reports whether two trees have the same shape, key order and values.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindObject:
		if len(n.entries) != len(o.entries) {
			return false
		}
		for i, e := range n.entries {
			if e.key != o.entries[i].key || !e.node.Equal(o.entries[i].node) {
				return false
			}
		}
		return true
	case KindArray:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(n.value, o.value)
	}
}

// MarshalJSON encodes the tree keeping object key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	switch n.kind {
	case KindObject:
		buf.WriteByte('{')
		for i, e := range n.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := e.node.writeJSON(buf); err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range n.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(n.value)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

// MarshalYAML encodes the tree as a yaml.Node keeping key order.
func (n *Node) MarshalYAML() (any, error) {
	return n.yamlNode()
}

func (n *Node) yamlNode() (*yaml.Node, error) {
	switch n.kind {
	case KindObject:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range n.entries {
			v, err := e.node.yamlNode()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.key, err)
			}
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.key}, v)
		}
		return out, nil
	case KindArray:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.items {
			v, err := item.yamlNode()
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, v)
		}
		return out, nil
	default:
		out := &yaml.Node{}
		if err := out.Encode(n.value); err != nil {
			return nil, err
		}
		return out, nil
	}
}
