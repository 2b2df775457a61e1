package protocol

import (
	"sort"

	"github.com/danmuck/fixctl/internal/protocol/schema"
)

// Kind tells scalar values from expanded repeating groups.
type Kind uint8

const (
	KindScalar Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindGroup:
		return "group"
	default:
		return "invalid"
	}
}

// Field is one resolved tag/value pair.
type Field struct {
	Tag   schema.TagID
	Name  string
	Value string
}

// GroupInstance is one repetition of a repeating group, in wire order.
// It may hold fewer fields than the group layout.
type GroupInstance []Field

// Get returns the first value stored under name.
func (g GroupInstance) Get(name string) (string, bool) {
	for _, f := range g {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Map flattens the instance; later duplicates win.
func (g GroupInstance) Map() map[string]string {
	out := make(map[string]string, len(g))
	for _, f := range g {
		out[f.Name] = f.Value
	}
	return out
}

// Value is either a scalar string or the instances of a repeating group.
type Value struct {
	Kind   Kind
	Scalar string
	Groups []GroupInstance
}

func Scalar(v string) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

func Group(instances []GroupInstance) Value {
	return Value{Kind: KindGroup, Groups: instances}
}

// Native converts the value to plain Go data: a string, or a slice of
// per-instance maps.
func (v Value) Native() any {
	if v.Kind != KindGroup {
		return v.Scalar
	}
	out := make([]map[string]string, 0, len(v.Groups))
	for _, inst := range v.Groups {
		out = append(out, inst.Map())
	}
	return out
}

// Message is the result of one decode. Fields is keyed by resolved field
// name; a name seen twice keeps its last value.
type Message struct {
	Fields map[string]Value
	// Truncated is set when scanning stopped on a segment missing its '='
	// or its delimiter.
	Truncated bool
	// Consumed counts the bytes covered by complete segments.
	Consumed int
	// Clamped is set when a group declared more empty repetitions than bytes
	// left in the buffer; the empty tail was cut at that many instances.
	Clamped bool
}

func newMessage() *Message {
	return &Message{Fields: make(map[string]Value)}
}

func (m *Message) set(name string, v Value) {
	m.Fields[name] = v
}

func (m *Message) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Fields)
}

func (m *Message) Get(name string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.Fields[name]
	return v, ok
}

// Names returns the field names in ascending order.
func (m *Message) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map converts the message to plain Go data for rendering.
func (m *Message) Map() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for name, v := range m.Fields {
		out[name] = v.Native()
	}
	return out
}
