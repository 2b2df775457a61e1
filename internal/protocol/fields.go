package protocol

import (
	"github.com/danmuck/fixctl/internal/protocol/tagvalue"
)

// String returns a scalar field value.
func (m *Message) String(name string) (string, error) {
	v, ok := m.Get(name)
	if !ok {
		return "", ErrFieldNotFound
	}
	if v.Kind != KindScalar {
		return "", ErrFieldTypeMismatch
	}
	return v.Scalar, nil
}

// Uint returns a scalar field value read as an unsigned decimal.
func (m *Message) Uint(name string) (uint32, error) {
	s, err := m.String(name)
	if err != nil {
		return 0, err
	}
	buf := []byte(s)
	return tagvalue.ParseUint(buf, 0, len(buf))
}

// Groups returns the instances of a repeating group field.
func (m *Message) Groups(name string) ([]GroupInstance, error) {
	v, ok := m.Get(name)
	if !ok {
		return nil, ErrFieldNotFound
	}
	if v.Kind != KindGroup {
		return nil, ErrFieldTypeMismatch
	}
	return v.Groups, nil
}
