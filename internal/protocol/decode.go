package protocol

import (
	"github.com/danmuck/fixctl/internal/protocol/schema"
	"github.com/danmuck/fixctl/internal/protocol/tagvalue"
)

const (
	// Caret is the default delimiter.
	Caret byte = '^'
	// SOH is the standard FIX field delimiter.
	SOH byte = 0x01
	// Pipe is the common human-readable substitute for SOH.
	Pipe byte = '|'
)

type Option func(*Decoder)

// WithDelimiter sets the byte terminating each tag=value segment.
func WithDelimiter(delim byte) Option {
	return func(d *Decoder) {
		d.delim = delim
	}
}

// Decoder turns one buffer into a Message. It holds no mutable state and is
// safe for concurrent use once constructed.
type Decoder struct {
	names  schema.FieldNames
	groups schema.GroupLayouts
	delim  byte
}

// NewDecoder binds a dictionary and group layouts. Nil collaborators act as
// empty: every tag resolves as unknown and no group ever expands.
func NewDecoder(names schema.FieldNames, groups schema.GroupLayouts, opts ...Option) *Decoder {
	if names == nil {
		names = (*schema.Dictionary)(nil)
	}
	if groups == nil {
		groups = (*schema.Groups)(nil)
	}
	d := &Decoder{names: names, groups: groups, delim: Caret}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) Delimiter() byte {
	return d.delim
}

// Decode reads buf front to back. A segment missing its '=' or its
// delimiter ends the scan and the fields read so far are returned with
// Truncated set. A tag or group count that is not a plain unsigned decimal
// fails the decode with a *DecodeError.
func (d *Decoder) Decode(buf []byte) (*Message, error) {
	msg := newMessage()
	pos := 0
	for pos < len(buf) {
		eq := tagvalue.FindDelimiter(buf, pos, tagvalue.EqualsSign)
		if eq == tagvalue.NotFound {
			break
		}
		raw, err := tagvalue.ParseUint(buf, pos, eq)
		if err != nil {
			return nil, &DecodeError{Offset: pos, Err: ErrInvalidTag, Cause: err}
		}
		tag := schema.TagID(raw)

		end := tagvalue.FindDelimiter(buf, eq+1, d.delim)
		if end == tagvalue.NotFound {
			break
		}

		if members, ok := d.groups.LookupGroupMembers(tag); ok {
			count, err := tagvalue.ParseUint(buf, eq+1, end)
			if err != nil {
				return nil, &DecodeError{Offset: eq + 1, Tag: tag, Err: ErrInvalidGroupCount, Cause: err}
			}
			next, instances, clamped, err := d.decodeGroup(buf, end+1, count, members)
			if err != nil {
				return nil, err
			}
			msg.set(d.name(tag), Group(instances))
			msg.Clamped = msg.Clamped || clamped
			pos = next
			continue
		}

		// Group members outside an active group are dropped.
		if _, member := d.groups.Owner(tag); !member {
			msg.set(d.name(tag), Scalar(string(buf[eq+1:end])))
		}
		pos = end + 1
	}
	msg.Consumed = pos
	msg.Truncated = pos < len(buf)
	return msg, nil
}

func (d *Decoder) name(tag schema.TagID) string {
	if name, ok := d.names.LookupFieldName(tag); ok {
		return name
	}
	return schema.UnknownName(tag)
}
