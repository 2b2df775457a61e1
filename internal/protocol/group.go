package protocol

import (
	"slices"

	"github.com/danmuck/fixctl/internal/protocol/schema"
	"github.com/danmuck/fixctl/internal/protocol/tagvalue"
)

// decodeGroup reads up to count instances starting at pos. Each instance
// takes at most len(members) pairs and ends early at a tag outside members
// or at an incomplete segment; that tag is left unconsumed for the caller.
// Every repetition is appended, however few fields it holds.
//
// Once an instance consumes nothing, every later one would be empty too, so
// the rest of the count is filled with empty instances in one step. That
// fill is capped at the bytes left in buf and clamped reports the cap was hit.
// It returns the offset of the first byte not consumed.
func (d *Decoder) decodeGroup(buf []byte, pos int, count uint32, members []schema.TagID) (next int, instances []GroupInstance, clamped bool, err error) {
	instances = make([]GroupInstance, 0, int(min(count, 8)))
	for i := uint32(0); i < count && pos < len(buf); i++ {
		start := pos
		inst := make(GroupInstance, 0, len(members))
		for len(inst) < len(members) && pos < len(buf) {
			eq := tagvalue.FindDelimiter(buf, pos, tagvalue.EqualsSign)
			if eq == tagvalue.NotFound {
				break
			}
			raw, err := tagvalue.ParseUint(buf, pos, eq)
			if err != nil {
				return pos, nil, false, &DecodeError{Offset: pos, Err: ErrInvalidTag, Cause: err}
			}
			tag := schema.TagID(raw)
			if !slices.Contains(members, tag) {
				break
			}
			end := tagvalue.FindDelimiter(buf, eq+1, d.delim)
			if end == tagvalue.NotFound {
				break
			}
			inst = append(inst, Field{Tag: tag, Name: d.name(tag), Value: string(buf[eq+1 : end])})
			pos = end + 1
		}
		if pos == start {
			remaining := uint64(count - i)
			fill := min(remaining, uint64(len(buf)-pos))
			for j := uint64(0); j < fill; j++ {
				instances = append(instances, GroupInstance{})
			}
			return pos, instances, fill < remaining, nil
		}
		instances = append(instances, inst)
	}
	return pos, instances, false, nil
}
