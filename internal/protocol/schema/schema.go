package schema

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
)

// TagID identifies a field on the wire. Every value is a legal tag.
type TagID uint32

// FieldNames resolves tags to field names.
type FieldNames interface {
	LookupFieldName(tag TagID) (string, bool)
}

// GroupLayouts describes repeating groups keyed by their count tag.
type GroupLayouts interface {
	LookupGroupMembers(count TagID) ([]TagID, bool)
	Owner(tag TagID) (TagID, bool)
}

// UnknownName is the placeholder name for a tag missing from the dictionary.
func UnknownName(tag TagID) string {
	return "UnknownTag(" + strconv.FormatUint(uint64(tag), 10) + ")"
}

// Dictionary maps tags to field names. A nil *Dictionary is empty.
type Dictionary struct {
	names map[TagID]string
}

func NewDictionary(names map[TagID]string) *Dictionary {
	d := &Dictionary{names: make(map[TagID]string, len(names))}
	for tag, name := range names {
		d.names[tag] = name
	}
	log.Debug().Int("fields", len(d.names)).Msg("schema dictionary built")
	return d
}

func (d *Dictionary) LookupFieldName(tag TagID) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[tag]
	return name, ok
}

// Name never fails: unknown tags resolve to UnknownName(tag).
func (d *Dictionary) Name(tag TagID) string {
	if name, ok := d.LookupFieldName(tag); ok {
		return name
	}
	return UnknownName(tag)
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Tags returns the known tags in ascending order.
func (d *Dictionary) Tags() []TagID {
	if d == nil {
		return nil
	}
	tags := make([]TagID, 0, len(d.names))
	for tag := range d.names {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// ConflictError reports a tag claimed by more than one group.
type ConflictError struct {
	Tag    TagID
	Group  TagID
	Other  TagID
	Reason string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("schema: tag=%d group=%d other=%d: %s", e.Tag, e.Group, e.Other, e.Reason)
}

// Groups maps count tags to their ordered member tags, with a reverse
// index from member tag to owning count tag. A nil *Groups is empty.
type Groups struct {
	layouts map[TagID][]TagID
	owner   map[TagID]TagID
}

// NewGroups copies layouts and indexes membership. A tag may belong to at
// most one group, and a count tag may not be a member of any group.
func NewGroups(layouts map[TagID][]TagID) (*Groups, error) {
	g := &Groups{
		layouts: make(map[TagID][]TagID, len(layouts)),
		owner:   make(map[TagID]TagID),
	}
	counts := make([]TagID, 0, len(layouts))
	for count := range layouts {
		counts = append(counts, count)
	}
	// deterministic conflict reporting
	sort.Slice(counts, func(i, j int) bool { return counts[i] < counts[j] })

	for _, count := range counts {
		members := append([]TagID(nil), layouts[count]...)
		for _, tag := range members {
			if other, ok := g.owner[tag]; ok && other != count {
				log.Error().
					Uint32("tag", uint32(tag)).
					Uint32("group", uint32(count)).
					Uint32("other", uint32(other)).
					Msg("schema.NewGroups member claimed twice")
				return nil, ConflictError{Tag: tag, Group: count, Other: other, Reason: "member of two groups"}
			}
			g.owner[tag] = count
		}
		g.layouts[count] = members
	}
	for _, count := range counts {
		if other, ok := g.owner[count]; ok {
			log.Error().
				Uint32("tag", uint32(count)).
				Uint32("other", uint32(other)).
				Msg("schema.NewGroups count tag is also a member")
			return nil, ConflictError{Tag: count, Group: count, Other: other, Reason: "count tag is a group member"}
		}
	}
	log.Debug().Int("groups", len(g.layouts)).Int("members", len(g.owner)).Msg("schema groups built")
	return g, nil
}

// LookupGroupMembers returns a copy of the member layout for a count tag.
func (g *Groups) LookupGroupMembers(count TagID) ([]TagID, bool) {
	if g == nil {
		return nil, false
	}
	members, ok := g.layouts[count]
	if !ok {
		return nil, false
	}
	return append([]TagID(nil), members...), true
}

// Owner returns the count tag of the group tag belongs to.
func (g *Groups) Owner(tag TagID) (TagID, bool) {
	if g == nil {
		return 0, false
	}
	count, ok := g.owner[tag]
	return count, ok
}

func (g *Groups) IsMember(tag TagID) bool {
	_, ok := g.Owner(tag)
	return ok
}

func (g *Groups) IsCountTag(tag TagID) bool {
	if g == nil {
		return false
	}
	_, ok := g.layouts[tag]
	return ok
}

func (g *Groups) Len() int {
	if g == nil {
		return 0
	}
	return len(g.layouts)
}

// CountTags returns the group count tags in ascending order.
func (g *Groups) CountTags() []TagID {
	if g == nil {
		return nil
	}
	tags := make([]TagID, 0, len(g.layouts))
	for tag := range g.layouts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
