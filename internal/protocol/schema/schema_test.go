package schema

import (
	"errors"
	"testing"

	"github.com/danmuck/fixctl/internal/testutil/testlog"
)

func TestDictionaryNameFallsBackToUnknown(t *testing.T) {
	testlog.Start(t)
	d := NewDictionary(map[TagID]string{8: "BeginString", 35: "MsgType"})
	if got := d.Name(35); got != "MsgType" {
		t.Fatalf("expected MsgType, got %q", got)
	}
	if got := d.Name(9999); got != "UnknownTag(9999)" {
		t.Fatalf("expected UnknownTag(9999), got %q", got)
	}
	if _, ok := d.LookupFieldName(9999); ok {
		t.Fatalf("expected lookup miss")
	}
	tags := d.Tags()
	if len(tags) != 2 || tags[0] != 8 || tags[1] != 35 {
		t.Fatalf("unexpected tags: %v", tags)
	}
}

func TestDictionaryIsolatedFromSource(t *testing.T) {
	testlog.Start(t)
	src := map[TagID]string{8: "BeginString"}
	d := NewDictionary(src)
	src[8] = "Mutated"
	src[9] = "BodyLength"
	if d.Name(8) != "BeginString" || d.Len() != 1 {
		t.Fatalf("dictionary changed with its source map")
	}
}

func TestNilDictionaryAndGroupsAreEmpty(t *testing.T) {
	testlog.Start(t)
	var d *Dictionary
	var g *Groups
	if d.Name(8) != "UnknownTag(8)" || d.Len() != 0 {
		t.Fatalf("nil dictionary should resolve everything as unknown")
	}
	if g.IsMember(958) || g.IsCountTag(957) || g.Len() != 0 {
		t.Fatalf("nil groups should be empty")
	}
}

func TestGroupsMembershipIndex(t *testing.T) {
	testlog.Start(t)
	g, err := NewGroups(map[TagID][]TagID{
		957: {958, 959, 960},
		453: {448, 447, 452},
	})
	if err != nil {
		t.Fatalf("new groups: %v", err)
	}
	if owner, ok := g.Owner(959); !ok || owner != 957 {
		t.Fatalf("expected 959 owned by 957, got %d ok=%v", owner, ok)
	}
	if !g.IsMember(452) || g.IsMember(957) || g.IsMember(35) {
		t.Fatalf("unexpected membership answers")
	}
	if !g.IsCountTag(453) || g.IsCountTag(448) {
		t.Fatalf("unexpected count tag answers")
	}
	members, ok := g.LookupGroupMembers(957)
	if !ok || len(members) != 3 || members[0] != 958 || members[2] != 960 {
		t.Fatalf("unexpected members: %v", members)
	}
	members[0] = 1
	again, _ := g.LookupGroupMembers(957)
	if again[0] != 958 {
		t.Fatalf("layout mutated through returned slice")
	}
	counts := g.CountTags()
	if len(counts) != 2 || counts[0] != 453 || counts[1] != 957 {
		t.Fatalf("unexpected count tags: %v", counts)
	}
}

func TestGroupsRejectSharedMemberDeterministic(t *testing.T) {
	testlog.Start(t)
	_, err := NewGroups(map[TagID][]TagID{
		957: {958, 959},
		100: {959},
	})
	var ce ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.Tag != 959 || ce.Group != 957 || ce.Other != 100 {
		t.Fatalf("unexpected conflict: %+v", ce)
	}
}

func TestGroupsRejectCountTagAsMember(t *testing.T) {
	testlog.Start(t)
	_, err := NewGroups(map[TagID][]TagID{
		957: {958, 453},
		453: {448},
	})
	var ce ConflictError
	if !errors.As(err, &ce) || ce.Tag != 453 || ce.Reason != "count tag is a group member" {
		t.Fatalf("expected count tag conflict, got %v", err)
	}
}

func TestGroupsAllowRepeatedMemberInSameGroup(t *testing.T) {
	testlog.Start(t)
	g, err := NewGroups(map[TagID][]TagID{957: {958, 958}})
	if err != nil {
		t.Fatalf("new groups: %v", err)
	}
	members, _ := g.LookupGroupMembers(957)
	if len(members) != 2 {
		t.Fatalf("expected layout length preserved, got %v", members)
	}
}
