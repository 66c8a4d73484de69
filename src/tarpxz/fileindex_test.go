package tarpxz

import (
	"testing"
)

func collectNames(head *fileIndexEntry) []string {
	var names []string
	for e := head; e != nil; e = e.next {
		if e.isEnd {
			names = append(names, "(end)")
			continue
		}
		names = append(names, e.Name)
	}
	return names
}

func TestFileIndexBuilderPlainMembers(t *testing.T) {
	var b fileIndexBuilder
	b.add(0, "a.txt")
	b.add(512, "b.txt")
	b.end(1024)

	got := collectNames(b.head)
	want := []string{"a.txt", "b.txt", "(end)"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFileIndexBuilderCoalescesMultiHeader(t *testing.T) {
	var b fileIndexBuilder
	b.add(0, "._a.txt")
	b.add(512, "a.txt")
	b.end(1024)

	if b.head.Name != "a.txt" {
		t.Fatalf("first real entry = %q, want a.txt", b.head.Name)
	}
	if b.head.Offset != 0 {
		t.Errorf("coalesced offset = %d, want 0 (the ._ run's start)", b.head.Offset)
	}
}

func TestFileIndexBuilderTrailingMultiHeaderAttachesToEnd(t *testing.T) {
	var b fileIndexBuilder
	b.add(0, "a.txt")
	b.add(512, "._b.txt")
	b.end(1024)

	if b.tail.Offset != 512 {
		t.Errorf("sentinel offset = %d, want 512 (the trailing ._ run's start)", b.tail.Offset)
	}
	if !b.tail.isEnd {
		t.Error("tail entry should be the sentinel")
	}
}

func TestWriteParseFileIndexRoundTrip(t *testing.T) {
	var b fileIndexBuilder
	b.add(0, "a.txt")
	b.add(100, "dir/b.txt")
	b.end(250)

	var payload []byte
	if err := writeFileIndexEntries(b.head, func(chunk []byte) error {
		payload = append(payload, chunk...)
		return nil
	}); err != nil {
		t.Fatalf("writeFileIndexEntries: %s", err)
	}

	entries, err := parseFileIndexEntries(payload)
	if err != nil {
		t.Fatalf("parseFileIndexEntries: %s", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Name != "a.txt" || entries[0].Offset != 0 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Name != "dir/b.txt" || entries[1].Offset != 100 {
		t.Errorf("entry 1 = %+v", entries[1])
	}
	if !entries[2].isEnd || entries[2].Offset != 250 {
		t.Errorf("entry 2 (sentinel) = %+v", entries[2])
	}
}

func TestIsMultiHeader(t *testing.T) {
	cases := map[string]bool{
		"a.txt":         false,
		"._a.txt":       true,
		"dir/._a.txt":   true,
		"._dir/a.txt":   false,
		"dir/sub/._x":   true,
	}
	for name, want := range cases {
		if got := isMultiHeader(name); got != want {
			t.Errorf("isMultiHeader(%q) = %v, want %v", name, got, want)
		}
	}
}
