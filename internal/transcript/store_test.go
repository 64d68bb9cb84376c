package transcript

import (
	"errors"
	"strings"
	"testing"
)

func sampleStore() *Store {
	return NewStore([]string{
		"Interview 1\n",
		"00:00:00-0 ((fMRI begins))\n",
		"\n",
		"PA1: continued turn\n",
		"\n",
		"00:00:12-3 PA2: okay\n",
		"trailing without stamp",
	})
}

func TestStoreIndexing(t *testing.T) {
	store := sampleStore()
	if store.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", store.Len())
	}
	if _, ok := store.Line(0); ok {
		t.Fatal("line 0 is a sentinel and must not be addressable")
	}
	if _, ok := store.Line(8); ok {
		t.Fatal("line past the end must not be addressable")
	}
	line, ok := store.Line(2)
	if !ok || line != "00:00:00-0 ((fMRI begins))\n" {
		t.Fatalf("Line(2) = %q, %v", line, ok)
	}
	if lines := store.Lines(); len(lines) != 7 || lines[0].Index != 1 {
		t.Fatalf("unexpected Lines(): %+v", lines)
	}
}

func TestStoreTimestampScans(t *testing.T) {
	store := sampleStore()

	stamp, at, err := store.PreviousTimestamp(5)
	if err != nil || stamp != "00:00:00-0" || at != 2 {
		t.Fatalf("PreviousTimestamp(5) = %q, %d, %v", stamp, at, err)
	}
	stamp, at, err = store.NextTimestamp(2)
	if err != nil || stamp != "00:00:12-3" || at != 6 {
		t.Fatalf("NextTimestamp(2) = %q, %d, %v", stamp, at, err)
	}
	if _, _, err := store.PreviousTimestamp(2); !errors.Is(err, ErrNoTimestamp) {
		t.Fatalf("PreviousTimestamp(2) error = %v, want ErrNoTimestamp", err)
	}
	if _, _, err := store.NextTimestamp(6); !errors.Is(err, ErrNoTimestamp) {
		t.Fatalf("NextTimestamp(6) error = %v, want ErrNoTimestamp", err)
	}
}

func TestReadKeepsNewlines(t *testing.T) {
	input := "header\n00:00:00-0 ((fMRI begins))\n\n00:03:26-6 PA1: Oh /wow/ [@@]"
	store, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if store.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", store.Len())
	}
	if line, _ := store.Line(3); line != "\n" {
		t.Fatalf("Line(3) = %q", line)
	}
	if line, _ := store.Line(4); line != "00:03:26-6 PA1: Oh /wow/ [@@]" {
		t.Fatalf("Line(4) = %q", line)
	}
}

func TestReadDecodesLegacyCharset(t *testing.T) {
	// 0xE9 is "é" in windows-1252.
	input := []byte("00:00:01-0 PA1: caf\xe9\n")
	store, err := Read(strings.NewReader(string(input)), ReadOptions{Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if line, _ := store.Line(1); line != "00:00:01-0 PA1: café\n" {
		t.Fatalf("Line(1) = %q", line)
	}
}

func TestReadStripsUTF8BOM(t *testing.T) {
	store, err := Read(strings.NewReader("\ufeff00:00:00-0 start\n"), ReadOptions{Encoding: "utf-8"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, ok := store.Stamp(1); !ok {
		line, _ := store.Line(1)
		t.Fatalf("expected BOM to be stripped, got %q", line)
	}
}

func TestLookupEncodingRejectsUnknown(t *testing.T) {
	if _, err := LookupEncoding("klingon-8"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
