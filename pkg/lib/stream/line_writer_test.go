package stream

import (
	"fmt"
	"strings"
	"testing"
)

func TestLineWriter_SplitsAcrossWrites(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	for _, chunk := range []string{"hel", "lo\nwor", "ld\r\n", "\npartial"} {
		n, err := w.Write([]byte(chunk))
		if err != nil || n != len(chunk) {
			t.Fatalf("Write(%q) = %d, %v", chunk, n, err)
		}
	}
	if fmt.Sprint(lines) != fmt.Sprint([]string{"hello", "world", ""}) {
		t.Fatalf("unexpected lines before flush: %q", lines)
	}

	w.Flush()
	w.Flush()
	if len(lines) != 4 || lines[3] != "partial" {
		t.Fatalf("unexpected lines after flush: %q", lines)
	}
}

func TestLineWriter_DoesNotRetainCallerBuffer(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	buf := []byte("abc")
	_, _ = w.Write(buf)
	buf[0] = 'z'
	w.Flush()

	if len(lines) != 1 || lines[0] != "abc" {
		t.Fatalf("expected buffered copy 'abc', got %q", lines)
	}
}

func TestLineWriter_SplitsOverlongLines(t *testing.T) {
	var lines []string
	w := NewLineWriter(func(s string) { lines = append(lines, s) })

	_, _ = w.Write([]byte(strings.Repeat("x", MaxLineLength+10)))
	w.Flush()

	if len(lines) != 2 || len(lines[0]) != MaxLineLength || len(lines[1]) != 10 {
		t.Fatalf("unexpected split: %d lines", len(lines))
	}
}

func TestLineWriter_NilReceiver(t *testing.T) {
	var w *LineWriter
	if n, err := w.Write([]byte("x")); n != 1 || err != nil {
		t.Fatalf("nil writer Write = %d, %v", n, err)
	}
	w.Flush()
}
