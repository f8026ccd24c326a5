package strings

import (
	"testing"
)

func TestBytesToString(t *testing.T) {
	b := []byte("hello world")
	s := BytesToString(b)

	if s != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", s)
	}

	// Test empty slice
	empty := BytesToString([]byte{})
	if empty != "" {
		t.Errorf("expected empty string, got '%s'", empty)
	}
}

func TestClone(t *testing.T) {
	src := []byte("owned")
	s := Clone(BytesToString(src))
	src[0] = 'X'

	if s != "owned" {
		t.Errorf("expected clone to own its memory, got '%s'", s)
	}

	if Clone("") != "" {
		t.Error("expected empty clone to stay empty")
	}
}
