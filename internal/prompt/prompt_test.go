package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// TestConsole_Ask verifies prompt formatting, trimming and sequential reads.
func TestConsole_Ask(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("  Berlin \r\nParis\n"), &out)

	got, err := c.Ask("Where do you live?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if got != "Berlin" {
		t.Errorf("Ask() = %q, want %q", got, "Berlin")
	}
	if out.String() != "Where do you live?\n-->" {
		t.Errorf("prompt output = %q", out.String())
	}

	got, err = c.Ask("again")
	if err != nil || got != "Paris" {
		t.Errorf("second Ask() = %q, %v; want Paris", got, err)
	}
}

// TestConsole_Ask_EOF verifies that a last line without newline is returned and
// that exhausted input yields ErrNoInput.
func TestConsole_Ask_EOF(t *testing.T) {
	c := NewConsole(strings.NewReader("Rome"), &bytes.Buffer{})

	got, err := c.Ask("city?")
	if err != nil || got != "Rome" {
		t.Fatalf("Ask() = %q, %v; want Rome", got, err)
	}
	if _, err := c.Ask("city?"); !errors.Is(err, ErrNoInput) {
		t.Errorf("Ask() error = %v, want ErrNoInput", err)
	}
}
