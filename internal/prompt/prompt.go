// Package prompt reads answers to interactive questions, one line at a time.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when input ends before an answer is read.
var ErrNoInput = errors.New("no input available")

// Asker asks a question and returns the trimmed answer.
type Asker interface {
	Ask(question string) (string, error)
}

// Console asks on out (normally stderr) and reads answers from in (normally stdin).
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole returns a Console reading from in and writing prompts to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Ask writes the question followed by "\n-->" and returns the next line, trimmed.
// A final line without a newline is still returned; end of input with nothing read
// returns ErrNoInput.
func (c *Console) Ask(question string) (string, error) {
	if _, err := fmt.Fprintf(c.out, "%s\n-->", question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrNoInput
			}
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
