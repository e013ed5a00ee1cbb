// Package prompt reads interactive input: plain lines, hidden passwords,
// and yes/no confirmations.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads from one input stream. Commands share a single Prompter
// so buffered input is never lost between questions.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func New() *Prompter {
	return &Prompter{reader: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// NewWithStreams is the test seam.
func NewWithStreams(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

// Line asks for one line of input and returns it trimmed.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// LineDefault asks for one line, falling back to def on blank input.
func (p *Prompter) LineDefault(label, def string) (string, error) {
	display := label
	if def != "" {
		display = fmt.Sprintf("%s [%s]", label, def)
	}
	line, err := p.Line(display)
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Password asks for input with echo disabled. When stdin is not a
// terminal (tests, pipes) it degrades to a plain line read.
func (p *Prompter) Password(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return p.Line(label)
	}

	fmt.Fprintf(p.out, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// Confirm asks a yes/no question; only an explicit yes counts, so it is
// the right shape for destructive confirmations.
func (p *Prompter) Confirm(question string) bool {
	return p.ConfirmDefault(question, false)
}

// ConfirmDefault asks a yes/no question where a blank answer keeps def,
// shown as [Y/n] or [y/N] accordingly.
func (p *Prompter) ConfirmDefault(question string, def bool) bool {
	suffix := " [y/N]"
	if def {
		suffix = " [Y/n]"
	}
	answer, err := p.Line(question + suffix)
	if err != nil {
		return def
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}
