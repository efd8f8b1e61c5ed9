// Package prompt provides the console capability the crash flow and the
// commands use for user I/O, plus a few question helpers built on it.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"djdeploy/internal/i18n"

	"golang.org/x/term"
)

// Console displays messages and reads single lines of input.
type Console interface {
	Tell(msg string)
	Ask(prompt string) (string, error)
}

// ConsoleIO is a Console over an arbitrary reader and writer.
type ConsoleIO struct {
	out    io.Writer
	reader *bufio.Reader
}

func NewConsole(in io.Reader, out io.Writer) *ConsoleIO {
	return &ConsoleIO{out: out, reader: bufio.NewReader(in)}
}

// NewStdConsole binds the console to the process stdin and stdout.
func NewStdConsole() *ConsoleIO {
	return NewConsole(os.Stdin, os.Stdout)
}

func (c *ConsoleIO) Tell(msg string) {
	fmt.Fprintln(c.out, msg)
}

// Ask prints prompt and returns the next line without its line ending.
// A final line without a newline is returned with a nil error; io.EOF is
// only reported when nothing at all could be read.
func (c *ConsoleIO) Ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	text, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && text != "" {
			return strings.TrimRight(text, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(text, "\r\n"), nil
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func AskString(c Console, label, defaultValue string) (string, error) {
	q := label + ": "
	if defaultValue != "" {
		q = fmt.Sprintf("%s [%s]: ", label, defaultValue)
	}
	text, err := c.Ask(q)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return defaultValue, nil
	}
	return text, nil
}

// AskBool asks a yes/no question, returning defaultValue on empty or
// unrecognized input.
func AskBool(c Console, label string, defaultValue bool) (bool, error) {
	defaultText := i18n.T(i18n.MsgPromptDefaultNo)
	if defaultValue {
		defaultText = i18n.T(i18n.MsgPromptDefaultYes)
	}
	text, err := c.Ask(i18n.T(i18n.MsgPromptDefaultLabel, map[string]interface{}{"Label": label, "Default": defaultText}))
	if err != nil {
		return false, err
	}
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return defaultValue, nil
	}
	if text == "y" || text == "yes" || text == i18n.T(i18n.MsgPromptDefaultYes) || text == "true" {
		return true, nil
	}
	if text == "n" || text == "no" || text == i18n.T(i18n.MsgPromptDefaultNo) || text == "false" {
		return false, nil
	}
	return defaultValue, nil
}
