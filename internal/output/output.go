// Package output prints user-facing CLI text with optional color and a
// debug channel that is silent unless debug mode is on.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu     sync.RWMutex
	debug  bool
	stdout io.Writer = os.Stdout
)

var palette = map[string]*color.Color{
	"title":   color.New(color.FgCyan, color.Bold),
	"dim":     color.New(color.Faint),
	"success": color.New(color.FgGreen),
	"warning": color.New(color.FgYellow),
	"danger":  color.New(color.FgRed, color.Bold),
	"accent":  color.New(color.FgBlue),
}

// SetDebug toggles Debugf output.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

// IsDebug reports whether debug output is enabled.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debug
}

// SetWriter redirects output, returning the previous writer.
func SetWriter(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := stdout
	stdout = w
	return prev
}

func writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return stdout
}

func Printf(format string, args ...interface{}) {
	fmt.Fprintf(writer(), format, args...)
}

func Println(args ...interface{}) {
	fmt.Fprintln(writer(), args...)
}

func Debugf(format string, args ...interface{}) {
	if !IsDebug() {
		return
	}
	fmt.Fprint(writer(), Colorize("dim", fmt.Sprintf(format, args...)))
}

// Colorize wraps s in the color registered for role. Unknown roles and
// non-color terminals return s unchanged.
func Colorize(role, s string) string {
	c, ok := palette[role]
	if !ok {
		return s
	}
	return c.Sprint(s)
}
