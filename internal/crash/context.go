package crash

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
)

// Context describes one crash: what failed, during which command, and the
// captured traceback. It is a value and is never modified after creation.
type Context struct {
	Kind      string
	Message   string
	Command   string
	Traceback string
}

// NewContext describes err. When traceback is empty the error chain is used.
func NewContext(err error, command, traceback string) Context {
	if traceback == "" {
		traceback = ErrorChain(err)
	}
	return Context{
		Kind:      kindOf(err),
		Message:   messageOf(err),
		Command:   command,
		Traceback: traceback,
	}
}

// FromPanic describes a recovered panic value. It must be called from the
// deferred function that recovered, so the stack still shows the panic site.
func FromPanic(v interface{}, command string) Context {
	kind := "panic"
	if err, ok := v.(error); ok {
		kind = kindOf(err)
	}
	return Context{
		Kind:      kind,
		Message:   fmt.Sprint(v),
		Command:   command,
		Traceback: string(debug.Stack()),
	}
}

// kindOf names the dynamic type of err without pointer or package prefix,
// e.g. *fs.PathError -> PathError. fmt.Errorf wrappers are looked through.
func kindOf(err error) string {
	if err == nil {
		return "error"
	}
	for reflect.TypeOf(err).String() == "*fmt.wrapError" {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	s := t.String()
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ErrorChain formats err and every error it wraps, root cause first.
func ErrorChain(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Error chain (root cause first):\n")
	var chain []error
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "  %s: %s\n", reflect.TypeOf(chain[i]), chain[i].Error())
	}
	return strings.TrimRight(b.String(), "\n")
}

type expectedError struct {
	err error
}

func (e expectedError) Error() string { return e.err.Error() }
func (e expectedError) Unwrap() error { return e.err }

// Expected marks err as a user-facing failure (bad input, missing
// credentials) that Guard reports as-is instead of treating as a crash.
func Expected(err error) error {
	if err == nil {
		return nil
	}
	return expectedError{err: err}
}

// IsExpected reports whether err was marked with Expected.
func IsExpected(err error) bool {
	var e expectedError
	return errors.As(err, &e)
}
