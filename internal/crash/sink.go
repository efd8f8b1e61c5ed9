package crash

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrIO means the report could not be written to disk.
var ErrIO = errors.New("crash report write failed")

// DefaultPrefix starts the name of every local report file.
const DefaultPrefix = "djdeploy-bug-report-"

// Sink writes report bodies to fresh files for the user's records.
type Sink struct {
	// Dir defaults to the OS temp directory.
	Dir    string
	Prefix string
}

// Write stores body in a newly created file with a random, collision
// resistant name and returns its path. The file is always closed; on
// failure it is removed and the error wraps ErrIO.
func (s Sink) Write(body string) (path string, err error) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if s.Dir != "" {
		if merr := os.MkdirAll(s.Dir, 0o700); merr != nil {
			return "", fmt.Errorf("%w: %v", ErrIO, merr)
		}
	}
	f, err := os.CreateTemp(s.Dir, prefix+"*.md")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	name := f.Name()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %v", ErrIO, name, cerr)
		}
		if err != nil {
			os.Remove(name)
			path = ""
		}
	}()

	if _, werr := io.WriteString(f, body); werr != nil {
		return "", fmt.Errorf("%w: write %s: %v", ErrIO, name, werr)
	}
	return name, nil
}
