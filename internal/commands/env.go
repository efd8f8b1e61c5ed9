// Package commands implements the djdeploy subcommands. Every command runs
// inside crash.Guard, so a command returns an error marked with
// crash.Expected for failures the user can fix and anything else is
// treated as a crash.
package commands

import (
	"errors"
	"fmt"

	"djdeploy/internal/appconfig"
	"djdeploy/internal/crash"
	"djdeploy/internal/database"
	"djdeploy/internal/prompt"

	"github.com/spf13/pflag"
)

// Env is what commands share.
type Env struct {
	Config     appconfig.Config
	ConfigPath string
	Console    prompt.Console
	Handler    *crash.Handler
	Collector  *crash.Collector

	// History is nil when crash history is disabled or failed to open;
	// HistoryErr then holds the failure, if any.
	History    *database.CrashRepo
	HistoryErr error
}

// UsageError means the arguments were wrong; the CLI exits with status 2.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return crash.Expected(&UsageError{Err: err})
}

func usagef(format string, args ...interface{}) error {
	return usageError(fmt.Errorf(format, args...))
}

// failure is an expected error whose message is shown as is.
func failure(msg string) error {
	return crash.Expected(errors.New(msg))
}

// errHelpShown stops a command after pflag printed its usage.
var errHelpShown = crash.Expected(pflag.ErrHelp)

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return errHelpShown
		}
		return usageError(err)
	}
	return nil
}

// IsHelp reports whether err only means usage was printed.
func IsHelp(err error) bool {
	return errors.Is(err, pflag.ErrHelp)
}
