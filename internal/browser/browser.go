// Package browser hands URLs to the desktop's default browser.
//
// Quiet mode silences only the launched handler. djdeploy's own stderr is
// never redirected, so a failure while opening the browser can still be
// reported, and nothing has to be restored afterwards.
package browser

import (
	"os"
	"os/exec"
	"runtime"
)

// Opener opens a URL somewhere the user can see it.
type Opener interface {
	Open(url string) error
}

// SystemOpener launches the platform's URL handler. With Quiet set, the
// handler's stderr and stdout go to the null device so launcher chatter
// (xdg-open, gio, Chrome sandbox warnings) does not land in the terminal.
// Only that one child process is affected.
type SystemOpener struct {
	Quiet bool
}

// Open starts the handler and returns without waiting for the browser.
func (o SystemOpener) Open(url string) error {
	cmd := command(runtime.GOOS, url, o.Quiet)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

func command(goos, url string, quiet bool) *exec.Cmd {
	var cmd *exec.Cmd
	switch goos {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if !quiet {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	// nil Stdout/Stderr make os/exec connect the child to os.DevNull.
	return cmd
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }
