// Package setup inspects the machine djdeploy runs on: external tool
// versions and a description of the host platform.
package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ErrEmptyOutput is returned when a command succeeds but prints nothing.
var ErrEmptyOutput = errors.New("command produced no output")

// Runner runs an external command non-interactively and returns its stdout.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// DefaultWaitDelay is how long ExecRunner keeps reading output after ctx is
// done. Wrapper scripts such as gcloud leave children holding stdout open
// when the script itself is killed.
const DefaultWaitDelay = 500 * time.Millisecond

// ExecRunner runs commands with os/exec. Stdin is not connected.
type ExecRunner struct {
	// WaitDelay overrides DefaultWaitDelay when positive.
	WaitDelay time.Duration
}

func (r ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = DefaultWaitDelay
	if r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) (string, error)

func (f RunnerFunc) Output(ctx context.Context, name string, args ...string) (string, error) {
	return f(ctx, name, args...)
}

// ToolVersion runs `name args...` and returns its output with trailing
// whitespace removed. Any failure, including a timeout from ctx, is returned
// as an error for the caller to degrade.
func ToolVersion(ctx context.Context, r Runner, name string, args ...string) (string, error) {
	out, err := r.Output(ctx, name, args...)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	out = strings.TrimRight(out, " \t\r\n")
	if out == "" {
		return "", fmt.Errorf("%s: %w", name, ErrEmptyOutput)
	}
	return out, nil
}

// Platform describes the host.
type Platform struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Distro        string `json:"distro,omitempty"`
	DistroVersion string `json:"distroVersion,omitempty"`
	Kernel        string `json:"kernel,omitempty"`
	IsWSL         bool   `json:"isWsl"`
	IsDocker      bool   `json:"isDocker"`
}

// DetectPlatform gathers what it can; fields that cannot be determined are
// left empty, OS and Arch are always set.
func DetectPlatform(ctx context.Context, r Runner) Platform {
	p := Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	if runtime.GOOS == "linux" {
		p.Distro, p.DistroVersion = detectDistro()
		p.IsWSL = detectWSL()
	}
	p.IsDocker = detectDocker()
	p.Kernel = detectKernel(ctx, r)
	return p
}

// String renders the platform on one line, e.g.
// "linux-amd64-6.1.0 (ubuntu 22.04, docker)".
func (p Platform) String() string {
	s := p.OS + "-" + p.Arch
	if p.Kernel != "" {
		s += "-" + p.Kernel
	}
	var extra []string
	if p.Distro != "" {
		extra = append(extra, strings.TrimSpace(p.Distro+" "+p.DistroVersion))
	}
	if p.IsWSL {
		extra = append(extra, "wsl")
	}
	if p.IsDocker {
		extra = append(extra, "docker")
	}
	if len(extra) > 0 {
		s += " (" + strings.Join(extra, ", ") + ")"
	}
	return s
}

func detectWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

func detectDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err == nil && strings.Contains(string(data), "docker") {
		return true
	}
	return false
}

func detectDistro() (name, version string) {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "", ""
	}
	return parseOSRelease(string(data))
}

func parseOSRelease(data string) (name, version string) {
	for _, line := range strings.Split(data, "\n") {
		if strings.HasPrefix(line, "ID=") {
			name = strings.Trim(strings.TrimPrefix(line, "ID="), "\"")
		}
		if strings.HasPrefix(line, "VERSION_ID=") {
			version = strings.Trim(strings.TrimPrefix(line, "VERSION_ID="), "\"")
		}
	}
	return name, version
}

func detectKernel(ctx context.Context, r Runner) string {
	var out string
	var err error
	if runtime.GOOS == "windows" {
		out, err = ToolVersion(ctx, r, "cmd", "/c", "ver")
	} else {
		out, err = ToolVersion(ctx, r, "uname", "-r")
	}
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
