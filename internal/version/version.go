package version

import (
	"fmt"
	"runtime"
)

// Version is the application version. Override via ldflags:
//
//	go build -ldflags "-X djdeploy/internal/version.Version=1.2.3 -X djdeploy/internal/version.Build=153"
var Version = "0.3.0"

// Build is the build number, injected at compile time.
var Build = "dev"

// RepoOwner and RepoName identify the GitHub project that receives crash
// reports and publishes releases.
const (
	RepoOwner = "GoogleCloudPlatform"
	RepoName  = "django-cloud-deploy"
)

// String returns the version with build metadata, e.g. "0.3.0 (dev)".
func String() string {
	return fmt.Sprintf("%s (%s)", Version, Build)
}

// Runtime describes the Go runtime the binary was built with.
func Runtime() string {
	return fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.Compiler, runtime.GOARCH)
}
