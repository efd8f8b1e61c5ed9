// Package diagnostics turns an environment snapshot into a list of problems
// that would get in the way of deploying or of reporting a crash.
package diagnostics

import (
	"os"

	"djdeploy/internal/crash"
	"djdeploy/internal/i18n"
	"djdeploy/internal/netutil"
	"djdeploy/internal/version"
)

const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

type Issue struct {
	Level      string `json:"level"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type Report struct {
	Issues    []Issue `json:"issues"`
	HasErrors bool    `json:"hasErrors"`
}

func (r *Report) add(level, message, suggestion string) {
	r.Issues = append(r.Issues, Issue{Level: level, Message: message, Suggestion: suggestion})
	if level == LevelError {
		r.HasErrors = true
	}
}

// DirInfo describes a directory djdeploy writes to.
type DirInfo struct {
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Owner    string `json:"owner,omitempty"`
	Writable bool   `json:"writable"`
}

// InspectDir checks path by creating and removing a scratch file in it.
// owner names the owner of the directory; it may be nil. A path that exists
// but is not a directory is reported as existing and not writable.
func InspectDir(path string, owner func(os.FileInfo) string) DirInfo {
	info := DirInfo{Path: path}
	fi, err := os.Stat(path)
	if err != nil {
		return info
	}
	info.Exists = true
	if owner != nil {
		info.Owner = owner(fi)
	}
	if !fi.IsDir() {
		return info
	}
	if f, err := os.CreateTemp(path, ".djdeploy-write-*"); err == nil {
		info.Writable = true
		f.Close()
		os.Remove(f.Name())
	}
	return info
}

type Input struct {
	Snapshot   crash.Snapshot
	StateDir   DirInfo
	ReportDir  DirInfo
	ConfigPath string
	HistoryErr error
}

var installURLs = map[string]string{
	"gcloud":          "https://cloud.google.com/sdk/docs/install",
	"docker":          "https://docs.docker.com/get-docker/",
	"cloud_sql_proxy": "https://cloud.google.com/sql/docs/postgres/sql-proxy",
}

// Run never touches the system; everything it looks at is in in.
func Run(in Input) Report {
	r := Report{Issues: []Issue{}}
	s := in.Snapshot

	tools := []struct{ name, version string }{
		{"gcloud", s.GcloudVersion},
		{"docker", s.DockerVersion},
		{"cloud_sql_proxy", s.CloudSQLProxyVersion},
	}
	for _, tool := range tools {
		if tool.version != crash.NotInstalled {
			continue
		}
		r.add(LevelWarning,
			i18n.T(i18n.MsgDoctorToolMissing, map[string]interface{}{"Tool": tool.name}),
			i18n.T(i18n.MsgDoctorToolMissingSuggest, map[string]interface{}{"URL": installURLs[tool.name]}))
	}

	if s.Outdated {
		r.add(LevelWarning,
			i18n.T(i18n.MsgDoctorOutdated, map[string]interface{}{"Latest": s.LatestVersion, "Current": s.ToolVersion}),
			i18n.T(i18n.MsgDoctorOutdatedSuggest, map[string]interface{}{"URL": netutil.ReleasesURL(version.RepoOwner, version.RepoName)}))
	}

	// Missing directories are created on first use.
	if in.StateDir.Exists && !in.StateDir.Writable {
		r.add(LevelWarning,
			i18n.T(i18n.MsgDoctorStateNoWrite, map[string]interface{}{"Path": in.StateDir.Path}),
			i18n.T(i18n.MsgDoctorStateDirSuggest, map[string]interface{}{"Path": in.StateDir.Path}))
	}
	if in.ReportDir.Exists && !in.ReportDir.Writable {
		r.add(LevelError,
			i18n.T(i18n.MsgDoctorReportDirNoWrite, map[string]interface{}{"Path": in.ReportDir.Path}),
			i18n.T(i18n.MsgDoctorReportDirSuggest, map[string]interface{}{"Config": in.ConfigPath}))
	}
	if in.HistoryErr != nil {
		r.add(LevelWarning,
			i18n.T(i18n.MsgDoctorHistoryFailed, map[string]interface{}{"Error": in.HistoryErr}),
			i18n.T(i18n.MsgDoctorHistorySuggest, map[string]interface{}{"Config": in.ConfigPath}))
	}
	return r
}
