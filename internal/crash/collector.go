package crash

import (
	"context"
	"strings"
	"time"

	"djdeploy/internal/i18n"
	"djdeploy/internal/logger"
	"djdeploy/internal/netutil"
	"djdeploy/internal/setup"
	"djdeploy/internal/version"
)

// NotInstalled replaces the version of a helper tool that could not be
// queried.
const NotInstalled = "Not installed or not on PATH"

// UnknownLatest is used when the latest release could not be determined.
const UnknownLatest = "unknown"

// Snapshot is the environment a crash happened in.
type Snapshot struct {
	ToolVersion          string `json:"toolVersion"`
	GcloudVersion        string `json:"gcloudVersion"`
	DockerVersion        string `json:"dockerVersion"`
	CloudSQLProxyVersion string `json:"cloudSqlProxyVersion"`
	RuntimeVersion       string `json:"runtimeVersion"`
	Platform             string `json:"platform"`

	LatestVersion string `json:"latestVersion,omitempty"`
	Outdated      bool   `json:"outdated,omitempty"`
}

// MissingTools counts helper tools that reported NotInstalled.
func (s Snapshot) MissingTools() int {
	n := 0
	for _, v := range []string{s.GcloudVersion, s.DockerVersion, s.CloudSQLProxyVersion} {
		if v == NotInstalled {
			n++
		}
	}
	return n
}

// Probe is one helper-tool version query.
type Probe struct {
	Name string
	Args []string
}

var (
	GcloudProbe        = Probe{Name: "gcloud", Args: []string{"info", "--format=value(basic.version)"}}
	DockerProbe        = Probe{Name: "docker", Args: []string{"--version"}}
	CloudSQLProxyProbe = Probe{Name: "cloud_sql_proxy", Args: []string{"--version"}}
)

// Collector builds Snapshots. The zero value is not usable; use NewCollector.
type Collector struct {
	Runner  setup.Runner
	Timeout time.Duration
	// Releases is optional; when nil the latest release is not looked up.
	Releases netutil.ReleaseChecker

	Gcloud, Docker, CloudSQLProxy Probe
}

func NewCollector(r setup.Runner, timeout time.Duration) *Collector {
	if r == nil {
		r = setup.ExecRunner{}
	}
	return &Collector{
		Runner:        r,
		Timeout:       timeout,
		Gcloud:        GcloudProbe,
		Docker:        DockerProbe,
		CloudSQLProxy: CloudSQLProxyProbe,
	}
}

// Collect never fails: every query that does not produce a version
// degrades to its sentinel.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := c.CollectLocal(ctx)
	c.AddLatest(ctx, &snap)
	return snap
}

// CollectLocal is Collect without the latest-release lookup. It only runs
// local processes.
func (c *Collector) CollectLocal(ctx context.Context) Snapshot {
	return Snapshot{
		ToolVersion:          version.Version,
		GcloudVersion:        c.probe(ctx, c.Gcloud, NotInstalled),
		DockerVersion:        c.probe(ctx, c.Docker, NotInstalled),
		CloudSQLProxyVersion: c.probe(ctx, c.CloudSQLProxy, NotInstalled),
		RuntimeVersion:       version.Runtime(),
		Platform:             c.platform(ctx),
	}
}

// AddLatest fills in the latest release when Releases is set.
func (c *Collector) AddLatest(ctx context.Context, snap *Snapshot) {
	if c.Releases == nil {
		return
	}
	snap.LatestVersion = UnknownLatest
	rel, err := c.Releases.Check(ctx)
	if err != nil {
		logger.Log.Debug().Err(err).Msg(i18n.T(i18n.MsgLogLatestCheckFailed))
		return
	}
	if rel.Latest != "" {
		snap.LatestVersion = rel.Latest
		snap.Outdated = rel.Outdated
	}
}

func (c *Collector) probe(ctx context.Context, p Probe, fallback string) string {
	if p.Name == "" {
		return fallback
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	out, err := setup.ToolVersion(ctx, c.Runner, p.Name, p.Args...)
	if err != nil {
		logger.Log.Debug().Err(err).Str("tool", p.Name).Str("kind", "ToolUnavailable").Msg(i18n.T(i18n.MsgLogToolUnavailable))
		return fallback
	}
	return out
}

func (c *Collector) platform(ctx context.Context) string {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return strings.TrimSpace(setup.DetectPlatform(ctx, c.Runner).String())
}
