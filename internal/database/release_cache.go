package database

import (
	"context"
	"errors"
	"strconv"
	"time"

	"djdeploy/internal/logger"
	"djdeploy/internal/netutil"
)

// ErrNotCached is returned by the Offline view when no fresh answer is stored.
var ErrNotCached = errors.New("no cached release check")

const (
	keyReleaseCurrent   = "release.current"
	keyReleaseLatest    = "release.latest"
	keyReleaseOutdated  = "release.outdated"
	keyReleaseCheckedAt = "release.checked_at"
)

// CachedReleases remembers the last successful release check so a crash
// does not wait on GitHub more than once per TTL.
type CachedReleases struct {
	Settings *SettingRepo
	Next     netutil.ReleaseChecker
	// Current invalidates the cache after an upgrade.
	Current string
	TTL      time.Duration
	Now      func() time.Time
}

func NewCachedReleases(settings *SettingRepo, next netutil.ReleaseChecker, current string) *CachedReleases {
	return &CachedReleases{Settings: settings, Next: next, Current: current, TTL: 24 * time.Hour, Now: time.Now}
}

func (c *CachedReleases) Check(ctx context.Context) (netutil.Release, error) {
	if rel, ok := c.cached(); ok {
		return rel, nil
	}
	rel, err := c.Next.Check(ctx)
	if err != nil {
		return rel, err
	}
	err = c.Settings.SetBatch(map[string]string{
		keyReleaseCurrent:   rel.Current,
		keyReleaseLatest:    rel.Latest,
		keyReleaseOutdated:  strconv.FormatBool(rel.Outdated),
		keyReleaseCheckedAt: c.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Log.Debug().Err(err).Msg("caching release check failed")
	}
	return rel, nil
}

func (c *CachedReleases) cached() (netutil.Release, bool) {
	get := func(key string) string {
		v, err := c.Settings.Get(key)
		if err != nil {
			return ""
		}
		return v
	}
	checked, err := time.Parse(time.RFC3339, get(keyReleaseCheckedAt))
	if err != nil || c.Now().Sub(checked) > c.TTL {
		return netutil.Release{}, false
	}
	current := get(keyReleaseCurrent)
	if c.Current != "" && c.Current != current {
		return netutil.Release{}, false
	}
	latest := get(keyReleaseLatest)
	if latest == "" {
		return netutil.Release{}, false
	}
	outdated, _ := strconv.ParseBool(get(keyReleaseOutdated))
	return netutil.Release{Current: current, Latest: latest, Outdated: outdated}, true
}

// Offline returns a checker that answers from the cache only and never calls
// Next.
func (c *CachedReleases) Offline() netutil.ReleaseChecker {
	return offlineReleases{c}
}

type offlineReleases struct{ c *CachedReleases }

func (o offlineReleases) Check(context.Context) (netutil.Release, error) {
	if rel, ok := o.c.cached(); ok {
		return rel, nil
	}
	return netutil.Release{}, ErrNotCached
}
