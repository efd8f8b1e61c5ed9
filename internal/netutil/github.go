package netutil

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tcnksm/go-latest"
)

// Release is the outcome of comparing the running version with the newest
// tag published on GitHub.
type Release struct {
	Current  string `json:"current"`
	Latest   string `json:"latest"`
	Outdated bool   `json:"outdated"`
}

// ReleaseChecker looks up the newest published release.
type ReleaseChecker interface {
	Check(ctx context.Context) (Release, error)
}

// GitHubReleases checks tags of a GitHub repository with go-latest.
type GitHubReleases struct {
	Owner      string
	Repository string
	Current    string
	Timeout    time.Duration

	check func(latest.Source, string) (*latest.CheckResponse, error)
}

func NewGitHubReleases(owner, repo, current string) *GitHubReleases {
	return &GitHubReleases{
		Owner:      owner,
		Repository: repo,
		Current:    current,
		Timeout:    3 * time.Second,
		check:      latest.Check,
	}
}

// Check gives up when ctx is done or Timeout elapses, whichever is first.
func (g *GitHubReleases) Check(ctx context.Context) (Release, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	type result struct {
		res *latest.CheckResponse
		err error
	}
	ch := make(chan result, 1)
	go func() {
		res, err := g.check(&latest.GithubTag{Owner: g.Owner, Repository: g.Repository}, g.Current)
		ch <- result{res, err}
	}()

	select {
	case <-ctx.Done():
		return Release{Current: g.Current}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return Release{Current: g.Current}, fmt.Errorf("check %s/%s: %w", g.Owner, g.Repository, r.err)
		}
		return Release{Current: g.Current, Latest: r.res.Current, Outdated: r.res.Outdated}, nil
	}
}

// ReleasesURL is the page users download new versions from.
func ReleasesURL(owner, repo string) string {
	return (&url.URL{Scheme: "https", Host: "github.com", Path: "/" + owner + "/" + repo + "/releases"}).String()
}
