package netutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcnksm/go-latest"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCheckReportsOutdated(t *testing.T) {
	g := NewGitHubReleases("GoogleCloudPlatform", "django-cloud-deploy", "0.2.0")
	g.check = func(src latest.Source, target string) (*latest.CheckResponse, error) {
		tag, ok := src.(*latest.GithubTag)
		require.True(t, ok)
		assert.Equal(t, "django-cloud-deploy", tag.Repository)
		assert.Equal(t, "0.2.0", target)
		return &latest.CheckResponse{Current: "0.3.1", Outdated: true}, nil
	}

	rel, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Release{Current: "0.2.0", Latest: "0.3.1", Outdated: true}, rel)
}

func TestCheckWrapsErrors(t *testing.T) {
	g := NewGitHubReleases("o", "r", "1.0.0")
	g.check = func(latest.Source, string) (*latest.CheckResponse, error) {
		return nil, errors.New("rate limited")
	}
	rel, err := g.Check(context.Background())
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, "1.0.0", rel.Current)
	assert.False(t, rel.Outdated)
}

func TestCheckTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	g := NewGitHubReleases("o", "r", "1.0.0")
	g.Timeout = 10 * time.Millisecond
	g.check = func(latest.Source, string) (*latest.CheckResponse, error) {
		<-release
		return nil, errors.New("too late")
	}
	_, err := g.Check(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReleasesURL(t *testing.T) {
	assert.Equal(t, "https://github.com/o/r/releases", ReleasesURL("o", "r"))
}
