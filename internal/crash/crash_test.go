package crash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"djdeploy/internal/i18n"
	"djdeploy/internal/netutil"
	"djdeploy/internal/setup"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(); err != nil {
		panic(err)
	}
	i18n.SetLanguage("en")
	goleak.VerifyTestMain(m)
}

// scriptedConsole answers Ask from a fixed list and records everything.
type scriptedConsole struct {
	answers []string
	asked   []string
	told    []string
}

func (c *scriptedConsole) Tell(msg string) { c.told = append(c.told, msg) }

func (c *scriptedConsole) Ask(prompt string) (string, error) {
	c.asked = append(c.asked, prompt)
	if len(c.answers) == 0 {
		return "", io.EOF
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(u string) error {
	o.urls = append(o.urls, u)
	return o.err
}

type memRecorder struct{ entries []Entry }

func (r *memRecorder) Record(_ context.Context, e Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

type memNotifier struct{ entries []Entry }

func (n *memNotifier) NotifyFiled(_ context.Context, e Entry) error {
	n.entries = append(n.entries, e)
	return nil
}

// toolRunner pretends only the tools in installed exist.
func toolRunner(installed map[string]string) setup.Runner {
	return setup.RunnerFunc(func(ctx context.Context, name string, args ...string) (string, error) {
		if v, ok := installed[name]; ok {
			return v + "\n", nil
		}
		return "", exec.ErrNotFound
	})
}

func newTestHandler(t *testing.T, r setup.Runner, opener *recordingOpener) (*Handler, *memRecorder, *memNotifier) {
	t.Helper()
	rec := &memRecorder{}
	nfy := &memNotifier{}
	h := NewHandler(Options{
		Collector: NewCollector(r, time.Second),
		Sink:      Sink{Dir: t.TempDir()},
		Submitter: Submitter{BaseURL: "https://github.com/example/project/issues/new", Opener: opener},
		Recorder:  rec,
		Notifier:  nfy,
	})
	return h, rec, nfy
}

type fakeReleases struct {
	latest   string
	outdated bool
}

func (f fakeReleases) Check(context.Context) (netutil.Release, error) {
	return netutil.Release{Current: "0.3.0", Latest: f.latest, Outdated: f.outdated}, nil
}

type ValueError struct{ msg string }

func (e *ValueError) Error() string { return e.msg }

func TestTitle(t *testing.T) {
	c := NewContext(&ValueError{"bad config"}, "deploy new", "")
	assert.Equal(t, "ValueError", c.Kind)
	assert.Equal(t, `ValueError:bad config during "deploy new"`, Title(c))
}

func TestKindOf(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "missing"))
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "PathError", kindOf(err))
	assert.Equal(t, "errorString", kindOf(errors.New("x")))
	assert.Equal(t, "PathError", kindOf(fmt.Errorf("load: %w", err)))
	assert.Equal(t, "error", kindOf(nil))
}

func TestErrorChainListsRootCauseFirst(t *testing.T) {
	root := &ValueError{"bad config"}
	err := fmt.Errorf("load settings: %w", root)
	chain := ErrorChain(err)
	lines := strings.Split(chain, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "*crash.ValueError: bad config")
	assert.Contains(t, lines[2], "load settings: bad config")
}

func TestCollectProbesFailIndependently(t *testing.T) {
	versions := map[string]string{
		"gcloud":          "451.0.1",
		"docker":          "Docker version 24.0.5, build ced0996",
		"cloud_sql_proxy": "cloud_sql_proxy version 1.33.2",
	}
	for mask := 0; mask < 8; mask++ {
		installed := map[string]string{}
		names := []string{"gcloud", "docker", "cloud_sql_proxy"}
		for i, n := range names {
			if mask&(1<<i) != 0 {
				installed[n] = versions[n]
			}
		}
		snap := NewCollector(toolRunner(installed), time.Second).Collect(context.Background())
		got := map[string]string{
			"gcloud":          snap.GcloudVersion,
			"docker":          snap.DockerVersion,
			"cloud_sql_proxy": snap.CloudSQLProxyVersion,
		}
		for _, n := range names {
			if _, ok := installed[n]; ok {
				assert.Equal(t, versions[n], got[n], "mask %d tool %s", mask, n)
			} else {
				assert.Equal(t, NotInstalled, got[n], "mask %d tool %s", mask, n)
			}
		}
		assert.NotEmpty(t, snap.RuntimeVersion)
		assert.NotEmpty(t, snap.Platform)
	}
}

func TestCollectPassesProbeArguments(t *testing.T) {
	var calls []string
	r := setup.RunnerFunc(func(ctx context.Context, name string, args ...string) (string, error) {
		calls = append(calls, name+" "+strings.Join(args, " "))
		return "1.0", nil
	})
	NewCollector(r, time.Second).Collect(context.Background())
	assert.Contains(t, calls, "gcloud info --format=value(basic.version)")
	assert.Contains(t, calls, "docker --version")
	assert.Contains(t, calls, "cloud_sql_proxy --version")
}

func TestCollectHungToolFallsBack(t *testing.T) {
	r := setup.RunnerFunc(func(ctx context.Context, name string, args ...string) (string, error) {
		if name == "docker" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "ok", nil
	})
	start := time.Now()
	snap := NewCollector(r, 20*time.Millisecond).Collect(context.Background())
	assert.Equal(t, NotInstalled, snap.DockerVersion)
	assert.Equal(t, "ok", snap.GcloudVersion)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAllToolsMissingStillRenders(t *testing.T) {
	snap := NewCollector(toolRunner(nil), time.Second).Collect(context.Background())
	assert.Equal(t, NotInstalled, snap.GcloudVersion)
	assert.Equal(t, NotInstalled, snap.DockerVersion)
	assert.Equal(t, NotInstalled, snap.CloudSQLProxyVersion)
	assert.Equal(t, 3, snap.MissingTools())

	report, err := DefaultRenderer().Render(NewContext(errors.New("boom"), "cloudify", ""), snap)
	require.NoError(t, err)
	assert.Contains(t, report.Body, "gcloud version: "+NotInstalled)
}

func TestRenderIsDeterministic(t *testing.T) {
	c := Context{Kind: "ValueError", Message: "bad config", Command: "deploy new", Traceback: "line 1\nline 2"}
	s := Snapshot{ToolVersion: "0.3.0", GcloudVersion: "451.0.1", DockerVersion: NotInstalled,
		CloudSQLProxyVersion: NotInstalled, RuntimeVersion: "go1.24.0\ngc amd64", Platform: "linux-amd64"}

	r := DefaultRenderer()
	first, err := r.Render(c, s)
	require.NoError(t, err)
	second, err := r.Render(c, s)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "go1.24.0\ngc amd64", s.RuntimeVersion)
	assert.Contains(t, first.Body, "Go runtime: go1.24.0 gc amd64")
	assert.Contains(t, first.Body, "line 1\nline 2")
	assert.Contains(t, first.Body, "`deploy new`")
}

func TestRenderAcceptsEmptyFields(t *testing.T) {
	report, err := DefaultRenderer().Render(Context{}, Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, `: during ""`, report.Title)
	assert.NotEmpty(t, report.Body)
}

func TestMalformedTemplate(t *testing.T) {
	for _, text := range []string{"{{.Command", "{{.NoSuchPlaceholder}}"} {
		_, err := ParseTemplate(text)
		assert.ErrorIs(t, err, ErrTemplate, text)

		_, err = NewRenderer(text).Render(Context{}, Snapshot{})
		assert.ErrorIs(t, err, ErrTemplate, text)
	}
}

func openFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	return len(entries)
}

func TestSinkWritesBodyWithoutLeakingFiles(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("fd accounting uses /proc")
	}
	dir := t.TempDir()
	before := openFDs(t)

	path, err := Sink{Dir: dir}.Write("report body\n")
	require.NoError(t, err)

	assert.Equal(t, before, openFDs(t))
	assert.True(t, strings.HasPrefix(filepath.Base(path), DefaultPrefix))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report body\n", string(data))
}

func TestSinkNamesAreUnique(t *testing.T) {
	dir := t.TempDir()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		path, err := Sink{Dir: dir}.Write("x")
		require.NoError(t, err)
		assert.False(t, seen[path])
		seen[path] = true
	}
}

func TestSinkFailureWrapsErrIO(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	path, err := Sink{Dir: blocker}.Write("x")
	assert.ErrorIs(t, err, ErrIO)
	assert.Empty(t, path)
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		answers []string
		want    bool
		asks    int
	}{
		{[]string{""}, false, 1},
		{[]string{"N"}, false, 1},
		{[]string{"n"}, false, 1},
		{[]string{"y"}, true, 1},
		{[]string{"Y"}, true, 1},
		{[]string{"  y  "}, true, 1},
		{[]string{"maybe", "y"}, true, 2},
		{[]string{"yes", "no", "n"}, false, 3},
		{nil, false, 1},
	}
	for _, tc := range cases {
		c := &scriptedConsole{answers: tc.answers}
		got, err := Confirm(c)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "answers %q", tc.answers)
		assert.Len(t, c.asked, tc.asks, "answers %q", tc.answers)
		assert.Equal(t, "Would you like to file a bug? [y/N]: ", c.asked[0])
	}
}

func TestIssueURLEncodesParameters(t *testing.T) {
	s := Submitter{BaseURL: "https://github.com/example/project/issues/new"}
	title := `ValueError:bad config during "deploy new"`
	body := "## Traceback\n\n& = ? #"

	u, err := url.Parse(s.IssueURL(title, body))
	require.NoError(t, err)
	assert.Equal(t, "/example/project/issues/new", u.Path)
	assert.Equal(t, title, u.Query().Get("title"))
	assert.Equal(t, body, u.Query().Get("body"))

	s.BaseURL = "https://example.com/new?labels=crash"
	u, err = url.Parse(s.IssueURL("t", "b"))
	require.NoError(t, err)
	assert.Equal(t, "crash", u.Query().Get("labels"))
	assert.Equal(t, "t", u.Query().Get("title"))
}

func TestSubmitSwallowsOpenerErrors(t *testing.T) {
	o := &recordingOpener{err: errors.New("no display")}
	u := Submitter{BaseURL: "https://example.com/new", Opener: o}.Submit("t", "b")
	assert.Equal(t, []string{u}, o.urls)
}

func TestHandleDeclinedNeverSubmits(t *testing.T) {
	snapshots := []map[string]string{
		nil,
		{"gcloud": "451.0.1"},
		{"gcloud": "451.0.1", "docker": "Docker version 24", "cloud_sql_proxy": "1.33"},
	}
	for _, installed := range snapshots {
		for _, answers := range [][]string{{""}, {"n"}, {"N"}, {"later", "n"}, nil} {
			opener := &recordingOpener{}
			h, rec, nfy := newTestHandler(t, toolRunner(installed), opener)
			console := &scriptedConsole{answers: answers}

			out, err := h.Handle(context.Background(), console, NewContext(errors.New("boom"), "cloudify", ""))
			require.NoError(t, err)
			assert.False(t, out.Submitted)
			assert.Empty(t, opener.urls)
			assert.Empty(t, nfy.entries)
			require.Len(t, rec.entries, 1)
			assert.False(t, rec.entries[0].Submitted)
		}
	}
}

func TestHandleAcceptedSubmitsOnce(t *testing.T) {
	opener := &recordingOpener{}
	h, rec, nfy := newTestHandler(t, toolRunner(nil), opener)
	console := &scriptedConsole{answers: []string{"y"}}

	out, err := h.Handle(context.Background(), console, NewContext(&ValueError{"bad config"}, "deploy new", ""))
	require.NoError(t, err)
	assert.True(t, out.Submitted)
	require.Len(t, opener.urls, 1)
	assert.Equal(t, out.URL, opener.urls[0])

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	assert.Equal(t, `ValueError:bad config during "deploy new"`, u.Query().Get("title"))

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, out.Report.Body, string(data))

	require.NotEmpty(t, console.told)
	assert.Contains(t, console.told[0], `Your "deploy new" failed due to an internal error.`)
	assert.Contains(t, console.told[0], out.Path)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, out.ReportID, rec.entries[0].ReportID)
	assert.True(t, rec.entries[0].Submitted)
	require.Len(t, nfy.entries, 1)
}

func TestHandleTemplateErrorStopsFlow(t *testing.T) {
	opener := &recordingOpener{}
	h := NewHandler(Options{
		Collector: NewCollector(toolRunner(nil), time.Second),
		Renderer:  NewRenderer("{{.Missing}}"),
		Sink:      Sink{Dir: t.TempDir()},
		Submitter: Submitter{BaseURL: "https://example.com/new", Opener: opener},
	})
	console := &scriptedConsole{answers: []string{"y"}}

	_, err := h.Handle(context.Background(), console, NewContext(errors.New("boom"), "update", ""))
	assert.ErrorIs(t, err, ErrTemplate)
	assert.Empty(t, console.asked)
	assert.Empty(t, opener.urls)
	require.Len(t, console.told, 1)
	assert.Contains(t, console.told[0], `"update"`)
}

func TestHandleSaveFailureStillInformsAndAsks(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	opener := &recordingOpener{}
	h := NewHandler(Options{
		Collector: NewCollector(toolRunner(nil), time.Second),
		Sink:      Sink{Dir: blocker},
		Submitter: Submitter{BaseURL: "https://example.com/new", Opener: opener},
	})
	console := &scriptedConsole{answers: []string{"y"}}

	out, err := h.Handle(context.Background(), console, NewContext(errors.New("boom"), "new", ""))
	assert.ErrorIs(t, err, ErrIO)
	assert.Empty(t, out.Path)
	assert.Len(t, console.asked, 1)
	assert.Len(t, opener.urls, 1)
	assert.Contains(t, console.told[0], "could not be saved locally")
}

func TestHandleWarnsWhenOutdated(t *testing.T) {
	h := NewHandler(Options{
		Collector: &Collector{
			Runner:   toolRunner(nil),
			Timeout:  time.Second,
			Gcloud:   GcloudProbe,
			Releases: fakeReleases{latest: "9.9.9", outdated: true},
		},
		Sink: Sink{Dir: t.TempDir()},
	})
	console := &scriptedConsole{}
	out, err := h.Handle(context.Background(), console, NewContext(errors.New("boom"), "new", ""))
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", out.Snapshot.LatestVersion)
	assert.Equal(t, NotInstalled, out.Snapshot.DockerVersion)
	assert.Contains(t, strings.Join(console.told, "\n"), "9.9.9")
}

// eventLog records console and release-check calls in the order they happen.
type eventLog struct{ events []string }

type loggingConsole struct{ log *eventLog }

func (c loggingConsole) Tell(string) { c.log.events = append(c.log.events, "tell") }

func (c loggingConsole) Ask(string) (string, error) {
	c.log.events = append(c.log.events, "ask")
	return "n", nil
}

type loggingReleases struct{ log *eventLog }

func (r loggingReleases) Check(context.Context) (netutil.Release, error) {
	r.log.events = append(r.log.events, "release-check")
	return netutil.Release{Current: "0.3.0", Latest: "0.4.0", Outdated: true}, nil
}

func TestHandleExplainsBeforeReleaseCheck(t *testing.T) {
	log := &eventLog{}
	h := NewHandler(Options{
		Collector: &Collector{
			Runner:   toolRunner(nil),
			Timeout:  time.Second,
			Releases: loggingReleases{log},
		},
		Sink: Sink{Dir: t.TempDir()},
	})

	out, err := h.Handle(context.Background(), loggingConsole{log}, NewContext(errors.New("boom"), "new", ""))
	require.NoError(t, err)
	assert.Equal(t, "0.4.0", out.Snapshot.LatestVersion)
	require.NotEmpty(t, log.events)
	assert.Equal(t, "tell", log.events[0])
	check := -1
	for i, e := range log.events {
		if e == "release-check" {
			check = i
		}
	}
	require.Positive(t, check)
	assert.Equal(t, "ask", log.events[len(log.events)-1])
}

func TestCollectLocalSkipsReleases(t *testing.T) {
	log := &eventLog{}
	c := &Collector{Runner: toolRunner(nil), Timeout: time.Second, Releases: loggingReleases{log}}
	snap := c.CollectLocal(context.Background())
	assert.Empty(t, log.events)
	assert.Empty(t, snap.LatestVersion)

	c.AddLatest(context.Background(), &snap)
	assert.Equal(t, []string{"release-check"}, log.events)
	assert.True(t, snap.Outdated)
}

func TestGuardHandlesPanics(t *testing.T) {
	opener := &recordingOpener{}
	h, rec, _ := newTestHandler(t, toolRunner(nil), opener)
	console := &scriptedConsole{answers: []string{"n"}}

	err := h.Guard(context.Background(), console, "cloudify", func() error {
		panic("settings.py not found")
	})

	var crashErr *Error
	require.ErrorAs(t, err, &crashErr)
	assert.Equal(t, "panic", crashErr.Context.Kind)
	assert.Equal(t, "settings.py not found", crashErr.Context.Message)
	assert.Contains(t, crashErr.Context.Traceback, "TestGuardHandlesPanics")
	assert.Len(t, rec.entries, 1)
	assert.Empty(t, opener.urls)
}

func TestGuardHandlesUnexpectedErrors(t *testing.T) {
	h, rec, _ := newTestHandler(t, toolRunner(nil), &recordingOpener{})
	console := &scriptedConsole{}
	cause := &ValueError{"bad config"}

	err := h.Guard(context.Background(), console, "new", func() error { return cause })

	var crashErr *Error
	require.ErrorAs(t, err, &crashErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "ValueError", crashErr.Context.Kind)
	assert.Contains(t, crashErr.Context.Traceback, "bad config")
	assert.Len(t, rec.entries, 1)
}

func TestGuardPassesExpectedErrorsThrough(t *testing.T) {
	h, rec, _ := newTestHandler(t, toolRunner(nil), &recordingOpener{})
	console := &scriptedConsole{}
	userErr := Expected(errors.New("no Django project in ."))

	err := h.Guard(context.Background(), console, "cloudify", func() error { return userErr })
	assert.Equal(t, userErr, err)
	assert.True(t, IsExpected(err))
	assert.Empty(t, console.told)
	assert.Empty(t, rec.entries)

	assert.NoError(t, h.Guard(context.Background(), console, "cloudify", func() error { return nil }))
	err = h.Guard(context.Background(), console, "cloudify", func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, console.told)
}

func TestRefile(t *testing.T) {
	opener := &recordingOpener{}
	h, _, _ := newTestHandler(t, toolRunner(nil), opener)

	ok, _, err := h.Refile(&scriptedConsole{answers: []string{""}}, "t", "b")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, opener.urls)

	ok, u, err := h.Refile(&scriptedConsole{answers: []string{"y"}}, "t", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{u}, opener.urls)
}
