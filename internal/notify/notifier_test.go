package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"djdeploy/internal/appconfig"
	"djdeploy/internal/crash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoChannelsIsANoop(t *testing.T) {
	m := NewManager(appconfig.NotifyConfig{})
	assert.False(t, m.HasChannels())
	assert.Empty(t, m.ChannelNames())
	assert.NoError(t, m.NotifyFiled(context.Background(), crash.Entry{Title: "t"}))
	assert.Error(t, m.SendToChannel(context.Background(), "slack", "x"))
}

func TestIncompleteChannelsAreSkipped(t *testing.T) {
	m := NewManager(appconfig.NotifyConfig{SlackToken: "xoxb-1", TelegramChatID: "42"})
	assert.False(t, m.HasChannels())
}

func TestWebhookReceivesSummaryWithoutBody(t *testing.T) {
	var (
		mu       sync.Mutex
		payloads []map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var p map[string]string
		_ = json.Unmarshal(data, &p)
		mu.Lock()
		payloads = append(payloads, p)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewManager(appconfig.NotifyConfig{WebhookURL: srv.URL})
	require.Equal(t, []string{"webhook"}, m.ChannelNames())

	e := crash.Entry{
		ReportID:   "8d3c",
		Command:    "cloudify",
		Title:      `ValueError:bad config during "cloudify"`,
		ReportPath: "/tmp/djdeploy-bug-report-1.md",
		Submitted:  true,
	}
	require.NoError(t, m.NotifyFiled(context.Background(), e))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, payloads, 1)
	assert.Equal(t, subject, payloads[0]["subject"])
	assert.Contains(t, payloads[0]["text"], e.Title)
	assert.Contains(t, payloads[0]["text"], "command: cloudify")
	assert.Contains(t, payloads[0]["text"], e.ReportPath)
	assert.NotContains(t, payloads[0]["text"], "Traceback")
}

func TestWebhookFailureIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewManager(appconfig.NotifyConfig{WebhookURL: srv.URL})
	assert.Error(t, m.SendToChannel(context.Background(), "webhook", "x"))
}

func TestMessageOmitsMissingPath(t *testing.T) {
	msg := Message(crash.Entry{Title: "t", Command: "new", ReportID: "r"})
	assert.Equal(t, "t\ncommand: new\nreport: r", msg)
}

func TestConfiguredChannels(t *testing.T) {
	assert.Empty(t, ConfiguredChannels(appconfig.NotifyConfig{SlackToken: "x"}))
	assert.Equal(t, []string{"telegram", "slack", "webhook"}, ConfiguredChannels(appconfig.NotifyConfig{
		TelegramToken: "t", TelegramChatID: "1", SlackToken: "s", SlackChannel: "#c", WebhookURL: "http://x",
	}))
}

func TestLazyBuildsManagerOnFirstNotification(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	l := NewLazy(appconfig.NotifyConfig{WebhookURL: srv.URL})
	assert.Nil(t, l.m)
	require.NoError(t, l.NotifyFiled(context.Background(), crash.Entry{Title: "t"}))
	require.NoError(t, l.NotifyFiled(context.Background(), crash.Entry{Title: "t"}))
	assert.NotNil(t, l.m)
	assert.Equal(t, 2, hits)
}
