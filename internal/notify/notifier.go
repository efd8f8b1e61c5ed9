// Package notify tells a team channel about crash reports users agreed to
// file.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"djdeploy/internal/appconfig"
	"djdeploy/internal/crash"
	"djdeploy/internal/i18n"
	"djdeploy/internal/logger"

	nfy "github.com/nikoksr/notify"
	nfyhttp "github.com/nikoksr/notify/service/http"
	nfyslack "github.com/nikoksr/notify/service/slack"
	nfytg "github.com/nikoksr/notify/service/telegram"
)

const subject = "djdeploy crash report filed"

// Manager wraps nikoksr/notify.Notify with one notifier for all channels
// and one per channel. It is immutable after NewManager.
type Manager struct {
	notifier         *nfy.Notify
	channelNames     []string
	channelNotifiers map[string]*nfy.Notify
}

// NewManager builds the channels configured in cfg. Channels that fail to
// initialise are logged and skipped.
func NewManager(cfg appconfig.NotifyConfig) *Manager {
	n := nfy.New()
	perChannel := make(map[string]*nfy.Notify)
	var names []string
	use := func(name string, svc nfy.Notifier) {
		n.UseServices(svc)
		pc := nfy.New()
		pc.UseServices(svc)
		perChannel[name] = pc
		names = append(names, name)
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		tgSvc, err := nfytg.New(cfg.TelegramToken)
		if err != nil {
			logger.Log.Warn().Err(err).Msg(i18n.T(i18n.MsgLogTelegramInitFailed))
		} else if id, err := strconv.ParseInt(strings.TrimSpace(cfg.TelegramChatID), 10, 64); err != nil {
			logger.Log.Warn().Str("chat_id", cfg.TelegramChatID).Msg(i18n.T(i18n.MsgLogTelegramChatIdBad))
		} else {
			tgSvc.AddReceivers(id)
			use("telegram", tgSvc)
		}
	}

	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		slackSvc := nfyslack.New(cfg.SlackToken)
		slackSvc.AddReceivers(strings.TrimSpace(cfg.SlackChannel))
		use("slack", slackSvc)
	}

	if cfg.WebhookURL != "" {
		httpSvc := nfyhttp.New()
		httpSvc.AddReceivers(&nfyhttp.Webhook{
			URL:          cfg.WebhookURL,
			Header:       http.Header{},
			ContentType:  "application/json; charset=utf-8",
			Method:       http.MethodPost,
			BuildPayload: webhookPayload,
		})
		use("webhook", httpSvc)
	}

	if len(names) > 0 {
		logger.Log.Debug().Int("channels", len(names)).Strs("names", names).Msg(i18n.T(i18n.MsgLogNotifyChannelsReady))
	}
	return &Manager{
		notifier:         n,
		channelNames:     names,
		channelNotifiers: perChannel,
	}
}

func webhookPayload(subject, message string) (payload any) {
	return map[string]string{"subject": subject, "text": message}
}

// Message is what channels receive for e. The report body is never included.
func Message(e crash.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Title)
	fmt.Fprintf(&b, "command: %s\n", e.Command)
	fmt.Fprintf(&b, "report: %s", e.ReportID)
	if e.ReportPath != "" {
		fmt.Fprintf(&b, "\nlocal copy: %s", e.ReportPath)
	}
	return b.String()
}

// ConfiguredChannels names the channels cfg enables without contacting
// any of them.
func ConfiguredChannels(cfg appconfig.NotifyConfig) []string {
	var names []string
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		names = append(names, "telegram")
	}
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		names = append(names, "slack")
	}
	if cfg.WebhookURL != "" {
		names = append(names, "webhook")
	}
	return names
}

// NotifyFiled implements crash.Notifier.
func (m *Manager) NotifyFiled(ctx context.Context, e crash.Entry) error {
	if !m.HasChannels() {
		return nil
	}
	return m.Send(ctx, Message(e))
}

// Send dispatches a message to all configured channels.
func (m *Manager) Send(ctx context.Context, text string) error {
	n := m.notifier
	if n == nil {
		return nil
	}
	if err := n.Send(ctx, subject, text); err != nil {
		logger.Log.Warn().Err(err).Msg(i18n.T(i18n.MsgLogNotifySendFailed))
		return err
	}
	return nil
}

// SendToChannel dispatches a message to a specific channel by name.
func (m *Manager) SendToChannel(ctx context.Context, channel, text string) error {
	pc := m.channelNotifiers[channel]
	if pc == nil {
		return fmt.Errorf("channel %q not configured", channel)
	}
	if err := pc.Send(ctx, subject, text); err != nil {
		logger.Log.Warn().Err(err).Str("channel", channel).Msg(i18n.T(i18n.MsgLogNotifySendFailed))
		return err
	}
	return nil
}

// HasChannels returns true if at least one channel is configured.
func (m *Manager) HasChannels() bool {
	return len(m.channelNames) > 0
}

// ChannelNames returns the names of all configured channels.
func (m *Manager) ChannelNames() []string {
	result := make([]string, len(m.channelNames))
	copy(result, m.channelNames)
	return result
}

// Lazy builds its Manager on first use. Some services (Telegram) contact
// their API when created, which should only happen once a report is filed.
type Lazy struct {
	cfg  appconfig.NotifyConfig
	once sync.Once
	m    *Manager
}

func NewLazy(cfg appconfig.NotifyConfig) *Lazy {
	return &Lazy{cfg: cfg}
}

func (l *Lazy) NotifyFiled(ctx context.Context, e crash.Entry) error {
	l.once.Do(func() { l.m = NewManager(l.cfg) })
	return l.m.NotifyFiled(ctx, e)
}
