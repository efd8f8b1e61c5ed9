package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"djdeploy/internal/appconfig"
	"djdeploy/internal/i18n"
	"djdeploy/internal/notify"
	"djdeploy/internal/output"

	"github.com/spf13/pflag"
)

func Settings(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		output.Println(settingsUsage())
		return usagef("missing subcommand")
	}
	switch args[0] {
	case "show":
		return SettingsShow(env, args[1:])
	case "set-mode":
		return SettingsSetMode(env, args[1:])
	case "test-notify":
		return SettingsTestNotify(ctx, env, args[1:])
	default:
		output.Println(settingsUsage())
		return usageError(errors.New(i18n.T(i18n.MsgCliUnknownCommand, map[string]interface{}{"Command": args[0]})))
	}
}

func settingsUsage() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, i18n.T(i18n.MsgSettingsUsage))
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, i18n.T(i18n.MsgSettingsSubcommands))
	fmt.Fprintln(b, i18n.T(i18n.MsgSettingsCmdShow))
	fmt.Fprintln(b, i18n.T(i18n.MsgSettingsCmdSetMode))
	fmt.Fprintln(b, i18n.T(i18n.MsgSettingsCmdTestNotify))
	return b.String()
}

func SettingsShow(env *Env, args []string) error {
	fs := pflag.NewFlagSet("settings show", pflag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := appconfig.Load(env.ConfigPath)
	if err != nil {
		return failure(i18n.T(i18n.MsgSettingsConfigReadFailed, map[string]interface{}{"Error": err}))
	}
	channels := notify.ConfiguredChannels(cfg.Notify)
	channelText := "-"
	if len(channels) > 0 {
		channelText = strings.Join(channels, ", ")
	}

	output.Println(output.Colorize("title", i18n.T(i18n.MsgSettingsConfigTitle)))
	output.Println(i18n.T(i18n.MsgSettingsPath, map[string]interface{}{"Path": env.ConfigPath}))
	output.Println(i18n.T(i18n.MsgSettingsMode, map[string]interface{}{"Mode": cfg.Mode}))
	output.Println(i18n.T(i18n.MsgSettingsDebug, map[string]interface{}{"Debug": cfg.IsDebug()}))
	output.Println(i18n.T(i18n.MsgSettingsLanguage, map[string]interface{}{"Language": i18n.LanguageName(i18n.GetLanguage())}))
	output.Println(i18n.T(i18n.MsgSettingsIssueURL, map[string]interface{}{"URL": cfg.Crash.IssueURL}))
	output.Println(i18n.T(i18n.MsgSettingsReportDir, map[string]interface{}{"Path": reportDir(cfg)}))
	output.Println(i18n.T(i18n.MsgSettingsLogFile, map[string]interface{}{"Path": cfg.Log.File}))
	output.Println(i18n.T(i18n.MsgSettingsHistory, map[string]interface{}{"Enabled": cfg.History.Enabled, "Driver": cfg.History.Driver}))
	output.Println(i18n.T(i18n.MsgSettingsNotifyChannels, map[string]interface{}{"Channels": channelText}))
	return nil
}

// SettingsSetMode changes only the mode and keeps every other setting.
func SettingsSetMode(env *Env, args []string) error {
	fs := pflag.NewFlagSet("settings set-mode", pflag.ContinueOnError)
	mode := fs.String("mode", "", i18n.T(i18n.MsgSettingsModeFlag))
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	input := strings.ToLower(strings.TrimSpace(*mode))
	if input == "" && fs.NArg() == 1 {
		input = strings.ToLower(strings.TrimSpace(fs.Arg(0)))
	}
	if input != appconfig.ModeProduction && input != appconfig.ModeDebug {
		return usageError(errors.New(i18n.T(i18n.MsgSettingsInvalidMode)))
	}

	cfg, err := appconfig.Load(env.ConfigPath)
	if err != nil {
		return failure(i18n.T(i18n.MsgSettingsConfigReadFailed, map[string]interface{}{"Error": err}))
	}
	cfg.Mode = input
	if err := appconfig.Save(env.ConfigPath, cfg); err != nil {
		return failure(i18n.T(i18n.MsgSettingsConfigSaveFailed, map[string]interface{}{"Error": err}))
	}
	output.SetDebug(cfg.IsDebug())
	output.Println(i18n.T(i18n.MsgSettingsModeSet, map[string]interface{}{"Mode": cfg.Mode}))
	return nil
}

// SettingsTestNotify sends a test message to every configured channel, or
// only to --channel.
func SettingsTestNotify(ctx context.Context, env *Env, args []string) error {
	fs := pflag.NewFlagSet("settings test-notify", pflag.ContinueOnError)
	only := fs.String("channel", "", i18n.T(i18n.MsgSettingsChannelFlag))
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usagef("test-notify takes no arguments, got %q", fs.Args())
	}

	cfg, err := appconfig.Load(env.ConfigPath)
	if err != nil {
		return failure(i18n.T(i18n.MsgSettingsConfigReadFailed, map[string]interface{}{"Error": err}))
	}
	m := notify.NewManager(cfg.Notify)
	channels := m.ChannelNames()
	if len(channels) == 0 {
		return failure(i18n.T(i18n.MsgSettingsNotifyNone))
	}
	if *only != "" {
		channels = []string{*only}
	}

	failed := false
	for _, ch := range channels {
		if err := m.SendToChannel(ctx, ch, i18n.T(i18n.MsgSettingsTestMessage)); err != nil {
			failed = true
			output.Println(output.Colorize("danger", i18n.T(i18n.MsgSettingsNotifyFailed, map[string]interface{}{"Channel": ch, "Error": err})))
			continue
		}
		output.Println(output.Colorize("success", i18n.T(i18n.MsgSettingsNotifySent, map[string]interface{}{"Channel": ch})))
	}
	if failed {
		return failure(i18n.T(i18n.MsgSettingsNotifyTestFailed))
	}
	return nil
}
