package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"djdeploy/internal/appconfig"
	"djdeploy/internal/browser"
	"djdeploy/internal/commands"
	"djdeploy/internal/crash"
	"djdeploy/internal/database"
	"djdeploy/internal/i18n"
	"djdeploy/internal/logger"
	"djdeploy/internal/netutil"
	"djdeploy/internal/notify"
	"djdeploy/internal/output"
	"djdeploy/internal/prompt"
	"djdeploy/internal/setup"
	"djdeploy/internal/version"

	"github.com/spf13/pflag"
)

type commandFunc func(ctx context.Context, env *commands.Env, args []string) error

var commandTable = map[string]commandFunc{
	"doctor":   commands.Doctor,
	"reports":  commands.Reports,
	"settings": commands.Settings,
	"crash-test": func(_ context.Context, env *commands.Env, args []string) error {
		return commands.CrashTest(env, args)
	},
	"new":      deploy("new"),
	"cloudify": deploy("cloudify"),
	"update":   deploy("update"),
}

func deploy(name string) commandFunc {
	return func(context.Context, *commands.Env, []string) error {
		return commands.Deploy(name)
	}
}

func Run(args []string) int {
	if err := i18n.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	fs := pflag.NewFlagSet("djdeploy", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {}
	debug := fs.Bool("debug", false, "")
	lang := fs.String("lang", "", "")
	help := fs.BoolP("help", "h", false, "")
	showVersion := fs.BoolP("version", "v", false, "")
	if err := fs.Parse(args[1:]); err != nil {
		i18n.Resolve(*lang)
		output.Println(i18n.T(i18n.MsgCliError, map[string]interface{}{"Error": err}))
		output.Println(usage())
		return 2
	}
	i18n.Resolve(*lang)

	cfgPath := appconfig.ConfigPath()
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		output.Println(i18n.T(i18n.MsgCliConfigLoadFailed, map[string]interface{}{"Error": err}))
		cfg = appconfig.Default().Normalize()
	}
	debugMode := *debug || cfg.IsDebug()
	output.SetDebug(debugMode)
	logger.Init(cfg.Log, debugMode)
	defer logger.Close()
	output.Debugf(i18n.T(i18n.MsgCliConfigLoaded, map[string]interface{}{"Path": cfgPath, "Mode": cfg.Mode}) + "\n")

	rest := fs.Args()
	switch {
	case *help:
		output.Println(usage())
		return 0
	case *showVersion:
		output.Println(i18n.T(i18n.MsgCliVersion, map[string]interface{}{"Version": version.String()}))
		return 0
	case len(rest) == 0:
		output.Println(usage())
		return 2
	}

	switch rest[0] {
	case "help":
		output.Println(usage())
		return 0
	case "version":
		output.Println(i18n.T(i18n.MsgCliVersion, map[string]interface{}{"Version": version.String()}))
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, closeEnv := NewEnv(cfg, cfgPath, prompt.NewStdConsole(), debugMode)
	defer closeEnv()
	logger.Log.Debug().Str("command", rest[0]).Bool("interactive", prompt.IsInteractive()).Msg("running command")
	return Execute(ctx, env, rest[0], rest[1:])
}

// NewEnv wires the crash handler and its optional history and notification
// backends from cfg. The returned func releases what was opened.
func NewEnv(cfg appconfig.Config, cfgPath string, console prompt.Console, debug bool) (*commands.Env, func()) {
	env := &commands.Env{
		Config:     cfg,
		ConfigPath: cfgPath,
		Console:    console,
	}

	// doctor may query GitHub; the crash flow only reads what doctor cached.
	var releases, crashReleases netutil.ReleaseChecker
	if cfg.Crash.CheckLatest {
		releases = netutil.NewGitHubReleases(version.RepoOwner, version.RepoName, version.Version)
	}

	opts := crash.Options{
		Sink: crash.Sink{Dir: cfg.Crash.ReportDir},
		Submitter: crash.Submitter{
			BaseURL: cfg.Crash.IssueURL,
			Opener:  browser.SystemOpener{Quiet: true},
		},
	}

	closeEnv := func() {}
	if cfg.History.Enabled {
		if err := database.Init(cfg.History, debug); err != nil {
			env.HistoryErr = err
			logger.Log.Warn().Err(err).Msg(i18n.T(i18n.MsgLogHistoryWriteFailed))
		} else {
			env.History = database.NewCrashRepo()
			opts.Recorder = env.History
			if releases != nil {
				cache := database.NewCachedReleases(database.NewSettingRepo(), releases, version.Version)
				releases = cache
				crashReleases = cache.Offline()
			}
			closeEnv = database.Close
		}
	}
	if len(notify.ConfiguredChannels(cfg.Notify)) > 0 {
		opts.Notifier = notify.NewLazy(cfg.Notify)
	}

	env.Collector = crash.NewCollector(setup.ExecRunner{}, cfg.ToolTimeout())
	env.Collector.Releases = releases
	crashCollector := *env.Collector
	crashCollector.Releases = crashReleases
	opts.Collector = &crashCollector
	env.Handler = crash.NewHandler(opts)
	return env, closeEnv
}

// Execute runs one command inside the crash guard and maps the result to
// an exit code.
func Execute(ctx context.Context, env *commands.Env, name string, args []string) int {
	cmd, ok := commandTable[name]
	if !ok {
		output.Println(i18n.T(i18n.MsgCliUnknownCommand, map[string]interface{}{"Command": name}) + "\n")
		output.Println(usage())
		return 2
	}
	err := env.Handler.Guard(ctx, env.Console, "djdeploy "+name, func() error {
		return cmd(ctx, env, args)
	})
	return exitCode(err)
}

func exitCode(err error) int {
	var crashErr *crash.Error
	var usageErr *commands.UsageError
	switch {
	case err == nil, commands.IsHelp(err):
		return 0
	case errors.As(err, &crashErr):
		return 1
	case errors.Is(err, context.Canceled):
		return 130
	case errors.As(err, &usageErr):
		output.Println(i18n.T(i18n.MsgCliError, map[string]interface{}{"Error": err}))
		return 2
	default:
		output.Println(i18n.T(i18n.MsgCliError, map[string]interface{}{"Error": err}))
		return 1
	}
}

func usage() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, i18n.T(i18n.MsgCliAppName))
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, i18n.T(i18n.MsgCliUsage))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCommandUsage))
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, i18n.T(i18n.MsgCliOptions))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliOptDebug))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliOptLang))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliOptHelp))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliOptVersion))
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCommands))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCmdNew))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCmdCloudify))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCmdUpdate))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCmdDoctor))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCmdReports))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliCmdSettings))
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, i18n.T(i18n.MsgCliExamples))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliExampleDoctor))
	fmt.Fprintln(b, i18n.T(i18n.MsgCliExampleReports))
	return b.String()
}
