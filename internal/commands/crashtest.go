package commands

import (
	"fmt"
	"os"

	"djdeploy/internal/i18n"
	"djdeploy/internal/logger"

	"github.com/spf13/pflag"
)

// CrashTest fails on purpose so the crash report flow can be tried without
// a real bug. It panics unless --error is given.
func CrashTest(env *Env, args []string) error {
	fs := pflag.NewFlagSet("crash-test", pflag.ContinueOnError)
	asError := fs.Bool("error", false, "Return an error instead of panicking")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	logger.Log.Warn().Bool("error", *asError).Msg(i18n.T(i18n.MsgCliCrashTestTriggered))
	if *asError {
		_, err := os.Stat(os.DevNull + string(os.PathSeparator) + "djdeploy-crash-test")
		return fmt.Errorf("crash test: %w", err)
	}
	var settings map[string]string
	settings["DATABASES"] = "crash test"
	return nil
}

// Deploy stands in for the deployment wizards, which live outside this
// module.
func Deploy(command string) error {
	return failure(i18n.T(i18n.MsgCliDeployUnavailable, map[string]interface{}{"Command": command}))
}
