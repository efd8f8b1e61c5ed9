package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"djdeploy/internal/database"
	"djdeploy/internal/i18n"
	"djdeploy/internal/output"
	"djdeploy/internal/prompt"

	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

// Reports dispatches the crash history subcommands.
func Reports(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		output.Println(reportsUsage())
		return usagef("missing subcommand")
	}
	switch args[0] {
	case "list":
		return ReportsList(env, args[1:])
	case "show":
		return ReportsShow(env, args[1:])
	case "open":
		return ReportsOpen(ctx, env, args[1:])
	case "delete":
		return ReportsDelete(env, args[1:])
	default:
		output.Println(reportsUsage())
		return usageError(errors.New(i18n.T(i18n.MsgCliUnknownCommand, map[string]interface{}{"Command": args[0]})))
	}
}

func reportsUsage() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, i18n.T(i18n.MsgReportsUsage))
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, i18n.T(i18n.MsgReportsSubcommands))
	fmt.Fprintln(b, i18n.T(i18n.MsgReportsCmdList))
	fmt.Fprintln(b, i18n.T(i18n.MsgReportsCmdShow))
	fmt.Fprintln(b, i18n.T(i18n.MsgReportsCmdOpen))
	fmt.Fprintln(b, i18n.T(i18n.MsgReportsCmdDelete))
	return b.String()
}

func history(env *Env) (*database.CrashRepo, error) {
	if env.History != nil {
		return env.History, nil
	}
	if env.HistoryErr != nil {
		return nil, failure(i18n.T(i18n.MsgReportsDbInitFailed, map[string]interface{}{"Error": env.HistoryErr}))
	}
	return nil, failure(i18n.T(i18n.MsgReportsHistoryDisabled))
}

func ReportsList(env *Env, args []string) error {
	fs := pflag.NewFlagSet("reports list", pflag.ContinueOnError)
	limit := fs.IntP("limit", "n", 20, i18n.T(i18n.MsgReportsLimitFlag))
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	repo, err := history(env)
	if err != nil {
		return err
	}
	records, err := repo.List(*limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		output.Println(i18n.T(i18n.MsgReportsEmpty))
		return nil
	}
	output.Println(output.Colorize("dim", i18n.T(i18n.MsgReportsHeader)))
	for _, r := range records {
		output.Println(formatRecord(r))
	}
	return nil
}

func formatRecord(r database.CrashRecord) string {
	id := r.ReportID
	if len(id) > 8 {
		id = id[:8]
	}
	status := output.Colorize("dim", fmt.Sprintf("%-10s", i18n.T(i18n.MsgReportsNotSubmitted)))
	if r.Submitted {
		status = output.Colorize("success", fmt.Sprintf("%-10s", i18n.T(i18n.MsgReportsSubmitted)))
	}
	return fmt.Sprintf("%-8s  %-19s  %s  %-10s  %s",
		id, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), status, r.Command, r.Title)
}

// lookup accepts a full report ID or an unambiguous prefix of one.
func lookup(env *Env, args []string) (*database.CrashRepo, *database.CrashRecord, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return nil, nil, usageError(errors.New(i18n.T(i18n.MsgReportsIDRequired)))
	}
	id := strings.TrimSpace(args[0])
	repo, err := history(env)
	if err != nil {
		return nil, nil, err
	}
	rec, err := repo.FindByReportID(id)
	if err == nil {
		return repo, rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	matches, err := repo.FindByPrefix(id, 2)
	if err != nil {
		return nil, nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil, failure(i18n.T(i18n.MsgReportsNotFound, map[string]interface{}{"ID": id}))
	case 1:
		return repo, &matches[0], nil
	default:
		return nil, nil, failure(i18n.T(i18n.MsgReportsAmbiguous, map[string]interface{}{"ID": id}))
	}
}

func readReport(rec *database.CrashRecord) (string, error) {
	if rec.ReportPath == "" {
		return "", failure(i18n.T(i18n.MsgReportsFileMissing, map[string]interface{}{"Path": "-"}))
	}
	data, err := os.ReadFile(rec.ReportPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", failure(i18n.T(i18n.MsgReportsFileMissing, map[string]interface{}{"Path": rec.ReportPath}))
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ReportsShow(env *Env, args []string) error {
	fs := pflag.NewFlagSet("reports show", pflag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	_, rec, err := lookup(env, fs.Args())
	if err != nil {
		return err
	}
	body, err := readReport(rec)
	if err != nil {
		return err
	}
	output.Println(output.Colorize("title", rec.Title))
	output.Println(body)
	return nil
}

// ReportsOpen asks again whether to file a saved report.
func ReportsOpen(ctx context.Context, env *Env, args []string) error {
	fs := pflag.NewFlagSet("reports open", pflag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	repo, rec, err := lookup(env, fs.Args())
	if err != nil {
		return err
	}
	body, err := readReport(rec)
	if err != nil {
		return err
	}
	filed, _, err := env.Handler.Refile(env.Console, rec.Title, body)
	if err != nil {
		return err
	}
	if !filed {
		output.Println(i18n.T(i18n.MsgReportsNotFiled, map[string]interface{}{"ID": rec.ReportID}))
		return nil
	}
	env.Console.Tell(i18n.T(i18n.MsgCrashBrowserOpened, map[string]interface{}{"Path": rec.ReportPath}))
	return repo.MarkSubmitted(rec.ReportID)
}

// ReportsDelete forgets a report and removes its local file.
func ReportsDelete(env *Env, args []string) error {
	fs := pflag.NewFlagSet("reports delete", pflag.ContinueOnError)
	yes := fs.BoolP("yes", "y", false, i18n.T(i18n.MsgReportsYesFlag))
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	repo, rec, err := lookup(env, fs.Args())
	if err != nil {
		return err
	}
	if !*yes {
		ok, err := prompt.AskBool(env.Console, i18n.T(i18n.MsgReportsConfirmDelete, map[string]interface{}{"ID": rec.ReportID}), false)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil || !ok {
			return err
		}
	}
	if err := repo.Delete(rec.ReportID); err != nil {
		return err
	}
	if rec.ReportPath != "" {
		if err := os.Remove(rec.ReportPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	output.Println(i18n.T(i18n.MsgReportsDeleted, map[string]interface{}{"ID": rec.ReportID}))
	return nil
}
