package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"djdeploy/internal/appconfig"
	"djdeploy/internal/crash"
	"djdeploy/internal/diagnostics"
	"djdeploy/internal/i18n"
	"djdeploy/internal/logger"
	"djdeploy/internal/output"

	"github.com/spf13/pflag"
)

type doctorReport struct {
	Snapshot  crash.Snapshot      `json:"snapshot"`
	StateDir  diagnostics.DirInfo `json:"stateDir"`
	ReportDir diagnostics.DirInfo `json:"reportDir"`
	History   *historyStats       `json:"history,omitempty"`
	diagnostics.Report
}

type historyStats struct {
	Total   int64 `json:"total"`
	LastDay int64 `json:"lastDay"`
}

// crashStats is nil when history is off or cannot be counted.
func crashStats(env *Env, now time.Time) *historyStats {
	if env.History == nil {
		return nil
	}
	total, err := env.History.Count()
	if err != nil {
		logger.Log.Warn().Err(err).Msg("counting crash history failed")
		return nil
	}
	lastDay, err := env.History.CountSince(now.Add(-24 * time.Hour))
	if err != nil {
		logger.Log.Warn().Err(err).Msg("counting crash history failed")
		return nil
	}
	return &historyStats{Total: total, LastDay: lastDay}
}

// Doctor prints the environment a crash report would describe and the
// problems found in it.
func Doctor(ctx context.Context, env *Env, args []string) error {
	fs := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
	asJSON := fs.Bool("json", false, i18n.T(i18n.MsgDoctorJSONFlag))
	noLatest := fs.Bool("no-latest", false, i18n.T(i18n.MsgDoctorNoLatestFlag))
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usagef("doctor takes no arguments, got %q", fs.Args())
	}

	collector := *env.Collector
	if *noLatest {
		collector.Releases = nil
	}
	in := diagnostics.Input{
		Snapshot:   collector.Collect(ctx),
		StateDir:   diagnostics.InspectDir(appconfig.StateDir(), ownerOf),
		ReportDir:  diagnostics.InspectDir(reportDir(env.Config), nil),
		ConfigPath: env.ConfigPath,
		HistoryErr: env.HistoryErr,
	}
	report := doctorReport{
		Snapshot:  in.Snapshot,
		StateDir:  in.StateDir,
		ReportDir: in.ReportDir,
		History:   crashStats(env, time.Now()),
		Report:    diagnostics.Run(in),
	}

	if *asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		output.Println(string(data))
	} else {
		output.Printf("%s", renderDoctor(report))
	}
	if report.HasErrors {
		return failure(i18n.T(i18n.MsgDoctorHasErrors))
	}
	return nil
}

func reportDir(cfg appconfig.Config) string {
	if cfg.Crash.ReportDir != "" {
		return cfg.Crash.ReportDir
	}
	return os.TempDir()
}

func renderDoctor(r doctorReport) string {
	s := r.Snapshot
	b := &strings.Builder{}
	fmt.Fprintln(b, output.Colorize("title", i18n.T(i18n.MsgDoctorTitle)))
	fmt.Fprintln(b, output.Colorize("dim", "===="))

	rows := [][2]string{
		{"djdeploy", s.ToolVersion},
		{"gcloud", s.GcloudVersion},
		{"docker", s.DockerVersion},
		{"cloud_sql_proxy", s.CloudSQLProxyVersion},
		{"go", s.RuntimeVersion},
		{"platform", s.Platform},
	}
	if s.LatestVersion != "" {
		rows = append(rows, [2]string{i18n.T(i18n.MsgDoctorLatest), s.LatestVersion})
	}
	for _, row := range rows {
		value := row[1]
		if value == crash.NotInstalled {
			value = output.Colorize("danger", value)
		}
		fmt.Fprintf(b, "  %-16s %s\n", row[0], value)
	}
	if r.StateDir.Exists {
		fmt.Fprintln(b, i18n.T(i18n.MsgDoctorStateDir, map[string]interface{}{"Path": r.StateDir.Path, "Owner": r.StateDir.Owner}))
	} else {
		fmt.Fprintln(b, output.Colorize("dim", i18n.T(i18n.MsgDoctorStateMissing, map[string]interface{}{"Path": r.StateDir.Path})))
	}
	fmt.Fprintln(b, i18n.T(i18n.MsgDoctorReportDir, map[string]interface{}{"Path": r.ReportDir.Path}))
	if r.History != nil {
		fmt.Fprintln(b, i18n.T(i18n.MsgDoctorHistory, map[string]interface{}{"Total": r.History.Total, "LastDay": r.History.LastDay}))
	}
	fmt.Fprintln(b)

	if s.MissingTools() == 0 {
		fmt.Fprintln(b, output.Colorize("success", i18n.T(i18n.MsgDoctorAllTools)))
	}
	if !s.Outdated && s.LatestVersion != "" && s.LatestVersion != crash.UnknownLatest {
		fmt.Fprintln(b, output.Colorize("success", i18n.T(i18n.MsgDoctorUpToDate)))
	}
	if len(r.Issues) == 0 {
		fmt.Fprintln(b, output.Colorize("success", i18n.T(i18n.MsgDoctorNoIssues)))
		return b.String()
	}
	if s.MissingTools() > 0 {
		fmt.Fprintln(b, output.Colorize("warning", i18n.T(i18n.MsgDoctorMissingTools)))
	}
	for _, issue := range r.Issues {
		fmt.Fprintf(b, "%s %s\n", colorDoctorLevel(issue.Level), issue.Message)
		if issue.Suggestion != "" {
			fmt.Fprintf(b, "  %s\n", output.Colorize("dim", issue.Suggestion))
		}
	}
	return b.String()
}

func colorDoctorLevel(level string) string {
	switch level {
	case diagnostics.LevelError:
		return output.Colorize("danger", i18n.T(i18n.MsgDoctorLevelError))
	case diagnostics.LevelWarning:
		return output.Colorize("warning", i18n.T(i18n.MsgDoctorLevelWarning))
	case diagnostics.LevelInfo:
		return output.Colorize("accent", i18n.T(i18n.MsgDoctorLevelInfo))
	default:
		return "[" + level + "]"
	}
}
