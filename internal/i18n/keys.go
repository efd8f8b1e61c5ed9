package i18n

// Message key constants to avoid hardcoded strings.
// Use these constants with T().

// CLI messages
const (
	MsgCliAppName            = "cli.app_name"
	MsgCliUsage              = "cli.usage"
	MsgCliCommandUsage       = "cli.command_usage"
	MsgCliOptions            = "cli.options"
	MsgCliOptDebug           = "cli.opt_debug"
	MsgCliOptLang            = "cli.opt_lang"
	MsgCliOptHelp            = "cli.opt_help"
	MsgCliOptVersion         = "cli.opt_version"
	MsgCliCommands           = "cli.commands"
	MsgCliCmdNew             = "cli.cmd_new"
	MsgCliCmdCloudify        = "cli.cmd_cloudify"
	MsgCliCmdUpdate          = "cli.cmd_update"
	MsgCliCmdDoctor          = "cli.cmd_doctor"
	MsgCliCmdReports         = "cli.cmd_reports"
	MsgCliCmdSettings        = "cli.cmd_settings"
	MsgCliExamples           = "cli.examples"
	MsgCliExampleDoctor      = "cli.example_doctor"
	MsgCliExampleReports     = "cli.example_reports"
	MsgCliUnknownCommand     = "cli.unknown_command"
	MsgCliError              = "cli.error"
	MsgCliConfigLoaded       = "cli.config_loaded"
	MsgCliConfigLoadFailed   = "cli.config_load_failed"
	MsgCliDeployUnavailable  = "cli.deploy_unavailable"
	MsgCliVersion            = "cli.version"
	MsgCliCrashTestTriggered = "cli.crash_test_triggered"
)

// Crash reporting messages
const (
	MsgCrashInternalError  = "crash.internal_error"
	MsgCrashSaveFailed     = "crash.save_failed"
	MsgCrashTemplateFailed = "crash.template_failed"
	MsgCrashAskFileBug     = "crash.ask_file_bug"
	MsgCrashOutdated       = "crash.outdated"
	MsgCrashBrowserOpened  = "crash.browser_opened"
	MsgCrashPrivacyNote    = "crash.privacy_note"
)

// Doctor messages
const (
	MsgDoctorTitle        = "doctor.title"
	MsgDoctorJSONFlag     = "doctor.json_flag"
	MsgDoctorNoLatestFlag = "doctor.no_latest_flag"
	MsgDoctorLatest       = "doctor.latest"
	MsgDoctorOutdated     = "doctor.outdated"
	MsgDoctorUpToDate     = "doctor.up_to_date"
	MsgDoctorMissingTools = "doctor.missing_tools"
	MsgDoctorAllTools     = "doctor.all_tools"
	MsgDoctorStateDir     = "doctor.state_dir"
	MsgDoctorStateMissing = "doctor.state_dir_missing"
	MsgDoctorStateNoWrite = "doctor.state_dir_not_writable"
	MsgDoctorReportDir    = "doctor.report_dir"
	MsgOwnerUnknown       = "doctor.owner_unknown"

	MsgDoctorLevelError         = "doctor.level_error"
	MsgDoctorLevelWarning       = "doctor.level_warning"
	MsgDoctorLevelInfo          = "doctor.level_info"
	MsgDoctorToolMissing        = "doctor.tool_missing"
	MsgDoctorToolMissingSuggest = "doctor.tool_missing_suggestion"
	MsgDoctorOutdatedSuggest    = "doctor.outdated_suggestion"
	MsgDoctorStateDirSuggest    = "doctor.state_dir_suggestion"
	MsgDoctorReportDirNoWrite   = "doctor.report_dir_not_writable"
	MsgDoctorReportDirSuggest   = "doctor.report_dir_suggestion"
	MsgDoctorHistoryFailed      = "doctor.history_failed"
	MsgDoctorHistorySuggest     = "doctor.history_suggestion"
	MsgDoctorNoIssues           = "doctor.no_issues"
	MsgDoctorHasErrors          = "doctor.has_errors"
	MsgDoctorHistory            = "doctor.history"
)

// Crash history messages
const (
	MsgReportsUsage           = "reports.usage"
	MsgReportsSubcommands     = "reports.subcommands"
	MsgReportsCmdList         = "reports.cmd_list"
	MsgReportsCmdShow         = "reports.cmd_show"
	MsgReportsCmdOpen         = "reports.cmd_open"
	MsgReportsCmdDelete       = "reports.cmd_delete"
	MsgReportsEmpty           = "reports.empty"
	MsgReportsHistoryDisabled = "reports.history_disabled"
	MsgReportsDbInitFailed    = "reports.db_init_failed"
	MsgReportsNotFound        = "reports.not_found"
	MsgReportsFileMissing     = "reports.file_missing"
	MsgReportsLimitFlag       = "reports.limit_flag"
	MsgReportsIDRequired      = "reports.id_required"
	MsgReportsDeleted         = "reports.deleted"
	MsgReportsSubmitted       = "reports.submitted"
	MsgReportsNotSubmitted    = "reports.not_submitted"
	MsgReportsAmbiguous       = "reports.ambiguous"
	MsgReportsNotFiled        = "reports.not_filed"
	MsgReportsHeader          = "reports.header"
	MsgReportsYesFlag         = "reports.yes_flag"
	MsgReportsConfirmDelete   = "reports.confirm_delete"
)

// Settings messages
const (
	MsgSettingsUsage            = "settings.usage"
	MsgSettingsSubcommands      = "settings.subcommands"
	MsgSettingsCmdShow          = "settings.cmd_show"
	MsgSettingsCmdSetMode       = "settings.cmd_set_mode"
	MsgSettingsConfigTitle      = "settings.config_title"
	MsgSettingsPath             = "settings.path"
	MsgSettingsMode             = "settings.mode"
	MsgSettingsDebug            = "settings.debug"
	MsgSettingsIssueURL         = "settings.issue_url"
	MsgSettingsHistory          = "settings.history"
	MsgSettingsNotifyChannels   = "settings.notify_channels"
	MsgSettingsModeFlag         = "settings.mode_flag"
	MsgSettingsInvalidMode      = "settings.invalid_mode"
	MsgSettingsModeSet          = "settings.mode_set"
	MsgSettingsConfigReadFailed = "settings.config_read_failed"
	MsgSettingsConfigSaveFailed = "settings.config_save_failed"
	MsgSettingsReportDir        = "settings.report_dir"
	MsgSettingsLogFile          = "settings.log_file"
	MsgSettingsLanguage         = "settings.language"
	MsgSettingsCmdTestNotify    = "settings.cmd_test_notify"
	MsgSettingsChannelFlag      = "settings.channel_flag"
	MsgSettingsNotifyNone       = "settings.notify_none"
	MsgSettingsNotifySent       = "settings.notify_sent"
	MsgSettingsNotifyFailed     = "settings.notify_failed"
	MsgSettingsNotifyTestFailed = "settings.notify_test_failed"
	MsgSettingsTestMessage      = "settings.test_message"
)

// Prompt messages
const (
	MsgPromptDefaultYes   = "prompt.default_yes"
	MsgPromptDefaultNo    = "prompt.default_no"
	MsgPromptDefaultLabel = "prompt.default_label"
)

// Log messages
const (
	MsgLogCrashHandling       = "log.crash_handling"
	MsgLogToolUnavailable     = "log.tool_unavailable"
	MsgLogTemplateFailed      = "log.template_failed"
	MsgLogReportSaveFailed    = "log.report_save_failed"
	MsgLogReportSubmitted     = "log.report_submitted"
	MsgLogBrowserOpenFailed   = "log.browser_open_failed"
	MsgLogHistoryWriteFailed  = "log.history_write_failed"
	MsgLogNotifyChannelsReady = "log.notify_channels_ready"
	MsgLogNotifySendFailed    = "log.notify_send_failed"
	MsgLogTelegramChatIdBad   = "log.telegram_chat_id_invalid"
	MsgLogTelegramInitFailed  = "log.telegram_init_failed"
	MsgLogLatestCheckFailed   = "log.latest_check_failed"
)
