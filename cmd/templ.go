package cmd

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const DESCRIPTION = `
ptimer runs any number of countdown timers side by side. A small
daemon owns the timers so they keep counting, and complete on time,
while no client is attached.
`

const (
	DaemonDescription = `The daemon command runs the timer daemon in the foreground.
It serves the JSON-RPC API that every other command uses.

Example:
        ptimer daemon

`
	AddDescription = `The add command creates an idle timer with a label and
a duration. Durations use Go syntax: 90s, 5m, 1h30m.

Example:
        ptimer add "boil eggs" 7m --color 2 --group cooking

`
	PresetDescription = `The preset command creates a timer from a stored preset
id, or from a bare duration labelled like "5m 30s".

Example:
        ptimer preset 25min
        ptimer preset --duration 5m30s

`
	ListDescription = `The list command prints every timer with its state and
remaining time. Ids may be abbreviated to any unique prefix
in other commands.

Example:
        ptimer list --group study

`
	WatchDescription = `The watch command shows live countdown bars for every
timer until interrupted, and reports completions pushed by
the daemon.

Example:
        ptimer watch

`
	EditDescription = `The edit command changes the label, color and group of a
timer. Its running state and remaining time are untouched.

Example:
        ptimer edit 3f2a --label "tea" --color 4 --group break

`
	StatsDescription = `The stats command prints completion statistics: totals,
today, the last 7 and 30 days, per group, and streaks.

Example:
        ptimer stats --tz Europe/Berlin

`
)
