package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/ptimer/ptimer/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var buildArgs BuildArgs

func idCommand(name, alias, usage string, action cli.ActionFunc) cli.Command {
	return cli.Command{
		Name:               name,
		Aliases:            []string{alias},
		Usage:              usage,
		UsageText:          "<timer id>",
		OnUsageError:       common.UsageErrorCallback,
		CustomHelpTemplate: CMD_HELP_TEMPL,
		Action:             action,
	}
}

func newApp(bArgs BuildArgs) *cli.App {
	buildArgs = bArgs
	app := cli.NewApp()
	app.Name = "ptimer"
	app.HelpName = "ptimer"
	app.Usage = "Parallel countdown timers."
	app.Version = fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType)
	app.UsageText = "ptimer <command> [arguments...]"
	app.Description = DESCRIPTION
	app.CustomAppHelpTemplate = HELP_TEMPL
	app.OnUsageError = common.UsageErrorCallback
	app.HideHelp = true
	app.HideVersion = true
	app.Action = list
	app.Commands = []cli.Command{
		{
			Name:               "daemon",
			Usage:              "run the timer daemon",
			Description:        DaemonDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             daemon,
		},
		{
			Name:                   "add",
			Aliases:                []string{"a"},
			Usage:                  "create a timer",
			UsageText:              "<label> <duration> [flags]",
			Description:            AddDescription,
			OnUsageError:           common.UsageErrorCallback,
			CustomHelpTemplate:     CMD_HELP_TEMPL,
			Action:                 add,
			Flags:                  addFlags,
			UseShortOptionHandling: true,
		},
		{
			Name:               "preset",
			Usage:              "create a timer from a preset",
			UsageText:          "[preset id] [flags]",
			Description:        PresetDescription,
			OnUsageError:       common.UsageErrorCallback,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             preset,
			Flags:              presetFlags,
		},
		idCommand("start", "s", "start or resume a timer", start),
		idCommand("pause", "p", "pause a running timer", pause),
		idCommand("reset", "r", "reset a timer to its full duration", reset),
		idCommand("delete", "rm", "delete a timer", remove),
		{
			Name:               "undo",
			Usage:              "restore the last deleted timer",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             undo,
		},
		{
			Name:               "edit",
			Aliases:            []string{"e"},
			Usage:              "change label, color or group",
			UsageText:          "<timer id> [flags]",
			Description:        EditDescription,
			OnUsageError:       common.UsageErrorCallback,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             edit,
			Flags:              editFlags,
		},
		{
			Name:                   "list",
			Aliases:                []string{"l"},
			Usage:                  "list timers",
			Description:            ListDescription,
			OnUsageError:           common.UsageErrorCallback,
			CustomHelpTemplate:     CMD_HELP_TEMPL,
			Action:                 list,
			Flags:                  listFlags,
			UseShortOptionHandling: true,
		},
		{
			Name:               "watch",
			Aliases:            []string{"w"},
			Usage:              "show live countdowns",
			Description:        WatchDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             watch,
			Flags:              listFlags,
		},
		{
			Name:               "history",
			Usage:              "list completed timers",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             history,
			Flags:              historyFlags,
		},
		{
			Name:               "stats",
			Usage:              "print completion statistics",
			Description:        StatsDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             stats,
			Flags:              statsFlags,
		},
		{
			Name:               "presets",
			Usage:              "list presets",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             presets,
		},
		{
			Name:               "groups",
			Usage:              "list groups",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             groups,
		},
		{
			Name:    "help",
			Aliases: []string{"h"},
			Usage:   "prints the help message",
			Action:  common.Help,
		},
		{
			Name:               "version",
			Aliases:            []string{"v"},
			Usage:              "prints installed version of ptimer",
			UsageText:          " ",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             common.GetVersion,
		},
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app
}

func Execute(args []string, bArgs BuildArgs) error {
	return newApp(bArgs).Run(args)
}
