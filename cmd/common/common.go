// Package common provides shared helpers for the ptimer CLI commands:
// countdown bars, error printing, help display and column formatting.
package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ptimer/ptimer/pkg/timercli"
)

// VersionCmdStr is printed by the version command. Execute fills it with
// the build information.
var VersionCmdStr string

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

const labelWidth = 22

// NewCountdownBar adds a bar for one timer to p. The bar's total is the
// timer length in milliseconds and its current value the elapsed time;
// status renders the text shown after the bar and is called on every
// refresh.
func NewCountdownBar(p *mpb.Progress, label string, totalMs int64, status func() string) *mpb.Bar {
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")

	name := Center(label, labelWidth)
	return p.New(totalMs,
		barStyle,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: labelWidth + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string { return status() }, decor.WC{W: 12}),
		),
	)
}

// Help shows the app help, or the help of the command named by the first
// argument.
func Help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Fprintf(ctx.App.Writer, "%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	if err := showCommandHelp(ctx, arg); err != nil {
		return err
	}
	return nil
}

func GetVersion(ctx *cli.Context) error {
	fmt.Fprintln(ctx.App.Writer, VersionCmdStr)
	return nil
}

// PrintRuntimeErr reports a failed command on the app's error writer as
// "<app>: <cmd>[<action>]: <err>", followed by a hint when the error is
// one the user can act on. ctx may be nil.
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		return
	}
	name := os.Args[0]
	var w io.Writer = os.Stderr
	if ctx != nil {
		name = ctx.App.HelpName
		if ctx.App.ErrWriter != nil {
			w = ctx.App.ErrWriter
		}
	}
	fmt.Fprintf(w, "%s: %s[%s]: %s\n", name, cmd, action, err.Error())
	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "the daemon is not running; start it with 'ptimer daemon'"
	case errors.Is(err, timercli.ErrUnauthorized):
		return "the daemon uses a different token; restart it or set rpc_secret in config.yaml"
	case errors.Is(err, timercli.ErrTimerNotFound):
		return "run 'ptimer list' to see the current timer ids"
	case errors.Is(err, timercli.ErrPresetNotFound):
		return "run 'ptimer presets' to see the available presets"
	case errors.Is(err, timercli.ErrPersistence):
		return "the daemon could not write its data directory; the change was not saved, retry shortly"
	}
	return ""
}

// PrintErrWithCmdHelp prints err followed by the current command's help.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(ctx, err, func() {
		if err := showCommandHelp(ctx, ctx.Command.Name); err != nil {
			fmt.Fprintln(ctx.App.Writer, err.Error())
		}
	})
}

// PrintErrWithHelp prints err followed by the app help and exits with 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(ctx, err, func() {
		showAppHelpAndExit(ctx, 1)
	})
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return Help(ctx)
	}
	if strings.Contains(estr, "-version") || strings.Contains(estr, "-v") {
		return GetVersion(ctx)
	}
	fmt.Fprintf(ctx.App.Writer, "%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

// UsageErrorCallback is the OnUsageError hook of the app and its commands.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// Center pads s with spaces to n terminal columns, centered, with any odd
// column on the right. Wider text is truncated with an ellipsis. Widths
// are display widths, so labels with CJK characters or emoji line up.
func Center(s string, n int) string {
	w := runewidth.StringWidth(s)
	if w > n {
		return runewidth.Truncate(s, n, "…")
	}
	pad := n - w
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
