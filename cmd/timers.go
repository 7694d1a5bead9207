package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli"

	"github.com/ptimer/ptimer/cmd/common"
	"github.com/ptimer/ptimer/pkg/timercli"
	"github.com/ptimer/ptimer/pkg/timerlib"

	pcommon "github.com/ptimer/ptimer/common"
)

var (
	colorIndex int
	groupID    string

	addFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "color, c",
			Usage:       "palette index of the timer color (0-5)",
			Destination: &colorIndex,
		},
		cli.StringFlag{
			Name:        "group, g",
			Usage:       "group id to file the timer under",
			Destination: &groupID,
		},
	}

	presetDuration time.Duration
	presetLabel    string

	presetFlags = []cli.Flag{
		cli.DurationFlag{
			Name:        "duration, d",
			Usage:       "create from a bare duration instead of a preset id",
			Destination: &presetDuration,
		},
		cli.StringFlag{
			Name:        "label, l",
			Usage:       "override the generated label",
			Destination: &presetLabel,
		},
		cli.StringFlag{
			Name:        "group, g",
			Usage:       "group id to file the timer under",
			Destination: &groupID,
		},
	}

	editFlags = []cli.Flag{
		cli.StringFlag{
			Name:  "label, l",
			Usage: "new label",
		},
		cli.IntFlag{
			Name:  "color, c",
			Usage: "new palette index",
		},
		cli.StringFlag{
			Name:  "group, g",
			Usage: "new group id; empty removes the group",
		},
	}
)

func printTimer(w io.Writer, t *timerlib.Timer) {
	if t == nil {
		return
	}
	group := ""
	if g := t.Group(); g != "" {
		group = " [" + g + "]"
	}
	fmt.Fprintf(w, "%s  %-20s  %-8s  %s%s\n",
		shortID(t.ID), t.Label, t.State, timerlib.FormatRemaining(t.RemainingMs), group)
}

func optionalGroup(g string) *string {
	if g == "" {
		return nil
	}
	return &g
}

// withClient runs fn with a connected client and a bounded context. Errors
// are printed and swallowed so the exit status stays zero.
func withClient(ctx *cli.Context, cmd string, fn func(context.Context, *timercli.Client) error) error {
	client, err := newClient()
	if err != nil {
		common.PrintRuntimeErr(ctx, cmd, "new_client", err)
		return nil
	}
	defer client.Close()
	cctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := fn(cctx, client); err != nil {
		common.PrintRuntimeErr(ctx, cmd, "call", err)
	}
	return nil
}

func add(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if ctx.NArg() < 2 {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("add needs a label and a duration"))
	}
	d, err := time.ParseDuration(ctx.Args().Get(1))
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid duration: %w", err))
	}
	return withClient(ctx, "add", func(cctx context.Context, c *timercli.Client) error {
		res, err := c.Create(cctx, pcommon.CreateParams{
			Label:      ctx.Args().First(),
			ColorIndex: colorIndex,
			DurationMs: d.Milliseconds(),
			GroupID:    optionalGroup(groupID),
		})
		if err != nil {
			return err
		}
		printTimer(ctx.App.Writer, res.Timer)
		return nil
	})
}

func preset(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" && presetDuration <= 0 {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("preset needs a preset id or --duration"))
	}
	return withClient(ctx, "preset", func(cctx context.Context, c *timercli.Client) error {
		res, err := c.CreateFromPreset(cctx, pcommon.PresetParams{
			PresetID:   id,
			DurationMs: presetDuration.Milliseconds(),
			Label:      presetLabel,
			GroupID:    optionalGroup(groupID),
		})
		if err != nil {
			return err
		}
		printTimer(ctx.App.Writer, res.Timer)
		return nil
	})
}

// timerAction returns the action for a command naming one timer.
func timerAction(name, verb string, call func(*timercli.Client, context.Context, string) (*pcommon.TimerResult, error)) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if ctx.NArg() < 1 {
			return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("%s needs a timer id", name))
		}
		return withClient(ctx, name, func(cctx context.Context, c *timercli.Client) error {
			id, err := resolveID(cctx, c, ctx.Args().First())
			if err != nil {
				return err
			}
			res, err := call(c, cctx, id)
			if err != nil {
				return err
			}
			if !res.Changed {
				fmt.Fprintf(ctx.App.Writer, "%s: nothing to do, timer is %s\n", name, res.Timer.State)
				return nil
			}
			fmt.Fprintf(ctx.App.Writer, "%s ", verb)
			printTimer(ctx.App.Writer, res.Timer)
			return nil
		})
	}
}

var (
	start = timerAction("start", "started", (*timercli.Client).Start)
	pause = timerAction("pause", "paused", (*timercli.Client).Pause)
	reset = timerAction("reset", "reset", (*timercli.Client).Reset)
)

func remove(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("delete needs a timer id"))
	}
	return withClient(ctx, "delete", func(cctx context.Context, c *timercli.Client) error {
		id, err := resolveID(cctx, c, ctx.Args().First())
		if err != nil {
			return err
		}
		res, err := c.Delete(cctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "deleted %q (restore with: %s undo)\n", res.Label, ctx.App.HelpName)
		return nil
	})
}

func undo(ctx *cli.Context) error {
	return withClient(ctx, "undo", func(cctx context.Context, c *timercli.Client) error {
		res, err := c.UndoDelete(cctx)
		if err != nil {
			return err
		}
		if !res.Changed {
			fmt.Fprintln(ctx.App.Writer, "undo: nothing to restore")
			return nil
		}
		fmt.Fprint(ctx.App.Writer, "restored ")
		printTimer(ctx.App.Writer, res.Timer)
		return nil
	})
}

func edit(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("edit needs a timer id"))
	}
	return withClient(ctx, "edit", func(cctx context.Context, c *timercli.Client) error {
		id, err := resolveID(cctx, c, ctx.Args().First())
		if err != nil {
			return err
		}
		cur, err := c.Get(cctx, id)
		if err != nil {
			return err
		}
		p := pcommon.EditParams{
			ID:         id,
			Label:      cur.Timer.Label,
			ColorIndex: cur.Timer.ColorIndex,
			GroupID:    cur.Timer.GroupID,
		}
		if ctx.IsSet("label") {
			p.Label = ctx.String("label")
		}
		if ctx.IsSet("color") {
			p.ColorIndex = ctx.Int("color")
		}
		if ctx.IsSet("group") {
			g := ctx.String("group")
			p.GroupID = &g
		}
		res, err := c.Edit(cctx, p)
		if err != nil {
			return err
		}
		printTimer(ctx.App.Writer, res.Timer)
		return nil
	})
}
