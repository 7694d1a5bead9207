package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/ptimer/ptimer/cmd/common"
	"github.com/ptimer/ptimer/pkg/timercli"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

var (
	listGroup string

	listFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "group, g",
			Usage:       "only show timers in this group",
			Destination: &listGroup,
		},
	}
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	return withClient(ctx, "list", func(cctx context.Context, c *timercli.Client) error {
		l, err := c.List(cctx, listGroup)
		if err != nil {
			return err
		}
		w := ctx.App.Writer
		if len(l.Timers) == 0 {
			fmt.Fprintln(w, "ptimer: no timers found")
			return nil
		}
		fmt.Fprintln(w, "------------------------------------------------------------")
		fmt.Fprintf(w, "|%s|%s|%s|%s|\n",
			common.Center("Id", 10), common.Center("Label", 22), common.Center("State", 9), common.Center("Remaining", 13))
		fmt.Fprintln(w, "|----------|----------------------|---------|-------------|")
		for _, t := range l.Timers {
			fmt.Fprintf(w, "| %-8s | %-20s | %-7s | %11s |\n",
				shortID(t.ID), t.Label, t.State, timerlib.FormatRemaining(t.RemainingMs))
		}
		fmt.Fprintln(w, "------------------------------------------------------------")
		return nil
	})
}

func presets(ctx *cli.Context) error {
	return withClient(ctx, "presets", func(cctx context.Context, c *timercli.Client) error {
		res, err := c.Presets(cctx)
		if err != nil {
			return err
		}
		for _, p := range res.Presets {
			fmt.Fprintf(ctx.App.Writer, "%-10s  %-10s  %s\n", p.ID, p.Label, timerlib.FormatDuration(p.DurationMs))
		}
		return nil
	})
}

func groups(ctx *cli.Context) error {
	return withClient(ctx, "groups", func(cctx context.Context, c *timercli.Client) error {
		res, err := c.Groups(cctx)
		if err != nil {
			return err
		}
		for _, g := range res.Groups {
			fmt.Fprintf(ctx.App.Writer, "%-10s  %-10s  %s\n", g.ID, g.Name, g.Icon)
		}
		return nil
	})
}
