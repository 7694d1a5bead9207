package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/urfave/cli"

	"github.com/ptimer/ptimer/pkg/timercli"
	"github.com/ptimer/ptimer/pkg/timerlib"
)

var (
	clearHistory bool
	historyLimit int

	historyFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "clear",
			Usage:       "delete the whole completion history",
			Destination: &clearHistory,
		},
		cli.IntFlag{
			Name:        "limit, n",
			Usage:       "show at most n entries (0 shows all)",
			Value:       20,
			Destination: &historyLimit,
		},
	}

	statsTZ string

	statsFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "tz",
			Usage:       "IANA time zone for day boundaries (default: the daemon's)",
			Destination: &statsTZ,
		},
	}
)

func history(ctx *cli.Context) error {
	return withClient(ctx, "history", func(cctx context.Context, c *timercli.Client) error {
		w := ctx.App.Writer
		if clearHistory {
			if err := c.ClearHistory(cctx); err != nil {
				return err
			}
			fmt.Fprintln(w, "history cleared")
			return nil
		}
		res, err := c.History(cctx)
		if err != nil {
			return err
		}
		if len(res.Entries) == 0 {
			fmt.Fprintln(w, "ptimer: no completed timers yet")
			return nil
		}
		for i, h := range res.Entries {
			if historyLimit > 0 && i == historyLimit {
				break
			}
			at := time.UnixMilli(h.CompletedAtEpochMs).Format("2006-01-02 15:04")
			fmt.Fprintf(w, "%s  %-20s  %s\n", at, h.TimerLabel, timerlib.FormatDuration(h.DurationMs))
		}
		return nil
	})
}

func stats(ctx *cli.Context) error {
	return withClient(ctx, "stats", func(cctx context.Context, c *timercli.Client) error {
		st, err := c.Stats(cctx, statsTZ)
		if err != nil {
			return err
		}
		w := ctx.App.Writer
		row := func(name string, n int, ms int64) {
			fmt.Fprintf(w, "%-12s %4d  %s\n", name, n, timerlib.FormatDuration(ms))
		}
		row("Today", st.TodayCompletedCount, st.TodayTimeMs)
		row("Last 7 days", st.WeekCompletedCount, st.WeekTimeMs)
		row("Last 30 days", st.MonthCompletedCount, st.MonthTimeMs)
		row("All time", st.TotalCompletedCount, st.TotalTimeMs)
		fmt.Fprintf(w, "Streak: %d days (longest %d)\n", st.CurrentStreak, st.LongestStreak)

		ids := make([]string, 0, len(st.GroupStats))
		for id := range st.GroupStats {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			g := st.GroupStats[id]
			row("  "+id, g.CompletedCount, g.TotalTimeMs)
		}
		return nil
	})
}
