package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ptimer/ptimer/cmd/common"
	"github.com/ptimer/ptimer/internal/config"
	pdaemon "github.com/ptimer/ptimer/internal/daemon"
)

func daemon(ctx *cli.Context) error {
	s, err := config.Load()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := pdaemon.New(&pdaemon.Config{
		Settings:  s,
		Version:   buildArgs.Version,
		Commit:    buildArgs.Commit,
		BuildType: buildArgs.BuildType,
	}, nil)
	if err := r.Start(sigCtx); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "run", err)
	}
	return nil
}
