package cmd

import (
	"context"
	"errors"

	"github.com/urfave/cli"

	"github.com/warpdl/warpscreen/cmd/common"
	"github.com/warpdl/warpscreen/internal/daemon"
)

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "load_config", err)
		return nil
	}
	l, err := newLogger(cfg)
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "init_logger", err)
		return nil
	}
	defer l.Close()

	st, err := cfg.openStore()
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "open_store", err)
		return nil
	}
	defer st.Close()

	runner, err := daemon.New(&daemon.Config{
		Host:            cfg.Host,
		Controller:      cfg.Controller,
		DisplayAddr:     cfg.DisplayListen,
		TickInterval:    cfg.Tick,
		HeartbeatDelay:  cfg.HeartbeatDelay,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, &daemon.Dependencies{
		Store:  st,
		Logger: l,
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "run", "new_runner", err)
		return nil
	}

	sctx, cancel := setupShutdownHandler(l)
	defer cancel()
	if cfg.Controller == "" {
		l.Warning("No controller configured, running from the cached schedule only")
	}
	if err := runner.Start(sctx); err != nil && !errors.Is(err, context.Canceled) {
		common.PrintRuntimeErr(ctx, "run", "start", err)
	}
	return nil
}
