package cmd

import (
	"context"
	"time"

	"github.com/urfave/cli"

	"github.com/warpdl/warpscreen/cmd/common"
	"github.com/warpdl/warpscreen/internal/controller"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

var controllerFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "listen, l",
		Value: DEF_CONTROLLER_ADDR,
		Usage: "listen address",
	},
	cli.DurationFlag{
		Name:  "heartbeat",
		Value: 30 * time.Second,
		Usage: "interval between heartbeats sent to screens, 0 to disable",
	},
}

func runController(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "controller", "load_config", err)
		return nil
	}
	l, err := newLogger(cfg)
	if err != nil {
		common.PrintRuntimeErr(ctx, "controller", "init_logger", err)
		return nil
	}
	defer l.Close()

	srv := controller.New(controller.Options{
		Addr:              ctx.String("listen"),
		HeartbeatInterval: ctx.Duration("heartbeat"),
		Logger:            l,
		OnUpdate: func(session string, doc *schedule.Document) {
			l.Info("Screen %s schedule: %d items", session, len(doc.Items))
		},
	})

	sctx, cancel := setupShutdownHandler(l)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			common.PrintRuntimeErr(ctx, "controller", "start", err)
		}
		return nil
	case <-sctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.PrintRuntimeErr(ctx, "controller", "shutdown", err)
	}
	return nil
}
