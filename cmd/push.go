package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/warpdl/warpscreen/cmd/common"
	"github.com/warpdl/warpscreen/internal/controller"
	"github.com/warpdl/warpscreen/internal/syncchan"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

// fs is where push reads document files from.
var fs = afero.NewOsFs()

var pushFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "method, m",
		Value: syncchan.MethodUpdate,
		Usage: "notification to send: update, reload, requestUpdate or heartbeat",
	},
	cli.DurationFlag{
		Name:  "timeout",
		Value: 10 * time.Second,
		Usage: "request timeout",
	},
}

func push(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "push", "load_config", err)
		return nil
	}
	if cfg.Controller == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no controller configured, use --controller"))
	}

	method := ctx.String("method")
	var params any
	if method == syncchan.MethodUpdate {
		if ctx.NArg() < 1 {
			return common.PrintErrWithCmdHelp(ctx, errors.New("missing document file"))
		}
		doc, err := readDocument(ctx.Args().First())
		if err != nil {
			common.PrintRuntimeErr(ctx, "push", "read_document", err)
			return nil
		}
		params = doc
	}

	cc, err := controller.NewControlClient(cfg.Controller)
	if err != nil {
		common.PrintRuntimeErr(ctx, "push", "connect", err)
		return nil
	}
	defer cc.Close()

	rctx, cancel := context.WithTimeout(context.Background(), ctx.Duration("timeout"))
	defer cancel()
	n, err := cc.Broadcast(rctx, method, params)
	if err != nil {
		common.PrintRuntimeErr(ctx, "push", "broadcast", err)
		return nil
	}
	fmt.Printf("sent %s to %d screens\n", method, n)
	return nil
}

// readDocument reads a schedule document from a JSON or YAML file.
func readDocument(path string) (*schedule.Document, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	doc := &schedule.Document{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, doc)
	default:
		err = json.Unmarshal(b, doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	schedule.Normalize(doc)
	return doc, nil
}
