package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/warpdl/warpscreen/cmd/common"
	"github.com/warpdl/warpscreen/pkg/schedule"
)

var showFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "format, f",
		Value: "json",
		Usage: "output format: json or yaml",
	},
}

func show(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		common.PrintRuntimeErr(ctx, "show", "load_config", err)
		return nil
	}
	st, err := cfg.openStore()
	if err != nil {
		common.PrintRuntimeErr(ctx, "show", "open_store", err)
		return nil
	}
	defer st.Close()

	doc, err := st.Load(context.Background())
	if err != nil {
		common.PrintRuntimeErr(ctx, "show", "load", err)
		return nil
	}
	if err := writeDocument(os.Stdout, doc, ctx.String("format")); err != nil {
		common.PrintRuntimeErr(ctx, "show", "write", err)
	}
	return nil
}

func writeDocument(w io.Writer, doc *schedule.Document, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
