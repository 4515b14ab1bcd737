package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"

	"github.com/warpdl/warpscreen/cmd/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config",
		Usage:  "path of the config file (default: warpscreen.yaml in ./ or ~/.config/warpscreen)",
		EnvVar: "WARPSCREEN_CONFIG",
	},
	cli.StringFlag{
		Name:  "host",
		Usage: "base URL serving the fallback pages",
	},
	cli.StringFlag{
		Name:  "controller",
		Usage: "controller address, e.g. http://localhost:8090",
	},
	cli.StringFlag{
		Name:  "store",
		Usage: "schedule store driver: diskv, sqlite, file or memory",
	},
	cli.StringFlag{
		Name:  "store-path",
		Usage: "directory holding the schedule store",
	},
	cli.StringFlag{
		Name:  "display",
		Usage: "listen address of the display host, empty to disable",
	},
	cli.StringFlag{
		Name:  "log-format",
		Usage: "console log format: text or json",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "also append logs to this file",
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:                  "warpscreen",
		HelpName:              "warpscreen",
		Usage:                 "Drives an unattended screen from a synchronized schedule.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "warpscreen [global options] <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:               "run",
				Aliases:            []string{"r"},
				Usage:              "runs the screen",
				Description:        RunDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             run,
			},
			{
				Name:               "show",
				Aliases:            []string{"s"},
				Usage:              "prints the cached schedule",
				Description:        ShowDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             show,
				Flags:              showFlags,
			},
			{
				Name:               "timeline",
				Aliases:            []string{"t"},
				Usage:              "renders the cached schedule windows",
				Description:        TimelineDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             timeline,
			},
			{
				Name:               "controller",
				Usage:              "runs a development controller",
				Description:        ControllerDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             runController,
				Flags:              controllerFlags,
			},
			{
				Name:               "push",
				Aliases:            []string{"p"},
				Usage:              "sends a notification to every screen of a controller",
				ArgsUsage:          "[document file]",
				Description:        PushDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             push,
				Flags:              pushFlags,
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
				Usage:              "prints installed version of warpscreen",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
