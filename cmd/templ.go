package cmd

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}

Global Options:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const DESCRIPTION = `
warpscreen shows scheduled web pages on an unattended display. It keeps
its schedule in a local store, picks what to show every second and stays
in sync with a remote controller.
`

const (
	RunDescription = `The run command starts the screen: it loads the cached
schedule, serves the display page and connects to the
controller when one is configured.

Example:
        warpscreen --controller http://ctl:8090 run

`
	ShowDescription = `The show command prints the cached schedule document.

Example:
        warpscreen show --format yaml

`
	TimelineDescription = `The timeline command draws one bar per scheduled item,
from its activation to its expiry.

Example:
        warpscreen timeline

`
	ControllerDescription = `The controller command runs a development controller
that screens can connect to. Use the push command to
drive the connected screens.

Example:
        warpscreen controller --listen :8090

`
	PushDescription = `The push command sends a notification to every screen
connected to a controller. With the default method the
file argument holds the schedule document (JSON or YAML).

Example:
        warpscreen push schedule.json
        warpscreen push --method reload

`
)
