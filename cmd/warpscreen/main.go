package main

import (
	"os"

	"github.com/warpdl/warpscreen/cmd"
	"github.com/warpdl/warpscreen/cmd/common"
)

var (
	version   = "dev"
	buildType = "source"
	date      = "unknown"
	commit    = "none"
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version:   version,
		BuildType: buildType,
		Date:      date,
		Commit:    commit,
	})
	if err != nil {
		common.PrintRuntimeErr(nil, "main", "execute", err)
		os.Exit(1)
	}
}
