package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tempus/cmd/check"
	"github.com/gigurra/tempus/cmd/coerce"
	"github.com/gigurra/tempus/cmd/explain"
	"github.com/gigurra/tempus/cmd/export"
	"github.com/gigurra/tempus/cmd/settings"
	"github.com/gigurra/tempus/cmd/try"
	"github.com/gigurra/tempus/cmd/watch"
	"github.com/spf13/cobra"
)

// Command group IDs
const (
	groupCoerce  = "coerce"
	groupRecords = "records"
)

// withGroup sets the GroupID on a command and returns it
func withGroup(cmd *cobra.Command, group string) *cobra.Command {
	cmd.GroupID = group
	return cmd
}

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "tempus",
		Short:   "Strict coercion and validation of dates, times, datetimes and durations",
		Version: appVersion(),
		Groups: []*cobra.Group{
			{ID: groupCoerce, Title: "Coercion:"},
			{ID: groupRecords, Title: "Records:"},
		},
		SubCmds: []*cobra.Command{
			withGroup(coerce.DateCmd(), groupCoerce),
			withGroup(coerce.TimeCmd(), groupCoerce),
			withGroup(coerce.DateTimeCmd(), groupCoerce),
			withGroup(coerce.DurationCmd(), groupCoerce),
			withGroup(explain.Cmd(), groupCoerce),
			withGroup(try.Cmd(), groupCoerce),

			withGroup(check.Cmd(), groupRecords),
			withGroup(watch.Cmd(), groupRecords),
			withGroup(export.Cmd(), groupRecords),

			settings.Cmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuilInfo := debug.ReadBuildInfo()
	if !hasBuilInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
