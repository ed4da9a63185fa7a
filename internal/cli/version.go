package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Version does not read configuration.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			v, c := resolveVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "filenode %s (%s) %s/%s\n", v, c, runtime.GOOS, runtime.GOARCH)
		},
	}
}

func resolveVersionInfo() (string, string) {
	v, c := version, commit
	if v != "dev" {
		return v, c
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, c
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && c == "unknown" {
			c = setting.Value
		}
	}
	return v, c
}
