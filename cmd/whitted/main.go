// whitted renders scene description files with a recursive Phong ray tracer.
package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var cmdRoot = &cobra.Command{
	Use:          "whitted",
	Short:        "Offline Whitted-style ray tracer",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its settings from the standard flag set, which cobra
		// has already filled in; mark it parsed so glog stops complaining.
		return flag.CommandLine.Parse(nil)
	},
}

func init() {
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	cmdRoot.AddCommand(cmdRender, cmdInspect)

	if err := cmdRoot.Execute(); err != nil {
		glog.Exitf("Error: %v", err)
	}
}
