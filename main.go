//go:build !js

package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gohack",
	Short: "Assembler and emulator for the Hack computer",
	Long: `Gohack translates Hack assembly (.asm) into Hack machine code (.hack)
and runs machine code on an emulated Hack CPU.

Each instruction line of the source becomes one line of sixteen '0'/'1'
characters in the output. Label declarations produce no output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// glog reads its settings from the Go flag set, which cobra has
		// already filled in through the bridged persistent flags.
		return flag.CommandLine.Parse(nil)
	},
}

func init() {
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	defer glog.Flush()

	if err := rootCmd.Execute(); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}
