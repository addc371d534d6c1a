package main

import (
	"fmt"

	"github.com/FranksOps/serpkit/pkg/useragent"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the User-Agent presets accepted by --user-agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range useragent.Names() {
			ua, _ := useragent.Lookup(name)
			fmt.Fprintf(out, "%-16s %s\n", name, ua)
		}
		return nil
	},
}
