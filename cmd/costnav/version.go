package main

import (
	"fmt"

	"github.com/costnav/costnav/internal/handler"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "costnav %s\n", handler.Version)
	},
}
