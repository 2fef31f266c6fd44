package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/deployment"
)

var stopCmd = &cobra.Command{
	Use:   "stop <deployment-id> [node]",
	Short: "Stops the VMs of a deployment.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyRequirements()
		dep, err := deployment.Load(args[0])
		if err != nil {
			return err
		}
		node := ""
		if len(args) > 1 {
			node = args[1]
		}
		return dep.Stop(printProgress, node)
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
