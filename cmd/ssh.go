package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/deployment"
)

var sshCmd = &cobra.Command{
	Use:   "ssh <deployment-id> [node]",
	Short: "Opens an SSH shell to a node, the admin node by default.",
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
		return dep.SSH(node)
	},
}

func init() {
	rootCmd.AddCommand(sshCmd)
}
