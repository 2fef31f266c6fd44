package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/deployment"
)

var startCmd = &cobra.Command{
	Use:   "start <deployment-id> [node]",
	Short: "Starts the VMs of a deployment.",
	Long: `Starts the VMs of the deployment.

If the cluster was not yet deployed (it was created with --deploy=false),
this starts the deployment of the cluster.`,
	Args: cobra.RangeArgs(1, 2),
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
		return dep.Start(printProgress, node)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
