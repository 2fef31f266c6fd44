package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/command"
	"github.com/sesdev/sesdev/pkg/deployment"
)

var destroyForce bool

var destroyCmd = &cobra.Command{
	Use:   "destroy <deployment-id>",
	Short: "Destroys the deployment's VMs and deletes the deployment directory.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !destroyForce && !command.YesNoPrompt("Are you sure you want to destroy the cluster?", false) {
			return nil
		}
		verifyRequirements()
		dep, err := deployment.Load(args[0])
		if err != nil {
			return err
		}
		return dep.Destroy(printProgress)
	},
}

func init() {
	destroyCmd.Flags().BoolVar(&destroyForce, "force", false,
		"Allow to destroy the deployment without user confirmation")
	rootCmd.AddCommand(destroyCmd)
}
