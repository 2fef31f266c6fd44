package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/command"
	"github.com/sesdev/sesdev/pkg/deployment"
)

var redeployForce bool

var redeployCmd = &cobra.Command{
	Use:   "redeploy <deployment-id>",
	Short: "Destroys the deployment's VMs and deploys the cluster again from scratch.",
	Long: `Destroys the VMs of the deployment and deploys the cluster again
from scratch with the same configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !redeployForce && !command.YesNoPrompt("Are you sure you want to redeploy the cluster?", false) {
			return nil
		}
		verifyRequirements()
		dep, err := deployment.Load(args[0])
		if err != nil {
			return err
		}
		cfg := dep.Settings
		if err := dep.Destroy(printProgress); err != nil {
			return err
		}
		dep, err = deployment.Create(args[0], cfg)
		if err != nil {
			return err
		}
		return dep.Start(printProgress, "")
	},
}

func init() {
	redeployCmd.Flags().BoolVar(&redeployForce, "force", false,
		"Allow to redeploy the cluster without user confirmation")
	rootCmd.AddCommand(redeployCmd)
}
