package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/deployment"
)

var infoCmd = &cobra.Command{
	Use:   "info <deployment-id>",
	Short: "Shows the information of a deployment.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyRequirements()
		dep, err := deployment.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Println(dep.Status())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
