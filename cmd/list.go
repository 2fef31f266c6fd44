package cmd

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/deployment"
	"github.com/sesdev/sesdev/pkg/status"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists all the available deployments.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyRequirements()
		deps, err := deployment.List(true)
		if err != nil {
			return err
		}

		data := pterm.TableData{{"Deployments", "Status", "VMs"}}
		for _, dep := range deps {
			data = append(data, []string{
				dep.ID,
				string(status.Aggregate(dep.NodeStates())),
				strings.Join(dep.NodeNames(), ", "),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
