package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/deployment"
)

var tunnelOpts struct {
	node         string
	remotePort   int
	localPort    int
	localAddress string
}

var tunnelCmd = &cobra.Command{
	Use:   "tunnel <deployment-id> [service]",
	Short: "Creates an SSH port forwarding for a service running in the deployment.",
	Long: `Creates an SSH port forwarding for the services that are running in the
deployment.

SERVICE is one of: dashboard, grafana, openattic. If SERVICE is not
specified, use --remote-port and --node to forward a generic service.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyRequirements()
		service := ""
		if len(args) > 1 {
			service = args[1]
		}

		if service != "" {
			fmt.Printf("Opening tunnel to service '%s'...\n", service)
		} else if tunnelOpts.remotePort != 0 {
			localPort := tunnelOpts.localPort
			if localPort == 0 {
				localPort = tunnelOpts.remotePort
			}
			fmt.Printf("Opening tunnel between remote %d port and local %d port\n",
				tunnelOpts.remotePort, localPort)
		}

		dep, err := deployment.Load(args[0])
		if err != nil {
			return err
		}
		return dep.StartPortForwarding(service, tunnelOpts.node,
			tunnelOpts.remotePort, tunnelOpts.localPort, tunnelOpts.localAddress)
	},
}

func init() {
	tunnelCmd.Flags().StringVar(&tunnelOpts.node, "node", "admin", "The node to create the tunnel to")
	tunnelCmd.Flags().IntVar(&tunnelOpts.remotePort, "remote-port", 0, "The service port in the remote machine")
	tunnelCmd.Flags().IntVar(&tunnelOpts.localPort, "local-port", 0, "The local port for the tunnel")
	tunnelCmd.Flags().StringVar(&tunnelOpts.localAddress, "local-address", "localhost", "The local address to bind the tunnel")
	rootCmd.AddCommand(tunnelCmd)
}
