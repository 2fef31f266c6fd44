package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/command"
	"github.com/sesdev/sesdev/pkg/deployment"
	"github.com/sesdev/sesdev/pkg/settings"
)

var osChoices = []string{
	"leap-15.1", "leap-15.2", "tumbleweed",
	"sles-12-sp3", "sles-15-sp1", "sles-15-sp2",
}

// createOpts holds the flag values shared by every release track; only one
// track subcommand runs per invocation.
var createOpts struct {
	roles      string
	os         string
	vagrantBox string
	deploy     bool
	cpus       int
	ram        int
	diskSize   int
	numDisks   int
	singleNode bool
	repos      []string

	deepseaCLI      bool
	saltRun         bool
	stopBeforeStage int
	deepseaRepo     string
	deepseaBranch   string

	libvirtHost        string
	libvirtUser        string
	libvirtStoragePool string

	useDeepsea bool
}

var createCmd = &cobra.Command{
	Use:   "create [command]",
	Short: "Creates a new Vagrant based SES cluster.",
	Long: `Creates a new Vagrant based SES cluster.

It creates a deployment directory in <working_directory>/<deployment_id>
with a Vagrantfile inside, and calls 'vagrant up' to start the deployment.

By default <working_directory> is located in ~/.sesdev.

Check all the options available with:

  $ sesdev create --help
`,
}

var createSes5Cmd = &cobra.Command{
	Use:   "ses5 <deployment-id>",
	Short: "Creates a SES5 cluster using SLES-12-SP3",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "ses5", args[0])
	},
}

var createSes6Cmd = &cobra.Command{
	Use:   "ses6 <deployment-id>",
	Short: "Creates a SES6 cluster using SLES-15-SP1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "ses6", args[0])
	},
}

var createSes7Cmd = &cobra.Command{
	Use:   "ses7 <deployment-id>",
	Short: "Creates a SES7 cluster using SLES-15-SP2",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "ses7", args[0])
	},
}

var createNautilusCmd = &cobra.Command{
	Use:   "nautilus <deployment-id>",
	Short: "Creates a Ceph Nautilus cluster using openSUSE Leap 15.1",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "nautilus", args[0])
	},
}

var createOctopusCmd = &cobra.Command{
	Use:   "octopus <deployment-id>",
	Short: "Creates a Ceph Octopus cluster using openSUSE Leap 15.2",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, "octopus", args[0])
	},
}

func commonCreateOptions(cmd *cobra.Command) {
	cmd.Flags().StringVar(&createOpts.roles, "roles", "",
		"List of roles for each node. Example for two nodes: [admin, client, prometheus],[storage, mon, mgr]")
	cmd.Flags().StringVar(&createOpts.os, "os", "",
		fmt.Sprintf("OS (open)SUSE distro %v", osChoices))
	cmd.Flags().StringVar(&createOpts.vagrantBox, "vagrant-box", "", "Vagrant box to use in deployment")
	cmd.Flags().BoolVar(&createOpts.deploy, "deploy", true,
		"Run the deployment phase; --deploy=false just generates the Vagrantfile")
	cmd.Flags().IntVar(&createOpts.cpus, "cpus", 0, "Number of virtual CPUs for the VMs")
	cmd.Flags().IntVar(&createOpts.ram, "ram", 0, "Amount of RAM for each VM in gigabytes")
	cmd.Flags().IntVar(&createOpts.diskSize, "disk-size", 0, "Size in gigabytes of storage disks (used by OSDs)")
	cmd.Flags().IntVar(&createOpts.numDisks, "num-disks", 0, "Number of storage disks in OSD nodes")
	cmd.Flags().BoolVar(&createOpts.singleNode, "single-node", false,
		"Deploy a single node cluster. Overrides --roles")
	cmd.Flags().StringArrayVar(&createOpts.repos, "repo", nil,
		"Zypper repo URL. The repo will be added to each node.")
}

func deepseaOptions(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&createOpts.deepseaCLI, "deepsea-cli", true, "Use deepsea-cli to execute DeepSea stages")
	cmd.Flags().BoolVar(&createOpts.saltRun, "salt-run", false, "Use salt-run to execute DeepSea stages")
	cmd.Flags().IntVar(&createOpts.stopBeforeStage, "stop-before-deepsea-stage", 0,
		"Allows to stop deployment before running the specified DeepSea stage")
	cmd.Flags().StringVar(&createOpts.deepseaRepo, "deepsea-repo", "", "DeepSea Git repo URL")
	cmd.Flags().StringVar(&createOpts.deepseaBranch, "deepsea-branch", "", "DeepSea Git branch")
}

func libvirtOptions(cmd *cobra.Command) {
	cmd.Flags().StringVar(&createOpts.libvirtHost, "libvirt-host", "", "Hostname of the libvirt machine")
	cmd.Flags().StringVar(&createOpts.libvirtUser, "libvirt-user", "", "Username for connecting to the libvirt machine")
	cmd.Flags().StringVar(&createOpts.libvirtStoragePool, "libvirt-storage-pool", "", "Libvirt storage pool")
}

func init() {
	trackCmds := []*cobra.Command{
		createSes5Cmd, createSes6Cmd, createSes7Cmd,
		createNautilusCmd, createOctopusCmd,
	}
	for _, cmd := range trackCmds {
		commonCreateOptions(cmd)
		deepseaOptions(cmd)
		libvirtOptions(cmd)
		createCmd.AddCommand(cmd)
	}
	createSes7Cmd.Flags().BoolVar(&createOpts.useDeepsea, "use-deepsea", false,
		"Use deepsea to deploy SES7 instead of the SSH orchestrator")
	createOctopusCmd.Flags().BoolVar(&createOpts.useDeepsea, "use-deepsea", false,
		"Use deepsea to deploy Ceph Octopus instead of the SSH orchestrator")

	rootCmd.AddCommand(createCmd)
}

// deploymentToolFor resolves the orchestration tool key for a track. ses7
// only uses deepsea on request; octopus always deploys with it.
func deploymentToolFor(version string, useDeepsea bool) string {
	switch {
	case version == "octopus":
		return "deepsea"
	case version == "ses7" && useDeepsea:
		return "deepsea"
	}
	return ""
}

func buildOverrides(cmd *cobra.Command, version string) settings.RawOverrides {
	deepseaCLI := createOpts.deepseaCLI && !createOpts.saltRun
	o := settings.RawOverrides{
		Roles:              createOpts.roles,
		OS:                 createOpts.os,
		NumDisks:           createOpts.numDisks,
		CPUs:               createOpts.cpus,
		RAM:                createOpts.ram,
		DiskSize:           createOpts.diskSize,
		SingleNode:         createOpts.singleNode,
		LibvirtHost:        createOpts.libvirtHost,
		LibvirtUser:        createOpts.libvirtUser,
		LibvirtStoragePool: createOpts.libvirtStoragePool,
		DeepseaCLI:         &deepseaCLI,
		DeepseaRepo:        createOpts.deepseaRepo,
		DeepseaBranch:      createOpts.deepseaBranch,
		Repos:              createOpts.repos,
		VagrantBox:         createOpts.vagrantBox,
		DeploymentTool:     deploymentToolFor(version, createOpts.useDeepsea),
	}
	if cmd.Flags().Changed("stop-before-deepsea-stage") {
		stage := createOpts.stopBeforeStage
		o.StopBeforeStage = &stage
	}
	return o
}

func runCreate(cmd *cobra.Command, version, id string) error {
	if createOpts.os != "" && !validOS(createOpts.os) {
		return fmt.Errorf("unknown OS %q, expected one of %v", createOpts.os, osChoices)
	}

	cfg, err := settings.Derive(version, buildOverrides(cmd, version))
	if err != nil {
		return err
	}

	if createOpts.deploy {
		verifyRequirements()
	}

	dep, err := deployment.Create(id, cfg)
	if err != nil {
		return err
	}

	fmt.Println("=== Creating deployment with the following configuration ===")
	fmt.Println(dep.Status())
	if !createOpts.deploy {
		return nil
	}

	if !command.YesNoPrompt("Do you want to continue with the deployment?", true) {
		return dep.Destroy(silentProgress)
	}

	if err := dep.Start(printProgress, ""); err != nil {
		return err
	}

	fmt.Println("=== Deployment Finished ===")
	fmt.Println()
	fmt.Println("You can login into the cluster with:")
	fmt.Println()
	fmt.Printf("  $ sesdev ssh %s\n", id)
	fmt.Println()
	if version == "ses5" {
		fmt.Println("Or, access openATTIC with:")
		fmt.Println()
		fmt.Printf("  $ sesdev tunnel %s openattic\n", id)
	} else {
		fmt.Println("Or, access the Ceph Dashboard with:")
		fmt.Println()
		fmt.Printf("  $ sesdev tunnel %s dashboard\n", id)
		fmt.Println()
	}
	return nil
}

func validOS(os string) bool {
	for _, choice := range osChoices {
		if os == choice {
			return true
		}
	}
	return false
}
