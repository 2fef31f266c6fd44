package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sesdev/sesdev/pkg/action"
	"github.com/sesdev/sesdev/pkg/config"
)

var version = "0.1.0"

var (
	workPath   string
	configFile string
	debug      bool
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:     "sesdev [command]",
	Short:   "Create and manage SES cluster deployments on VMs.",
	Version: version,
	Long: `Welcome to the sesdev tool.

Usage example:

# Deployment of single node SES6 cluster:

  $ sesdev create ses6 --single-node my_ses6_cluster

# Deployment of an Octopus cluster where each storage node contains
# 4 10G disks for OSDs:

  $ sesdev create octopus --roles="[admin, mon, mgr],[storage, mon, mgr, mds],[storage, mon, mds]" \
      --num-disks=4 --disk-size=10 my_octopus_cluster
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
		config.Initialise(configFile)
		if workPath != "" {
			log.WithField("work-path", workPath).Info("working path override")
			config.C.WorkPath = workPath
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Usage()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workPath, "work-path", "w", "", "Filesystem path to store deployments")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config-file", "c", "", "Configuration file location")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to the given file")
}

func setupLogging() {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "unable to open log file:", err)
			os.Exit(1)
		}
		log.SetOutput(f)
		log.SetLevel(log.InfoLevel)
	} else {
		// Keep the console quiet unless something went wrong.
		log.SetLevel(log.ErrorLevel)
	}
	if debug {
		log.SetLevel(log.DebugLevel)
	}
}

// verifyRequirements checks the binaries the deployment engine shells out
// to before any engine operation runs.
func verifyRequirements() {
	log.Debug("checking if binaries exist")
	chain := &action.Chain{
		ErrorMsg: "some requirements were not met; please review above",
	}
	chain = chain.Add(action.BinaryExists{Bin: "vagrant"})
	chain.Run()
}

func printProgress(chunk string) {
	fmt.Print(chunk)
}

func silentProgress(string) {}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
