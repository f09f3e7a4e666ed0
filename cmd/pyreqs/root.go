package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/pyreqs/internal/config"
)

type rootFlags struct {
	file        string
	verbose     bool
	jsonLogs    bool
	logFile     string
	metricsFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "pyreqs",
		Short:         "pyreqs checks and installs the Python packages a project declares",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.file, "file", "f", config.DefaultFileName, "Path to the requirements file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.jsonLogs, "log-json", false, "Write logs as JSON instead of console text")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Append logs to this file instead of stderr")
	cmd.PersistentFlags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile when the command ends")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newInstallCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
