package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootCmd is the CLI's entry point, exported so Execute (and the binary
// name used elsewhere) can be adjusted without touching subcommands.
var RootCmd = &cobra.Command{
	Use:   "sntpquery",
	Short: "Query an SNTP server and print the resulting clock offset",
}

var (
	verbose    bool
	configPath string
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults applied for any field it omits)")
}

// configureVerbosity sets the logrus level from the verbose flag. Must be
// called by every subcommand's Run before logging anything.
func configureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// Execute runs the CLI, exiting with status 1 on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
