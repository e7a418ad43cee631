// Package main is the sectorsim command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "sectorsim",
	Short:        "Sector plane movement simulator",
	Long:         `sectorsim plays scripted YAML levels through the sector movement engine and reports the resulting plane heights.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(specialsCmd)
	rootCmd.AddCommand(inspectCmd)
}
