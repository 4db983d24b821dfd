// cmd/mpptreader/ports.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/tamzrod/mppt-reader/internal/telemetry"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ports, err := serial.GetPortsList()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List recordable variable names",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, n := range telemetry.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(varsCmd)
}
