package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cmem/internal/memory"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <image.mp>",
	Short: "Print the region table of a saved address-space image",
	Long:  `Loads an address-space image written by run --snapshot-dir and prints its region table: base, size, kind, liveness and leading bytes.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		sp, ok, err := memory.LoadSnapshot(path, nil)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no image at %s", path)
		}
		fmt.Fprint(cmd.OutOrStdout(), sp.DumpString())
		return nil
	},
}
