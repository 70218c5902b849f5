package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <path> <revision> <destination>",
	Short: "Copy a file's historical content to a destination",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.acquire(); err != nil {
			return err
		}
		defer a.release()

		if err := a.ctrl.RestoreFile(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("%s %s@%s -> %s\n", green("restored"), args[0], shortRev(args[1]), args[2])
		return nil
	},
}
