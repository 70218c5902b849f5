package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the working copy with the remote",
}

var syncUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Stage, commit and push local changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.acquire(); err != nil {
			return err
		}
		defer a.release()

		message, _ := cmd.Flags().GetString("message")
		if !a.ctrl.SyncUp(cmd.Context(), message) {
			fmt.Println()
			return fmt.Errorf("sync up failed: %s", a.ctrl.Error())
		}
		fmt.Println("\n" + green("up to date"))
		return nil
	},
}

var syncDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Fetch and merge remote changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.acquire(); err != nil {
			return err
		}
		defer a.release()

		if !a.ctrl.SyncDown(cmd.Context()) {
			fmt.Println()
			if a.ctrl.GaveUp() {
				return fmt.Errorf("sync down failed: conflict resolution gave up")
			}
			return fmt.Errorf("sync down failed: %s", a.ctrl.Error())
		}
		fmt.Println("\n" + green("up to date"))
		return nil
	},
}

func init() {
	syncUpCmd.Flags().StringP("message", "m", "", "commit message (synthesized from changes when empty)")
	syncCmd.AddCommand(syncUpCmd, syncDownCmd)
}
