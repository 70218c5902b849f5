package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/edgarborja/SparkleShare/internal/gitsync"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending local changes and repository sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}

		res, err := a.repo.Run(cmd.Context(), "status", "--porcelain")
		if err != nil {
			return err
		}
		if !res.Ok() {
			return fmt.Errorf("status query failed")
		}

		changes := gitsync.ParseStatus(res.Stdout)
		if len(changes) == 0 {
			fmt.Println(green("nothing to sync"))
		} else {
			fmt.Println(gitsync.CommitMessage(changes))
		}

		s := a.ctrl.Sentinels()
		fmt.Printf("\nworking copy: %s, history: %s\n",
			humanize.Bytes(s.WorkingSize()), humanize.Bytes(s.HistorySize()))
		if s.HasUnsynced() {
			fmt.Println(cyan("local changes not yet pushed"))
		}
		return nil
	},
}
