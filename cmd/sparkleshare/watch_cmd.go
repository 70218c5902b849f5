package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edgarborja/SparkleShare/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the working copy and mark local changes as unsynced",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}

		sentinels := a.ctrl.Sentinels()
		w := watcher.New(a.repo.WorkDir(), func(relPath string) {
			if err := sentinels.SetUnsynced(); err != nil {
				slog.Warn("unsynced marker", "error", err)
			}
		})

		if err := w.Start(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(cyan("watching"), a.repo.WorkDir())

		<-cmd.Context().Done()
		w.Wait()
		return nil
	},
}
