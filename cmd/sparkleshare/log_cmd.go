package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgarborja/SparkleShare/internal/gitsync"
)

var logCmd = &cobra.Command{
	Use:   "log [path]",
	Short: "Show grouped history, or a single file's revisions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}

		var sets []gitsync.ChangeSet
		if len(args) == 1 {
			sets, err = a.history.ChangeSetsForPath(cmd.Context(), args[0])
		} else {
			sets, err = a.history.ChangeSets(cmd.Context())
		}
		if err != nil {
			return err
		}

		for _, set := range sets {
			when := set.Timestamp.Format("2006-01-02 15:04")
			if !set.FirstTimestamp.IsZero() {
				when = set.FirstTimestamp.Format("2006-01-02 15:04") + " .. " + when
			}
			fmt.Printf("%s  %s  %s\n", cyan(shortRev(set.Revision)), when, set.User.Name)
			for _, c := range set.Changes {
				if c.Type == gitsync.ChangeMoved {
					fmt.Printf("  %-7s %s -> %s\n", c.Type, c.Path, c.MovedToPath)
				} else {
					fmt.Printf("  %-7s %s\n", c.Type, c.Path)
				}
			}
		}
		return nil
	},
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
