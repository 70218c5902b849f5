package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgarborja/SparkleShare/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoDir, _ := cmd.Flags().GetString("repo")
		if repoDir == "" {
			repoDir = config.DefaultRepoDir
		}
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		encrypted, _ := cmd.Flags().GetBool("encrypted")
		path, _ := cmd.Flags().GetString("config")

		cfg := &config.Config{
			RepoDir:   repoDir,
			Name:      name,
			Email:     email,
			Encrypted: encrypted,
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Println(green("config written"), path)
		return nil
	},
}

func init() {
	setupCmd.Flags().String("name", "", "commit author name")
	setupCmd.Flags().String("email", "", "commit author email")
	setupCmd.Flags().Bool("encrypted", false, "repository content is encrypted at rest")
	_ = setupCmd.MarkFlagRequired("name")
	_ = setupCmd.MarkFlagRequired("email")
}
