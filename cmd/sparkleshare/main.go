package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgarborja/SparkleShare/internal/config"
	"github.com/edgarborja/SparkleShare/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "sparkleshare",
	Short:         "SparkleShare repository synchronization",
	Version:       version.Detailed(),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "config file")
	rootCmd.PersistentFlags().StringP("repo", "r", "", "working copy directory (overrides config)")
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging")

	rootCmd.AddCommand(setupCmd, syncCmd, statusCmd, logCmd, restoreCmd, watchCmd)
}

func main() {
	level := slog.LevelInfo
	for _, arg := range os.Args[1:] {
		if arg == "--verbose" {
			level = slog.LevelDebug
		}
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		path, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigFile(config.DefaultConfigPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("repo_dir", cmd.Flags().Lookup("repo"))

	viper.SetEnvPrefix("SPARKLE")
	viper.AutomaticEnv()

	if viper.GetString("repo_dir") == "" {
		viper.SetDefault("repo_dir", config.DefaultRepoDir)
	}
	return nil
}

func currentConfig() (*config.Config, error) {
	cfg := &config.Config{
		Path:      viper.ConfigFileUsed(),
		RepoDir:   viper.GetString("repo_dir"),
		Name:      viper.GetString("name"),
		Email:     viper.GetString("email"),
		Encrypted: viper.GetBool("encrypted"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
