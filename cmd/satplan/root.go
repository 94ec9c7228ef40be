package main

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/duncaneddy/SATPLAN/internal/logging"
)

const envPrefix = "SATPLAN"

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "satplan",
		Short:         "Generate Walker Delta constellation benchmark datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadDotEnv(".env")
		},
	}

	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	root.PersistentFlags().String("log-format", "", "log format: text or json (default from LOG_FORMAT)")
	_ = v.BindPFlags(root.PersistentFlags())

	root.AddCommand(newGenerateCmd(v))
	return root
}

// loadDotEnv loads path into the process environment if it exists.
// Variables already set take precedence.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func loggerFor(cmd *cobra.Command, v *viper.Viper) logging.Logger {
	cfg := logging.ConfigFromEnv()
	if level := v.GetString("log-level"); level != "" {
		cfg.Level = level
	}
	if format := v.GetString("log-format"); format != "" {
		cfg.Format = format
	}
	cfg.Output = cmd.OutOrStdout()
	return logging.New(cfg)
}
