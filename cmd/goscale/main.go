package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itohio/goscale/pkg/config"
)

var (
	logLevel   = "info"
	configPath = "goscale.yaml"
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if !color.NoColor {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.StampMilli,
		})
	}

	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logrus.WithField("path", configPath).Debug("configuration loaded")
	return cfg, nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goscale",
		Short: "goscale drives and monitors a two-point calibrated weighing scale",
		Long: `goscale drives and monitors a two-point calibrated weighing scale.

Run the controller against simulated hardware, watch the status lines a
flashed board prints over USB serial, or write a default configuration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")

	cmd.AddCommand(
		NewRunCommand(),
		NewMonitorCommand(),
		NewPortsCommand(),
		NewConfigCommand(),
	)

	return cmd
}
