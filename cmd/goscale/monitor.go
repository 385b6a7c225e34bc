package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/monitor"
)

func NewMonitorCommand() *cobra.Command {
	var (
		port     string
		baudRate int
		mock     bool
		raw      bool
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print status lines from a scale",
		Long: `Print the status lines a flashed scale writes over USB serial after every
loop iteration. Typing t or r sends a tare press or a reset to the board.

With --mock the simulated scale is monitored instead of a serial port.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Serial.Port
			}
			if baudRate == 0 {
				baudRate = cfg.Serial.BaudRate
			}

			var dev monitor.Device
			if mock {
				dev = monitor.NewMock(cfg, logrus.WithField("component", "mock"))
			} else {
				dev = monitor.NewSerial(port, baudRate, monitor.DefaultBufferSize)
			}
			if err := dev.Connect(); err != nil {
				return err
			}
			defer dev.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			actions := readActions(ctx, os.Stdin, func(err error) {
				fmt.Fprintln(os.Stderr, color.RedString("%v", err))
			})

			statuses := dev.Statuses()
			for {
				select {
				case <-ctx.Done():
					return nil
				case st, ok := <-statuses:
					if !ok {
						return nil
					}
					if raw {
						fmt.Println(link.FormatStatus(st))
					} else {
						fmt.Println(formatStatus(st))
					}
				case a, ok := <-actions:
					if !ok {
						actions = nil
						continue
					}
					switch a.kind {
					case actionQuit:
						return nil
					case actionTare:
						if err := dev.Send(link.CommandTare); err != nil {
							logrus.WithError(err).Error("failed to send tare")
						}
					case actionReset:
						if err := dev.Send(link.CommandReset); err != nil {
							logrus.WithError(err).Error("failed to send reset")
						}
					case actionLoad:
						logrus.Warn("load can only be changed on a simulated scale, use the run command")
					}
				}
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&port, "port", "p", "", "serial port (default from config)")
	flags.IntVarP(&baudRate, "baud", "b", 0, "baud rate (default from config)")
	flags.BoolVar(&mock, "mock", false, "monitor the simulated scale")
	flags.BoolVar(&raw, "raw", false, "print status lines exactly as received")

	return cmd
}

func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		RunE: func(_ *cobra.Command, _ []string) error {
			ports, err := monitor.Ports()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Println("no serial ports found")
				return nil
			}
			for _, p := range ports {
				fmt.Println(p.Name)
			}
			return nil
		},
	}
}
