package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/monitor"
)

func NewRunCommand() *cobra.Command {
	var load float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scale controller against simulated hardware",
		Long: `Run the scale controller against a simulated load cell, buttons, lamps and
16x2 display. The display is redrawn in the terminal whenever it changes.

` + inputHelp,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("load") {
				cfg.Simulation.Load = load
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sim := monitor.NewMock(cfg, logrus.WithField("component", "sim"))
			if err := sim.Connect(); err != nil {
				return err
			}
			defer sim.Close()

			return runPanel(ctx, sim)
		},
	}

	cmd.Flags().Float64Var(&load, "load", 0, "initial load on the pan (g)")

	return cmd
}

func runPanel(ctx context.Context, sim *monitor.Mock) error {
	out := os.Stdout
	fmt.Fprintln(out, color.New(color.Bold).Sprint(inputHelp))

	actions := readActions(ctx, os.Stdin, func(err error) {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
	})

	var last panelView
	statuses := sim.Statuses()
	for {
		select {
		case <-ctx.Done():
			return nil

		case st, ok := <-statuses:
			if !ok {
				return nil
			}
			view := viewOf(sim.Panel())
			if view != last {
				fmt.Fprintln(out, formatStatus(st))
				view.render(out)
				last = view
			}

		case a, ok := <-actions:
			if !ok {
				// stdin closed, keep running until interrupted
				actions = nil
				continue
			}
			switch a.kind {
			case actionQuit:
				return nil
			case actionTare:
				err := sim.Send(link.CommandTare)
				if err != nil {
					return err
				}
			case actionReset:
				err := sim.Send(link.CommandReset)
				if err != nil {
					return err
				}
			case actionLoad:
				sim.SetLoad(a.grams)
				fmt.Fprintf(out, "load set to %.1f g\n", a.grams)
			}
		}
	}
}
