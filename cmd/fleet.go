package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mwheeler/gridsim/app"
	"github.com/mwheeler/gridsim/config"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the configured fleet in merit order",
	RunE:  runFleetLs,
}

var fleetSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Run the scenario and print per-generator statistics",
	RunE:  runFleetSummary,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	fleetCmd.AddCommand(fleetSummaryCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = svc.Close()
	}()
	for _, g := range svc.Sim.Generators {
		fmt.Fprintln(cmd.OutOrStdout(), g)
	}
	return nil
}

func runFleetSummary(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = svc.Close()
	}()
	if err := svc.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), svc.Sim.FleetSummary())
	return nil
}
