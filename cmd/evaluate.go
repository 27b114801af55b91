package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mwheeler/gridsim/app"
	"github.com/mwheeler/gridsim/config"
)

var capList string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a scenario against its cost tables and planning limits",
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&capList, "capacities", "",
		"comma-separated capacities in GW, applied to the fleet's setters in order")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
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

	if capList != "" {
		caps, err := parseCapacities(capList)
		if err != nil {
			return err
		}
		if err := svc.Sim.SetCapacities(caps); err != nil {
			return err
		}
	}

	res, err := svc.Evaluate()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "score: %.6f $B\n", res.Score)
	fmt.Fprintf(out, "penalty: %.6f $B\n", res.Penalty)
	if res.Reasons != 0 {
		fmt.Fprintf(out, "violations: %s\n", res.Reasons)
	}
	fmt.Fprintf(out, "unserved: %.4f%%\n", res.UnservedPercent)
	return nil
}

func parseCapacities(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	caps := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid capacity %q: %w", p, err)
		}
		caps = append(caps, v)
	}
	return caps, nil
}
