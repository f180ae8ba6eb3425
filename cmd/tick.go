package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"taximarket/core/broker"
	"taximarket/infra/logger"
	"taximarket/simulator"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a tiny hand-built market for a few ticks",
	RunE:  runTicks,
}

var tickCount int

func init() {
	tickCmd.Flags().IntVar(&tickCount, "ticks", 10, "number of ticks to run")
	rootCmd.AddCommand(tickCmd)
}

// runTicks drives a minimal 3x3 world with one taxi, useful to eyeball the
// pricing and allocation pipeline without a config file.
func runTicks(cmd *cobra.Command, args []string) error {
	log := logger.New("tick-command")
	cfg := simulator.Config{GridWidth: 3, GridHeight: 3, Taxis: 1, FareRate: 0.5, FarePatience: 10, Seed: 1}
	world := simulator.NewWorld(cfg, log)
	brk, err := broker.New(world, broker.PayoutRate{}, log, nil, nil)
	if err != nil {
		return err
	}
	world.Attach(brk)
	if err := brk.ImportMap(world.MapNodes()); err != nil {
		return err
	}
	for _, t := range world.GenerateFleet(cfg.Taxis) {
		brk.AddTaxi(t)
	}
	sum := world.Run(context.Background(), tickCount)
	log.Infof("ticks=%d requested=%d completed=%d revenue=%.2f",
		sum.Ticks, sum.FaresRequested, sum.FaresCompleted, sum.Revenue)
	return nil
}
