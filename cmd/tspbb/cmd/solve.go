package cmd

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tspbb/bnbtsp/bnb"
	"github.com/tspbb/bnbtsp/config"
	"github.com/tspbb/bnbtsp/coord"
	"github.com/tspbb/bnbtsp/distrib"
	"github.com/tspbb/bnbtsp/graph"
	"github.com/tspbb/bnbtsp/worker"
)

var (
	workers     int
	distributed bool
	peers       string
	rank        int
	runSeed     int64
)

func init() {
	rootCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "number of goroutines sharing the search (shared-memory mode)")
	rootCmd.Flags().BoolVar(&distributed, "distributed", false, "run as one rank of a distributed ring over TCP")
	rootCmd.Flags().StringVar(&peers, "peers", "", "comma-separated host:port list, one per rank (distributed mode)")
	rootCmd.Flags().IntVar(&rank, "rank", 0, "this process's rank within --peers (distributed mode)")
	rootCmd.Flags().Int64Var(&runSeed, "seed", 1, "seed for the deterministic donation-target RNG")
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ceiling := math.Inf(1)
	if len(args) == 2 {
		c, err := parseCeiling(args[1])
		if err != nil {
			return bnb.ErrBadArgs
		}
		ceiling = c
	}

	f, err := os.Open(args[0])
	if err != nil {
		logger.Error("opening input: %v", err)
		os.Exit(exitFor(bnb.ErrIoOpen))
	}
	defer f.Close()

	g, err := graph.Parse(f)
	if err != nil {
		logger.Error("parsing input: %v", err)
		os.Exit(exitFor(bnb.ErrIoParse))
	}

	tuning := cfg.ToTuning()

	var res bnb.TSResult
	var searchErr error
	start := time.Now()

	if distributed {
		res, searchErr = runDistributed(cmd, g, ceiling, tuning)
	} else {
		res, searchErr = runShared(cmd, g, ceiling, tuning)
	}

	logger.Debug("search finished in %s", time.Since(start))

	if errors.Is(searchErr, bnb.ErrNotElected) {
		logger.Debug("rank %d lost the cross-rank election; another rank reports the result", rank)
		return nil
	}
	if errors.Is(searchErr, bnb.ErrNoSolution) {
		fmt.Println("NO SOLUTION")
		return nil
	}
	if searchErr != nil {
		return searchErr
	}

	printTour(res)
	return nil
}

func runShared(cmd *cobra.Command, g *graph.Graph, ceiling float64, tuning bnb.Tuning) (bnb.TSResult, error) {
	pool := worker.NewPool(g, workers, ceiling, tuning, logger, runSeed)
	if err := pool.Run(cmd.Context()); err != nil {
		return bnb.TSResult{}, err
	}
	tour := pool.Best().Tour()
	if tour == nil {
		return bnb.TSResult{}, bnb.ErrNoSolution
	}
	stats := pool.Stats()
	logger.Info("expanded=%d pruned=%d donated=%d", stats.Expanded, stats.Pruned, stats.Donated)
	return bnb.TSResult{Tour: tour, Cost: pool.Best().Cost()}, nil
}

func runDistributed(cmd *cobra.Command, g *graph.Graph, ceiling float64, tuning bnb.Tuning) (bnb.TSResult, error) {
	if peers == "" {
		return bnb.TSResult{}, fmt.Errorf("%w: --distributed requires --peers", bnb.ErrBadArgs)
	}
	addrs := strings.Split(peers, ",")
	if rank < 0 || rank >= len(addrs) {
		return bnb.TSResult{}, fmt.Errorf("%w: --rank out of range for --peers", bnb.ErrBadArgs)
	}

	t, err := coord.DialTCPRing(addrs, rank)
	if err != nil {
		return bnb.TSResult{}, fmt.Errorf("dialing ring: %w", err)
	}
	defer t.Close()

	res, stats, err := distrib.RunRank(cmd.Context(), g, rank, len(addrs), t, ceiling, tuning, logger, runSeed)
	logger.Info("rank=%d expanded=%d pruned=%d donated=%d", rank, stats.Expanded, stats.Pruned, stats.Donated)
	return res, err
}

func parseCeiling(s string) (float64, error) {
	if strings.EqualFold(s, "inf") {
		return math.Inf(1), nil
	}
	c, err := strconv.ParseFloat(s, 64)
	if err != nil || c <= 0 {
		return 0, bnb.ErrBadArgs
	}
	return c, nil
}

func printTour(res bnb.TSResult) {
	fmt.Printf("%.1f\n", res.Cost)
	parts := make([]string, len(res.Tour))
	for i, c := range res.Tour {
		parts[i] = strconv.Itoa(c)
	}
	fmt.Println(strings.Join(parts, " "))
}

func exitFor(err error) int {
	switch {
	case errors.Is(err, bnb.ErrBadArgs):
		return 2
	case errors.Is(err, bnb.ErrIoOpen):
		return 3
	case errors.Is(err, bnb.ErrIoParse):
		return 4
	default:
		return 1
	}
}
