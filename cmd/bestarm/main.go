package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spachava753/bestarm/internal/config"
	"github.com/spachava753/bestarm/internal/executor"
	"github.com/spachava753/bestarm/internal/report"
	"github.com/spachava753/bestarm/internal/suite"
)

func main() {
	// Setup context with manual signal handling
	ctx, cancel := context.WithCancel(context.Background())

	// Listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	defer func() {
		signal.Stop(sigChan)
		cancel()
	}()

	go func() {
		sig := <-sigChan
		slog.Info("interrupt received, shutting down gracefully...", "signal", sig)
		cancel()
	}()

	root := &cobra.Command{
		Use:           "bestarm",
		Short:         "Sequential best-arm-identification experiment harness",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), suiteCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <experiment.yaml>",
		Short: "Execute one experiment batch and print a per-policy summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadExperimentConfig(args[0])
			if err != nil {
				return fmt.Errorf("loading experiment config: %w", err)
			}
			setupLogging(cfg.LogLevel)

			orchestrator, err := executor.NewBatchOrchestrator(cfg, executor.DefaultRunExecutorFunc)
			if err != nil {
				return fmt.Errorf("creating orchestrator: %w", err)
			}

			batch, err := orchestrator.Run(cmd.Context())
			if err != nil {
				return err
			}

			printSummary(report.Build(batch))

			if len(batch.Failures) > 0 || batch.Cancelled {
				os.Exit(1)
			}
			return nil
		},
	}
}

func suiteCmd() *cobra.Command {
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "suite <suite.toml>",
		Short: "Execute every scenario of a suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading suite config: %w", err)
			}
			setupLogging(s.Scenarios[0].Config.LogLevel)

			result, err := suite.Run(cmd.Context(), s, resultsDir, executor.DefaultRunExecutorFunc)
			if err != nil {
				return err
			}

			fmt.Printf("\nSuite: %s\n", result.SuiteName)
			failed := false
			for _, sc := range result.Scenarios {
				fmt.Printf("  %-24s completed=%d failed=%d skipped=%d\n",
					sc.Name, sc.CompletedRuns, sc.FailedRuns, sc.SkippedRuns)
				if sc.FailedRuns > 0 || sc.Cancelled {
					failed = true
				}
			}
			fmt.Printf("Duration: %.2fs\n", result.EndedAt.Sub(result.StartedAt).Seconds())

			if failed || len(result.Scenarios) < len(s.Scenarios) {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&resultsDir, "results-dir", "results", "directory to write suite results under")
	return cmd
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func printSummary(rep *report.BatchReport) {
	fmt.Printf("\nBatch: %s\n", rep.Name)
	fmt.Printf("True means: %v (best arm %d, gap %.3f)\n", rep.Truth.TrueMeans, rep.Truth.BestArm, rep.Truth.Gap)
	fmt.Printf("%-30s %6s %8s %9s %12s %13s\n", "policy", "runs", "stopped", "correct", "stop-steps", "final-regret")
	for _, ps := range rep.Policies {
		stopSteps := "-"
		if ps.MeanStepsToStop != nil {
			stopSteps = fmt.Sprintf("%.1f", *ps.MeanStepsToStop)
		}
		fmt.Printf("%-30s %6d %7.0f%% %8.0f%% %12s %13.3f\n",
			ps.Policy, ps.Runs, ps.StoppedFraction*100, ps.CorrectRate*100, stopSteps, ps.MeanFinalRegret)
		if ps.Failures > 0 {
			fmt.Printf("%-30s   %d failed run(s)\n", "", ps.Failures)
		}
	}
}
