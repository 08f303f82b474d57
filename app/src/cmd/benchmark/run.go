package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"dfd-gps-service/app/src/core"
	"dfd-gps-service/app/src/infra"
	"dfd-gps-service/app/src/report"
)

func runCmd() *cobra.Command {
	var flags scenarioFlags
	var outDir string
	var logLevel string

	c := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark and write histogram, CSV and summary artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scenario, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			logger := infra.NewLeveledLogger(cmd.ErrOrStderr(), "dfd-benchmark", logLevel)
			defer func() { _ = logger.Sync() }()

			bench, err := core.NewBenchmark(scenario, logger)
			if err != nil {
				return err
			}
			result, err := bench.Run(cmd.Context())
			if err != nil {
				return err
			}

			artifacts, err := report.WriteAll(outDir, result)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), result.Summary, artifacts)
			return nil
		},
	}

	flags.register(c)
	c.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for the generated artifacts")
	c.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	return c
}

func printSummary(w io.Writer, s core.BenchmarkSummary, a report.Artifacts) {
	fmt.Fprintf(w, "Samples:      %d (%d rejected)\n", s.Samples, s.Rejected)
	fmt.Fprintf(w, "Model:        %s / %s\n", s.TroposphereModel, s.MappingFunction)
	fmt.Fprintf(w, "RMSE naive:   %.3f m\n", s.RMSENaiveM)
	fmt.Fprintf(w, "RMSE DFD:     %.3f m\n", s.RMSECorrectedM)
	fmt.Fprintf(w, "Improvement:  %.1f %%\n", s.ImprovementPct)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Saved: %s, %s, %s\n", a.HistogramPath, a.ResultsPath, a.SummaryPath)
}
