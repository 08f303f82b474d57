package main

import (
	"github.com/spf13/cobra"

	"dfd-gps-service/app/src/core"
)

// scenarioFlags are the overrides shared by the run and scenario commands.
type scenarioFlags struct {
	path            string
	samples         int
	seed            uint64
	workers         int
	batchSize       int
	tropoModel      string
	mappingFunction string
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "scenario", "s", "", "YAML scenario file (optional; defaults to the built-in demo)")
	cmd.Flags().IntVarP(&f.samples, "samples", "n", 0, "Number of synthetic samples")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Worker goroutines")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Samples per generator batch")
	cmd.Flags().StringVar(&f.tropoModel, "tropo-model", "", "Troposphere model: saastamoinen|hopfield")
	cmd.Flags().StringVar(&f.mappingFunction, "mapping-function", "", "Mapping function: simple|niell")
}

// resolve loads the scenario file (or the default) and applies the flags the
// user actually set.
func (f *scenarioFlags) resolve(cmd *cobra.Command) (core.Scenario, error) {
	s := core.DefaultScenario()
	if f.path != "" {
		loaded, err := core.LoadScenario(f.path)
		if err != nil {
			return core.Scenario{}, err
		}
		s = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("samples") {
		s.Samples = f.samples
	}
	if flags.Changed("seed") {
		s.Seed = f.seed
	}
	if flags.Changed("workers") {
		s.Workers = f.workers
	}
	if flags.Changed("batch-size") {
		s.BatchSize = f.batchSize
	}
	if flags.Changed("tropo-model") {
		s.TroposphereModel = f.tropoModel
	}
	if flags.Changed("mapping-function") {
		s.MappingFunction = f.mappingFunction
	}

	if err := s.Validate(); err != nil {
		return core.Scenario{}, err
	}
	return s, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dfd-benchmark",
		Short:        "Offline benchmark of the DFD range correction on synthetic GPS measurements",
		SilenceUsage: true,
	}
	cmd.AddCommand(runCmd(), scenarioCmd())
	return cmd
}
