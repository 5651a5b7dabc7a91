// bqtool samples binary quadratic models through the preprocessing
// composites from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/annealkit/preprocessing/internal/logging"
	"github.com/annealkit/preprocessing/pkg/composites"
	"github.com/annealkit/preprocessing/pkg/config"
	"github.com/annealkit/preprocessing/pkg/core"
	"github.com/annealkit/preprocessing/pkg/solver"
)

type sampleFlags struct {
	problemPath         string
	samplerName         string
	scalar              float64
	biasRange           []float64
	quadraticRange      []float64
	ignoredVariables    []string
	ignoredInteractions []string
	ignoreOffset        bool
	defaultsPath        string
	profile             string
	numReads            int
	top                 int
	verbosity           int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bqtool",
		Short:        "Sample binary quadratic models through preprocessing composites",
		SilenceUsage: true,
	}
	root.AddCommand(newSampleCmd())
	return root
}

func newSampleCmd() *cobra.Command {
	flags := &sampleFlags{}

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Scale a problem, sample it, and print the corrected records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.problemPath, "problem", "", "path to the problem YAML file (required)")
	cmd.Flags().StringVar(&flags.samplerName, "sampler", "exact", "child sampler: exact or random")
	cmd.Flags().Float64Var(&flags.scalar, "scalar", 0, "explicit scale factor (overrides ranges)")
	cmd.Flags().Float64SliceVar(&flags.biasRange, "bias-range", nil, "target range for linear biases: one value (symmetric) or low,high")
	cmd.Flags().Float64SliceVar(&flags.quadraticRange, "quadratic-range", nil, "target range for quadratic biases")
	cmd.Flags().StringSliceVar(&flags.ignoredVariables, "ignored-variable", nil, "variable excluded from scaling (repeatable)")
	cmd.Flags().StringSliceVar(&flags.ignoredInteractions, "ignored-interaction", nil, "interaction excluded from scaling, as u,v pairs like a,b (repeatable)")
	cmd.Flags().BoolVar(&flags.ignoreOffset, "ignore-offset", false, "exclude the offset from scaling")
	cmd.Flags().StringVar(&flags.defaultsPath, "defaults", "", "path to a scaling defaults YAML file")
	cmd.Flags().StringVar(&flags.profile, "profile", config.GlobalDefaultsKey, "profile name within the defaults file")
	cmd.Flags().IntVar(&flags.numReads, "num-reads", 0, "number of reads for the random sampler")
	cmd.Flags().IntVar(&flags.top, "top", 10, "number of lowest-energy records to print")
	cmd.Flags().CountVarP(&flags.verbosity, "verbose", "v", "increase log verbosity")

	_ = cmd.MarkFlagRequired("problem")

	return cmd
}

func runSample(cmd *cobra.Command, flags *sampleFlags) error {
	logger, err := logging.NewLogger(flags.verbosity)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logging.SetLogger(logger)
	ctx := logr.NewContext(context.Background(), logger)

	bqm, err := loadProblem(flags.problemPath)
	if err != nil {
		return err
	}

	child, err := buildChild(flags.samplerName)
	if err != nil {
		return err
	}
	sampler, err := composites.NewScalingComposite(child)
	if err != nil {
		return err
	}

	params, err := buildParams(cmd, flags)
	if err != nil {
		return err
	}

	ss, err := sampler.Sample(ctx, bqm, params)
	if err != nil {
		return err
	}
	if err := ss.Resolve(); err != nil {
		return err
	}

	return printRecords(cmd.OutOrStdout(), bqm, ss, flags.top)
}

func buildChild(name string) (solver.Sampler, error) {
	switch name {
	case "exact":
		return solver.New(solver.ExactKind)
	case "random":
		return solver.New(solver.RandomKind)
	default:
		return nil, fmt.Errorf("unknown sampler %q (want exact or random)", name)
	}
}

func buildParams(cmd *cobra.Command, flags *sampleFlags) (solver.Params, error) {
	params := solver.Params{}

	if cmd.Flags().Changed("scalar") {
		params[composites.ParamScalar] = flags.scalar
	}
	if cmd.Flags().Changed("bias-range") {
		params[composites.ParamBiasRange] = flags.biasRange
	}
	if cmd.Flags().Changed("quadratic-range") {
		params[composites.ParamQuadraticRange] = flags.quadraticRange
	}
	if len(flags.ignoredVariables) != 0 {
		params[composites.ParamIgnoredVariables] = flags.ignoredVariables
	}
	if len(flags.ignoredInteractions) != 0 {
		inters := make([][]string, 0, len(flags.ignoredInteractions))
		for _, raw := range flags.ignoredInteractions {
			pair := strings.Split(raw, ",")
			if len(pair) != 2 {
				return nil, fmt.Errorf("ignored interaction %q must be a u,v pair", raw)
			}
			inters = append(inters, pair)
		}
		params[composites.ParamIgnoredInteractions] = inters
	}
	if flags.ignoreOffset {
		params[composites.ParamIgnoreOffset] = true
	}
	if flags.numReads > 0 {
		params["num_reads"] = flags.numReads
	}

	if flags.defaultsPath != "" {
		defaults, err := config.LoadScalingDefaults(flags.defaultsPath)
		if err != nil {
			return nil, err
		}
		defaults.ProfileConfig(flags.profile).ApplyTo(params)
	}

	return params, nil
}

func printRecords(w io.Writer, bqm *core.BQM, ss *core.SampleSet, top int) error {
	records, err := ss.Records()
	if err != nil {
		return err
	}
	info, err := ss.Info()
	if err != nil {
		return err
	}

	sorted := make([]core.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Energy < sorted[j].Energy })
	if top > 0 && len(sorted) > top {
		sorted = sorted[:top]
	}

	vars := bqm.Variables()
	fmt.Fprintf(w, "scalar: %v\n", info[composites.InfoScalar])
	fmt.Fprintf(w, "%-12s %s\n", "energy", strings.Join(vars, " "))
	for _, rec := range sorted {
		vals := make([]string, len(vars))
		for i, v := range vars {
			vals[i] = fmt.Sprintf("%d", rec.Sample[v])
		}
		fmt.Fprintf(w, "%-12.6g %s\n", rec.Energy, strings.Join(vals, " "))
	}
	return nil
}
