// Package commands implements CLI command handlers for tcompare.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nukestat/tcompare/internal/config"
	"github.com/nukestat/tcompare/internal/plot"
	"github.com/nukestat/tcompare/internal/report"
	"github.com/nukestat/tcompare/internal/sampleio"
	"github.com/nukestat/tcompare/internal/ttest"
)

type sampleLoader func(path string, opts sampleio.Options) (ttest.SampleSet, error)

type batchRunner func(sample1, sample2 ttest.SampleSet, cfg ttest.Config) (*ttest.Report, error)

type plotRenderer func(kind, path string, rep *ttest.Report, alpha float64, rejectOnly bool) error

// RunCommand holds configuration and dependencies for the run command.
type RunCommand struct {
	configPath  string
	alpha       float64
	discrepancy float64
	skip        bool
	verbose     int
	format      string
	inputFormat string
	defaultN    int
	plotKind    string
	plotOutput  string
	fullRange   bool
	noColor     bool

	load       sampleLoader
	runBatch   batchRunner
	renderPlot plotRenderer
}

// NewRunCommand creates the run command wired to the real engine.
func NewRunCommand() *cobra.Command {
	return newRunCommandWithDeps(sampleio.Load, ttest.New().Run, plot.Render)
}

func newRunCommandWithDeps(load sampleLoader, runBatch batchRunner, renderPlot plotRenderer) *cobra.Command {
	rc := &RunCommand{
		load:       load,
		runBatch:   runBatch,
		renderPlot: renderPlot,
	}

	cmd := &cobra.Command{
		Use:   "run <sample_1> <sample_2>",
		Short: "Compare two sample files with a two-sample t-test",
		Long: "Run an unpaired, equal-variance two-sample t-test for every key shared\n" +
			"by the two sample files and report which keys reject the null hypothesis.",
		Args: cobra.ExactArgs(2),
		RunE: rc.run,
	}

	cmd.Flags().StringVar(&rc.configPath, "config", "", "Config file path (default: .tcompare.yaml in CWD or $HOME)")
	cmd.Flags().Float64VarP(&rc.alpha, "alpha", "a", config.DefaultAlpha, "Significance level, in (0, 1)")
	cmd.Flags().Float64VarP(&rc.discrepancy, "discrepancy", "d", config.DefaultDiscrepancy,
		"Hypothesized difference (mean_1 - mean_2) under the null hypothesis")
	cmd.Flags().BoolVarP(&rc.skip, "skip", "s", config.DefaultSkip,
		"Skip keys present in only one file instead of failing")
	cmd.Flags().IntVarP(&rc.verbose, "verbose", "v", config.DefaultVerbose,
		"Verbosity: 0 silent, 1 counts, 2 per-case tables")
	cmd.Flags().StringVar(&rc.format, "format", config.DefaultFormat, "Output format: text, json, yaml")
	cmd.Flags().StringVar(&rc.inputFormat, "input-format", config.DefaultInputFormat,
		"Input format: auto, columnar, json, meshtal")
	cmd.Flags().IntVar(&rc.defaultN, "default-n", config.DefaultSampleCount,
		"Sample size for records that do not carry one")
	cmd.Flags().Float64("energy-bin", 0, "Mesh-tally energy bin to select (meshtal input only)")
	cmd.Flags().Float64("z-plane", 0, "Mesh-tally z-plane to select (meshtal input only)")
	cmd.Flags().StringVarP(&rc.plotKind, "plot", "p", config.DefaultPlotKind,
		"Write an HTML plot of this kind: histogram, heatmap")
	cmd.Flags().StringVar(&rc.plotOutput, "plot-output", config.DefaultPlotOutput, "Plot output file path")
	cmd.Flags().BoolVar(&rc.fullRange, "full-range", false,
		"Heatmap over the full p-value range instead of rejected cells only")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored summary output")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return err
	}

	rc.applyOverrides(cmd, cfg)

	logger := newLogger(cmd, cfg.Verbose)

	opts := sampleio.Options{
		Format:   cfg.Input.Format,
		DefaultN: cfg.Input.DefaultN,
		Mesh:     cfg.Input.MeshFilter(),
	}

	sample1, err := rc.load(args[0], opts)
	if err != nil {
		return fmt.Errorf("sample_1 %s: %w", args[0], err)
	}

	sample2, err := rc.load(args[1], opts)
	if err != nil {
		return fmt.Errorf("sample_2 %s: %w", args[1], err)
	}

	logger.Debug("samples loaded",
		slog.String("sample_1", args[0]), slog.Int("keys_1", len(sample1)),
		slog.String("sample_2", args[1]), slog.Int("keys_2", len(sample2)))

	testCfg := ttest.Config{Alpha: cfg.Alpha, Discrepancy: cfg.Discrepancy, Skip: cfg.Skip}

	rep, err := rc.runBatch(sample1, sample2, testCfg)
	if err != nil {
		return err
	}

	logger.Debug("batch complete",
		slog.Int("results", len(rep.Results)),
		slog.Int("skipped", len(rep.Skipped)),
		slog.Int("failures", len(rep.Failures)))

	reportOpts := report.Options{Verbose: cfg.Verbose, NoColor: rc.noColor}

	err = report.Write(cmd.OutOrStdout(), cfg.Format, rep, testCfg, reportOpts)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("plot") {
		return nil
	}

	err = rc.renderPlot(cfg.Plot.Kind, cfg.Plot.Output, rep, cfg.Alpha, cfg.Plot.RejectOnly)
	if err != nil {
		return err
	}

	if cfg.Verbose >= report.VerbosityCounts {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "results plotted as %s in %s\n", cfg.Plot.Kind, cfg.Plot.Output)
	}

	return nil
}

// applyOverrides copies flag values over the loaded config, but only for
// flags the user actually set. Unset flags leave file and environment values
// in place.
func (rc *RunCommand) applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("alpha") {
		cfg.Alpha = rc.alpha
	}

	if flags.Changed("discrepancy") {
		cfg.Discrepancy = rc.discrepancy
	}

	if flags.Changed("skip") {
		cfg.Skip = rc.skip
	}

	if flags.Changed("verbose") {
		cfg.Verbose = rc.verbose
	}

	if flags.Changed("format") {
		cfg.Format = rc.format
	}

	if flags.Changed("input-format") {
		cfg.Input.Format = rc.inputFormat
	}

	if flags.Changed("default-n") {
		cfg.Input.DefaultN = rc.defaultN
	}

	if flags.Changed("energy-bin") {
		v, err := flags.GetFloat64("energy-bin")
		if err == nil {
			cfg.Input.Mesh.EnergyBin = &v
		}
	}

	if flags.Changed("z-plane") {
		v, err := flags.GetFloat64("z-plane")
		if err == nil {
			cfg.Input.Mesh.ZPlane = &v
		}
	}

	if flags.Changed("plot") {
		cfg.Plot.Kind = rc.plotKind
	}

	if flags.Changed("plot-output") {
		cfg.Plot.Output = rc.plotOutput
	}

	if flags.Changed("full-range") {
		cfg.Plot.RejectOnly = !rc.fullRange
	}
}

// newLogger builds the diagnostics logger. Debug records are emitted only at
// detail verbosity; diagnostics always go to stderr so machine output on
// stdout stays clean.
func newLogger(cmd *cobra.Command, verbose int) *slog.Logger {
	level := slog.LevelInfo
	if verbose >= report.VerbosityDetail {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
