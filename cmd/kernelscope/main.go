// kernelscope — GPU kernel performance-analysis toolchain.
//
// Reads SASS disassembly, PTX-like IR, PC-sampled stall reports, and
// Nsight Compute metrics CSVs, and runs a registry of independent detectors
// over every kernel, producing structured JSON findings.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/detect"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/diff"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/inputs"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/observer"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/orchestrator"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/output"
)

var version = "0.1.0"

// noPath is the positional-arg sentinel for "this optional artifact role
// was not supplied" (§7: a missing optional input just joins less).
const noPath = "-"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the full command tree; split out from main so tests can
// exercise RunE without an os.Exit in the way.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kernelscope",
		Short: "GPU kernel performance-analysis toolchain",
		Long: `kernelscope — single Go binary for GPU kernel bottleneck analysis.

Reads SASS disassembly, PTX-like IR, PC-sampled warp-stall reports, and
Nsight Compute hardware-counter CSVs. Runs a registry of independent
detectors over every kernel (register spilling, warp divergence, global
atomics, deadlock candidates, vectorization/texture/shared/restrict
candidates, datatype conversions) and emits structured per-kernel JSON.

Positional args only, no flags: every analysis subcommand takes its
input-artifact paths (use "-" for an artifact that is not available),
then "<emit-json: true|false>" and "<output-dir>".`,
		Version: version,
	}

	var quiet bool
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	for _, name := range disasmAnalysisNames() {
		rootCmd.AddCommand(newDisasmAnalysisCmd(name, &quiet))
	}
	for _, name := range irAnalysisNames() {
		rootCmd.AddCommand(newIRAnalysisCmd(name, &quiet))
	}

	rootCmd.AddCommand(newDeadlockCmd(&quiet))
	rootCmd.AddCommand(newReportCmd(&quiet))
	rootCmd.AddCommand(newPreflightCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(mcpCmd)

	return rootCmd
}

func disasmAnalysisNames() []string {
	return []string{
		detect.NameDatatypeConversion,
		detect.NameRegisterSpilling,
		detect.NameWarpDivergence,
		detect.NameUseRestrict,
		detect.NameUseShared,
		detect.NameUseTexture,
		detect.NameVectorization,
	}
}

func irAnalysisNames() []string {
	return []string{detect.NameGlobalAtomics}
}

// newDisasmAnalysisCmd builds one subcommand for a disassembly-table
// detector: `<disassembly> <stall-report> <metrics-report> <emit-json> <output-dir>`.
func newDisasmAnalysisCmd(analysis string, quiet *bool) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <disassembly> <stall-report> <metrics-report> <emit-json> <output-dir>", analysis),
		Short: fmt.Sprintf("Run the %s detector over a disassembly stream", analysis),
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := inputs.Paths{
				inputs.Disassembly:   optionalPath(args[0]),
				inputs.StallReport:   optionalPath(args[1]),
				inputs.MetricsReport: optionalPath(args[2]),
			}
			return runSingleAnalysis(analysis, paths, args[3], args[4], *quiet)
		},
	}
}

// newIRAnalysisCmd builds one subcommand for an IR-table detector:
// `<ir> <stall-report> <metrics-report> <emit-json> <output-dir>`.
func newIRAnalysisCmd(analysis string, quiet *bool) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <ir> <stall-report> <metrics-report> <emit-json> <output-dir>", analysis),
		Short: fmt.Sprintf("Run the %s detector over an IR stream", analysis),
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := inputs.Paths{
				inputs.IR:            optionalPath(args[0]),
				inputs.StallReport:   optionalPath(args[1]),
				inputs.MetricsReport: optionalPath(args[2]),
			}
			return runSingleAnalysis(analysis, paths, args[3], args[4], *quiet)
		},
	}
}

// newDeadlockCmd: the deadlock verdict reads only disassembly and needs no
// join step, so its positional args are shorter than the other detectors'.
func newDeadlockCmd(quiet *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "deadlock <disassembly> <emit-json> <output-dir>",
		Short: "Run the atomic-CAS/predicated-branch/SYNC deadlock detector",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := inputs.Paths{inputs.Disassembly: optionalPath(args[0])}
			kernels, err := inputs.LoadKernels(paths)
			if err != nil {
				return err
			}
			orch := orchestrator.New(progressFor(*quiet))
			report := orch.RunDeadlock(kernels)
			return emit(args[1], args[2], func(outDir string) error {
				return output.WriteDeadlockReport(outDir, report)
			}, report)
		},
	}
}

// newReportCmd runs every registered analysis plus the deadlock detector in
// one invocation (§6.4's "report" command). With emit-json true it writes the
// per-analysis files, the deadlock file and a RunMetadata document carrying
// the load/analyze/emit stage timeline; otherwise it prints a one-line
// summary to stdout.
func newReportCmd(quiet *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "report <disassembly> <ir> <stall-report> <metrics-report> <emit-json> <output-dir>",
		Short: "Run every registered detector and the deadlock check in one pass",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := inputs.Paths{
				inputs.Disassembly:   optionalPath(args[0]),
				inputs.IR:            optionalPath(args[1]),
				inputs.StallReport:   optionalPath(args[2]),
				inputs.MetricsReport: optionalPath(args[3]),
			}
			emitJSON, err := strconv.ParseBool(args[4])
			if err != nil {
				return fmt.Errorf("emit-json: %w", err)
			}
			outDir := args[5]

			timeline := observer.NewTimeline()

			var kernels map[string]orchestrator.KernelInput
			timeline.Track("load", func() {
				kernels, err = inputs.LoadKernels(paths)
			})
			if err != nil {
				return err
			}

			orch := orchestrator.New(progressFor(*quiet))
			var result orchestrator.Result
			timeline.Track("analyze", func() {
				result = orch.Run(kernels)
			})

			meta := model.RunMetadata{
				Tool:          "kernelscope",
				SchemaVersion: "1",
				Timestamp:     time.Now().UTC().Format(time.RFC3339),
				KernelCount:   len(kernels),
				Stages:        timeline.Stages(),
			}

			if !emitJSON {
				fmt.Printf("analyzed %d kernels across %d analyses (%s)\n",
					meta.KernelCount, len(result.Analyses), timeline.Total().Round(time.Millisecond))
				return nil
			}

			var writeErr error
			timeline.Track("emit", func() {
				for analysis, report := range result.Analyses {
					if err := output.WriteAnalysisReport(outDir, analysis, report); err != nil {
						writeErr = err
						return
					}
				}
				writeErr = output.WriteDeadlockReport(outDir, result.Deadlocks)
			})
			if writeErr != nil {
				return writeErr
			}
			meta.Stages = timeline.Stages()
			return writeMetadata(outDir, meta)
		},
	}
}

// newPreflightCmd reports, per analysis kind, whether its inputs are
// present and readable (§7's non-fatal preflight, surfaced once up front).
func newPreflightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preflight <disassembly> <ir> <stall-report> <metrics-report> <emit-json> <output-dir>",
		Short: "Check which analyses can run given the available input artifacts",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := inputs.Paths{
				inputs.Disassembly:   optionalPath(args[0]),
				inputs.IR:            optionalPath(args[1]),
				inputs.StallReport:   optionalPath(args[2]),
				inputs.MetricsReport: optionalPath(args[3]),
			}
			report := inputs.Check(paths)
			return emit(args[4], args[5], func(outDir string) error {
				return writeJSONFile(outDir, "preflight.json", report)
			}, func() string {
				var out string
				for _, a := range report.Analyses {
					out += fmt.Sprintf("%-22s %-14s %s\n", a.Analysis, a.Availability, a.Reason)
				}
				return out
			}())
		},
	}
}

// newDiffCmd compares two runs of the same analysis kind's JSON output.
func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <analysis> <baseline.json> <current.json> <threshold-pct> <emit-json> <output-dir>",
		Short: "Compare two runs of the same analysis kind",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis := args[0]
			threshold, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("threshold-pct: %w", err)
			}

			baseline, err := diff.LoadAnalysisReport(args[1])
			if err != nil {
				return fmt.Errorf("load baseline: %w", err)
			}
			current, err := diff.LoadAnalysisReport(args[2])
			if err != nil {
				return fmt.Errorf("load current: %w", err)
			}

			report := diff.Compare(analysis, baseline, current, threshold)
			return emit(args[4], args[5], func(outDir string) error {
				return writeJSONFile(outDir, analysis+"-diff.json", report)
			}, diff.Format(report))
		},
	}
}

func optionalPath(arg string) string {
	if arg == noPath {
		return ""
	}
	return arg
}

func progressFor(quiet bool) *output.Progress {
	return output.NewProgress(!quiet)
}

// runSingleAnalysis is the shared body for every single-analysis
// subcommand: load inputs, run one detector over every kernel, emit.
func runSingleAnalysis(analysis string, paths inputs.Paths, emitJSONArg, outDir string, quiet bool) error {
	kernels, err := inputs.LoadKernels(paths)
	if err != nil {
		return err
	}
	orch := orchestrator.New(progressFor(quiet))
	report := orch.RunOne(kernels, analysis)
	return emit(emitJSONArg, outDir, func(dir string) error {
		return output.WriteAnalysisReport(dir, analysis, report)
	}, report)
}

// emit parses the emit-json positional arg and either writes JSON via
// writeFn or prints a human-readable textFallback to stdout.
func emit(emitJSONArg, outDir string, writeFn func(string) error, textFallback interface{}) error {
	emitJSON, err := strconv.ParseBool(emitJSONArg)
	if err != nil {
		return fmt.Errorf("emit-json: %w", err)
	}
	if !emitJSON {
		if s, ok := textFallback.(string); ok {
			fmt.Print(s)
		} else {
			fmt.Printf("%+v\n", textFallback)
		}
		return nil
	}
	return writeFn(outDir)
}

func writeJSONFile(outDir, name string, v interface{}) error {
	return output.WriteJSON(outDir, name, v)
}

func writeMetadata(outDir string, meta model.RunMetadata) error {
	return output.WriteJSON(outDir, "metadata.json", meta)
}
