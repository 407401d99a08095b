// Package orchestrator runs every detector against every kernel and joins
// stalls/pressure/metrics onto the resulting findings (§5).
package orchestrator

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/detect"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/join"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/lexer"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/output"
)

// KernelInput bundles every per-kernel artifact a detector or the join
// phase needs: the disassembly table every detector reads, the IR table the
// atomics detector reads instead, and the three optional correlation
// sources (§4.8) that may be entirely absent for a given run.
type KernelInput struct {
	Kernel   string
	Disasm   model.KernelTables
	IR       *lexer.IRKernel
	Stalls   []model.StallSample
	LiveRegs map[string]model.LiveRegRecord
	Metrics  *model.MetricRecord
}

// Result is the full multi-analysis output of one Run: every analysis
// kind's per-kernel report plus the deadlock verdicts.
type Result struct {
	Analyses  map[string]model.AnalysisReport
	Deadlocks model.DeadlockReport
}

// Orchestrator runs detectors concurrently, bounded by a worker pool sized
// to GOMAXPROCS, directly adapted from teacher's Orchestrator (sync.WaitGroup
// + mutex around a shared results map, sorted afterward for determinism).
type Orchestrator struct {
	progress *output.Progress
	workers  int
}

// New creates an Orchestrator. A nil progress disables logging.
func New(progress *output.Progress) *Orchestrator {
	if progress == nil {
		progress = output.NewProgress(false)
	}
	return &Orchestrator{progress: progress, workers: runtime.GOMAXPROCS(0)}
}

// Run executes every registered detector against every kernel (§5: "each
// detector is a pure function of immutable input tables") and returns every
// analysis kind's report plus the deadlock verdicts.
func (o *Orchestrator) Run(kernels map[string]KernelInput) Result {
	analyses := analysisNames()
	o.progress.Log("Starting analysis: kernels=%d, analyses=%d", len(kernels), len(analyses))

	reports := make(map[string]model.AnalysisReport, len(analyses))
	for _, analysis := range analyses {
		start := time.Now()
		reports[analysis] = o.RunOne(kernels, analysis)
		o.progress.Log("  [%s] done (%s)", analysis, time.Since(start).Round(time.Millisecond))
	}

	deadlocks := o.RunDeadlock(kernels)
	o.progress.Log("Analysis complete. %d kernels, %d analyses", len(kernels), len(analyses))

	return Result{Analyses: reports, Deadlocks: deadlocks}
}

// RunOne runs a single analysis kind over every kernel concurrently, one
// goroutine per kernel bounded by the worker pool, joining stalls/
// pressure/metrics (§4.8) and the kernel-level rollup onto each report
// before returning. Used both by Run and by the CLI's single-analysis
// subcommands (§6.4).
func (o *Orchestrator) RunOne(kernels map[string]KernelInput, analysis string) model.AnalysisReport {
	report := make(model.AnalysisReport, len(kernels))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, o.workers)
	)

	for kernelName, in := range kernels {
		wg.Add(1)
		sem <- struct{}{}
		go func(kernelName string, in KernelInput) {
			defer wg.Done()
			defer func() { <-sem }()

			findings := runDetector(analysis, in)
			join.Apply(analysis, findings, join.Kernel{
				Stalls:   in.Stalls,
				LiveRegs: in.LiveRegs,
				Metrics:  in.Metrics,
			})
			stalls, metricsOut := join.KernelRollup(in.Stalls, in.Metrics)

			kr := model.KernelReport{
				Occurrences: findingsToOccurrences(findings),
				Stalls:      stalls,
				Metrics:     metricsOut,
			}

			mu.Lock()
			report[kernelName] = kr
			mu.Unlock()
		}(kernelName, in)
	}

	wg.Wait()
	return report
}

// RunDeadlock runs the deadlock detector over every kernel concurrently.
// It reads only the disassembly table, so it needs no join step (§4.7.2's
// finding carries no FindingBase to attach stalls/pressure/metrics to).
func (o *Orchestrator) RunDeadlock(kernels map[string]KernelInput) model.DeadlockReport {
	out := make(model.DeadlockReport, len(kernels))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for kernelName, in := range kernels {
		wg.Add(1)
		go func(kernelName string, in KernelInput) {
			defer wg.Done()
			verdict := detect.DeadlockDetector(in.Disasm)
			mu.Lock()
			out[kernelName] = verdict
			mu.Unlock()
		}(kernelName, in)
	}
	wg.Wait()
	return out
}

// runDetector dispatches one analysis to whichever registry defines it; an
// IR-only analysis run against a kernel missing IR input produces no
// findings rather than an error (§7's "missing optional input" rule).
func runDetector(analysis string, in KernelInput) []model.Finding {
	if d, ok := detect.DisasmRegistry[analysis]; ok {
		return d(in.Disasm)
	}
	if d, ok := detect.IRRegistry[analysis]; ok {
		if in.IR == nil {
			return nil
		}
		return d(in.IR)
	}
	return nil
}

// findingsToOccurrences sorts findings by (source line, pc offset) for
// deterministic output, then boxes them for JSON encoding.
func findingsToOccurrences(findings []model.Finding) []interface{} {
	sort.Slice(findings, func(i, j int) bool {
		bi, bj := findings[i].Base(), findings[j].Base()
		if bi.SourceLine != bj.SourceLine {
			return bi.SourceLine < bj.SourceLine
		}
		return bi.PCOffset < bj.PCOffset
	})
	out := make([]interface{}, len(findings))
	for i, f := range findings {
		out[i] = f
	}
	return out
}

// analysisNames returns every registered analysis name, sorted so Run's
// per-analysis progress log and the "report" subcommand's file-write order
// are both deterministic.
func analysisNames() []string {
	names := make([]string, 0, len(detect.DisasmRegistry)+len(detect.IRRegistry))
	for name := range detect.DisasmRegistry {
		names = append(names, name)
	}
	for name := range detect.IRRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
