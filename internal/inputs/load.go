package inputs

import (
	"fmt"
	"os"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/lexer"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/liveregs"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/metrics"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/orchestrator"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/stall"
)

// LoadKernels reads every artifact present in paths and assembles the
// per-kernel input bundle the orchestrator needs. Any artifact absent from
// paths is simply skipped. Entries are created for kernels found in the
// disassembly or the IR, with the fields of absent artifacts left zero (§7's
// missing-input rule — a detector run against a partial bundle just joins
// less); a kernel that appears only in the stall or metrics report gets no
// entry.
func LoadKernels(paths Paths) (map[string]orchestrator.KernelInput, error) {
	disasm, err := loadDisassembly(paths[Disassembly])
	if err != nil {
		return nil, err
	}
	ir, err := loadIR(paths[IR])
	if err != nil {
		return nil, err
	}
	stalls, err := loadStalls(paths[StallReport], disasm)
	if err != nil {
		return nil, err
	}
	metricsTable, err := loadMetrics(paths[MetricsReport])
	if err != nil {
		return nil, err
	}

	var liveRegs map[string]map[string]model.LiveRegRecord
	if disasm != nil {
		liveRegs = liveregs.Index(disasm)
	}

	kernels := make(map[string]orchestrator.KernelInput, len(disasm))
	for name, kt := range disasm {
		in := orchestrator.KernelInput{Kernel: name, Disasm: kt}
		if ir != nil {
			in.IR = ir[name]
		}
		if stalls != nil {
			in.Stalls = stalls[name]
		}
		if liveRegs != nil {
			in.LiveRegs = liveRegs[name]
		}
		if mr, ok := metricsTable[name]; ok {
			in.Metrics = &mr
		}
		kernels[name] = in
	}
	for name, k := range ir {
		if _, ok := kernels[name]; !ok {
			kernels[name] = orchestrator.KernelInput{Kernel: name, IR: k}
		}
	}

	return kernels, nil
}

func loadDisassembly(path string) (map[string]model.KernelTables, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open disassembly %s: %w", path, err)
	}
	defer f.Close()
	return lexer.ScanDisassembly(f), nil
}

func loadIR(path string) (map[string]*lexer.IRKernel, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open IR %s: %w", path, err)
	}
	defer f.Close()
	return lexer.ScanIR(f), nil
}

func loadStalls(path string, disasm map[string]model.KernelTables) (map[string][]model.StallSample, error) {
	if path == "" || disasm == nil {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stall report %s: %w", path, err)
	}
	defer f.Close()
	return stall.LoadAndJoin(f, disasm), nil
}

func loadMetrics(path string) (map[string]model.MetricRecord, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metrics report %s: %w", path, err)
	}
	defer f.Close()
	return metrics.LoadTable(f), nil
}
