package inputs

import "testing"

func TestLoadKernelsEmptyPaths(t *testing.T) {
	kernels, err := LoadKernels(Paths{})
	if err != nil {
		t.Fatal(err)
	}
	if len(kernels) != 0 {
		t.Errorf("expected no kernels with no input paths, got %d", len(kernels))
	}
}

func TestLoadKernelsUnreadableDisassembly(t *testing.T) {
	_, err := LoadKernels(Paths{Disassembly: "/nonexistent/disasm.sass"})
	if err == nil {
		t.Fatal("expected an error for an unreadable disassembly path")
	}
}

func TestLoadKernelsUnreadableMetrics(t *testing.T) {
	_, err := LoadKernels(Paths{MetricsReport: "/nonexistent/metrics.csv"})
	if err == nil {
		t.Fatal("expected an error for an unreadable metrics path")
	}
}
