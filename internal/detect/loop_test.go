package detect

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/lexer"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

func TestLoopRegionsBackEdge(t *testing.T) {
	events := []loopEvent{
		{isLabel: true, name: ".L_x_1", line: 10, index: 0},
		{isLabel: false, name: "other", line: 11, index: 1},
		{isLabel: false, name: ".L_x_1", line: 15, index: 2}, // back-edge: branch after the label, different line
	}
	regions := loopRegions(events)
	if !regions[".L_x_1"] {
		t.Errorf("expected .L_x_1 to be a loop region, got %v", regions)
	}
}

func TestLoopRegionsSameLineIsNotALoop(t *testing.T) {
	events := []loopEvent{
		{isLabel: true, name: ".L_x_1", line: 10, index: 0},
		{isLabel: false, name: ".L_x_1", line: 10, index: 1}, // same line as the label: not a loop per the rule
	}
	regions := loopRegions(events)
	if regions[".L_x_1"] {
		t.Error("expected no loop region when the label and branch share a line")
	}
}

func TestLoopRegionsUnknownTargetIgnored(t *testing.T) {
	events := []loopEvent{
		{isLabel: false, name: ".L_x_never_defined", line: 5, index: 0},
	}
	regions := loopRegions(events)
	if len(regions) != 0 {
		t.Errorf("expected no regions for a branch to an undefined label, got %v", regions)
	}
}

func TestLabelSpanOf(t *testing.T) {
	events := []loopEvent{
		{isLabel: true, name: "A", line: 1, index: 0},
		{isLabel: true, name: "B", line: 5, index: 3},
	}
	if got := labelSpanOf(events, 1); got != "A" {
		t.Errorf("labelSpanOf(1) = %q, want A", got)
	}
	if got := labelSpanOf(events, 4); got != "B" {
		t.Errorf("labelSpanOf(4) = %q, want B", got)
	}
	if got := labelSpanOf(events, -1); got != "" {
		t.Errorf("labelSpanOf(-1) = %q, want empty", got)
	}
}

func TestBranchTargetName(t *testing.T) {
	cases := []struct {
		operands string
		want     string
	}{
		{"`(.L_x_3) ;", ".L_x_3"},
		{"R5, `(.L_x_9)", ".L_x_9"},
		{"R5, R6", ""},
	}
	for _, c := range cases {
		if got := branchTargetName(c.operands); got != c.want {
			t.Errorf("branchTargetName(%q) = %q, want %q", c.operands, got, c.want)
		}
	}
}

func TestIRLoopEventsAndAtomicInsideLoop(t *testing.T) {
	k := &lexer.IRKernel{
		Kernel: "kernelA",
		Records: []lexer.IRRecord{
			{Kind: lexer.IRLabel, Label: "$L__BB0_1", UserLine: 10, RawLine: 1},
			{Kind: lexer.IRAtomicGlobal, UserLine: 11, RawLine: 2},
			{Kind: lexer.IRBranch, Label: "$L__BB0_1", UserLine: 12, RawLine: 3},
		},
	}
	events := IRLoopEvents(k)
	if len(events) != 2 {
		t.Fatalf("got %d loop events, want 2 (label + branch)", len(events))
	}
	regions := loopRegions(events)
	if !regions["$L__BB0_1"] {
		t.Fatalf("expected $L__BB0_1 to be a loop region, got %v", regions)
	}
	if !IRAtomicInsideLoop(events, 1, regions) {
		t.Error("expected the atomic record at index 1 to be inside the loop")
	}
}

func TestDisasmLoopEventsAndRegions(t *testing.T) {
	kt := model.KernelTables{
		Kernel: "kernelA",
		Labels: map[string]model.Label{
			".L_x_1": {Name: ".L_x_1", SourceLine: 10, PCOffset: "0000"},
		},
		Instructions: []model.Instruction{
			{PCOffset: "0000", SourceLine: 10, Mnemonic: "IMAD", Operands: "R1, R2, R3"},
			{PCOffset: "0010", SourceLine: 11, Mnemonic: "STS", Operands: "[R1], R2"},
			{PCOffset: "0020", SourceLine: 15, Mnemonic: "BRA", Operands: "`(.L_x_1) ;"},
		},
	}
	regions := DisasmLoopRegions(kt)
	if !regions[".L_x_1"] {
		t.Fatalf("expected .L_x_1 to be a loop region, got %v", regions)
	}
	if !DisasmInsideLoop(kt, 1, regions) {
		t.Error("expected instruction index 1 (the STS) to be inside the loop")
	}
}
