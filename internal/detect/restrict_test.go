package detect

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

func TestRestrictCandidateNeverRewritten(t *testing.T) {
	kt := model.KernelTables{
		Kernel: "kernelA",
		Instructions: []model.Instruction{
			{PCOffset: "0000", SourceLine: 10, Mnemonic: "LDG.E.SYS", Operands: "R5, [R4]"},
			{PCOffset: "0010", SourceLine: 11, Mnemonic: "FADD", Operands: "R6, R5, R7"}, // reads R5, writes R6
		},
	}
	out := Restrict(kt)
	if len(out) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(out), out)
	}
	if out[0].Register != "R5" || out[0].AlreadyReadOnly {
		t.Errorf("unexpected finding: %+v", out[0])
	}
	if out[0].Severity != model.SeverityWarning {
		t.Errorf("severity = %q, want WARNING", out[0].Severity)
	}
}

func TestRestrictDisqualifiedWhenRewritten(t *testing.T) {
	kt := model.KernelTables{
		Kernel: "kernelA",
		Instructions: []model.Instruction{
			{PCOffset: "0000", SourceLine: 10, Mnemonic: "LDG.E.SYS", Operands: "R5, [R4]"},
			{PCOffset: "0010", SourceLine: 11, Mnemonic: "FADD", Operands: "R5, R5, R7"}, // rewrites R5
		},
	}
	if out := Restrict(kt); out != nil {
		t.Errorf("expected no findings once R5 is rewritten, got %+v", out)
	}
}

func TestRestrictAlreadyReadOnlyIsInfo(t *testing.T) {
	kt := model.KernelTables{
		Kernel: "kernelA",
		Instructions: []model.Instruction{
			{PCOffset: "0000", SourceLine: 10, Mnemonic: "LDG.E.CI", Operands: "R5, [R4]"},
		},
	}
	out := Restrict(kt)
	if len(out) != 1 || !out[0].AlreadyReadOnly || out[0].Severity != model.SeverityInfo {
		t.Fatalf("unexpected findings: %+v", out)
	}
}

func TestRestrictDedupesByRegister(t *testing.T) {
	kt := model.KernelTables{
		Kernel: "kernelA",
		Instructions: []model.Instruction{
			{PCOffset: "0000", SourceLine: 10, Mnemonic: "LDG.E.SYS", Operands: "R5, [R4]"},
			{PCOffset: "0010", SourceLine: 11, Mnemonic: "LDG.E.SYS", Operands: "R5, [R8]"},
		},
	}
	out := Restrict(kt)
	if len(out) != 1 {
		t.Fatalf("got %d findings, want 1 (first-seen only)", len(out))
	}
}
