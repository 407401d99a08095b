package liveregs

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

func TestIndexFirstInstructionDeltaEqualsSum(t *testing.T) {
	tables := map[string]model.KernelTables{
		"kernelA": {
			Kernel: "kernelA",
			Instructions: []model.Instruction{
				{PCOffset: "0000", LiveRegs: &model.LiveRegTriple{General: 12, Predicate: 2, UniformGeneral: 1}},
			},
		},
	}
	out := Index(tables)
	rec := out["kernelA"]["0000"]
	if rec.Delta != 15 {
		t.Errorf("Delta = %d, want 15 (the first annotated instruction's own sum)", rec.Delta)
	}
	if rec.General != 12 || rec.Predicate != 2 || rec.UniformGeneral != 1 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestIndexDeltaIsAgainstPreviousAnnotatedInstruction(t *testing.T) {
	tables := map[string]model.KernelTables{
		"kernelA": {
			Kernel: "kernelA",
			Instructions: []model.Instruction{
				{PCOffset: "0000", LiveRegs: &model.LiveRegTriple{General: 10, Predicate: 0, UniformGeneral: 0}},
				{PCOffset: "0010", LiveRegs: &model.LiveRegTriple{General: 12, Predicate: 1, UniformGeneral: 0}},
			},
		},
	}
	out := Index(tables)
	if out["kernelA"]["0000"].Delta != 10 {
		t.Errorf("first Delta = %d, want 10", out["kernelA"]["0000"].Delta)
	}
	if out["kernelA"]["0010"].Delta != 3 {
		t.Errorf("second Delta = %d, want 3 (13 - 10)", out["kernelA"]["0010"].Delta)
	}
}

func TestIndexOrdersByFileOrderNotPCOffsetValue(t *testing.T) {
	// pc-offsets appear in descending numeric order, but file order is
	// ascending; delta must follow file order, not numeric sort order
	tables := map[string]model.KernelTables{
		"kernelA": {
			Kernel: "kernelA",
			Instructions: []model.Instruction{
				{PCOffset: "00f0", LiveRegs: &model.LiveRegTriple{General: 5}},
				{PCOffset: "0010", LiveRegs: &model.LiveRegTriple{General: 8}},
			},
		},
	}
	out := Index(tables)
	if out["kernelA"]["00f0"].Delta != 5 {
		t.Errorf("first-in-file Delta = %d, want 5", out["kernelA"]["00f0"].Delta)
	}
	if out["kernelA"]["0010"].Delta != 3 {
		t.Errorf("second-in-file Delta = %d, want 3 (8 - 5), got delta computed against numeric pc order instead", out["kernelA"]["0010"].Delta)
	}
}

func TestIndexInstructionsWithoutAnnotationContributeNoEntry(t *testing.T) {
	tables := map[string]model.KernelTables{
		"kernelA": {
			Kernel: "kernelA",
			Instructions: []model.Instruction{
				{PCOffset: "0000", LiveRegs: nil},
				{PCOffset: "0010", LiveRegs: &model.LiveRegTriple{General: 4}},
			},
		},
	}
	out := Index(tables)
	perOffset := out["kernelA"]
	if len(perOffset) != 1 {
		t.Fatalf("got %d entries, want 1 (unannotated instructions are skipped): %+v", len(perOffset), perOffset)
	}
	if _, ok := perOffset["0000"]; ok {
		t.Error("unannotated pc-offset 0000 must not have an entry")
	}
}

func TestIndexKernelWithZeroAnnotatedInstructionsContributesNoEntry(t *testing.T) {
	tables := map[string]model.KernelTables{
		"kernelA": {
			Kernel: "kernelA",
			Instructions: []model.Instruction{
				{PCOffset: "0000", LiveRegs: nil},
			},
		},
	}
	out := Index(tables)
	if _, ok := out["kernelA"]; ok {
		t.Errorf("expected no map entry for a kernel with zero annotated instructions, got %+v", out["kernelA"])
	}
}

func TestIndexSkipsEmptyKernelName(t *testing.T) {
	tables := map[string]model.KernelTables{
		"": {
			Kernel: "",
			Instructions: []model.Instruction{
				{PCOffset: "0000", LiveRegs: &model.LiveRegTriple{General: 1}},
			},
		},
	}
	out := Index(tables)
	if len(out) != 0 {
		t.Errorf("expected an empty-name kernel to be skipped entirely, got %+v", out)
	}
}
