package lexer

import (
	"strings"
	"testing"
)

// header builds a kernel-header line whose fixed-width prefix/suffix strip
// (§4.2) yields exactly name as the extracted kernel.
func header(name string) string {
	return ".section\t.text.X" + name + strings.Repeat("Y", 15)
}

func TestScanDisassemblyExtractsKernelName(t *testing.T) {
	src := header("_Z3fooPi") + "\n" +
		" line 10\n" +
		"        /*0000*/                   IMAD R5, R3, 0x1, R7 ;\n"

	tables := ScanDisassembly(strings.NewReader(src))
	if len(tables) != 1 {
		t.Fatalf("got %d kernels, want 1", len(tables))
	}
	kt, ok := tables["_Z3fooPi"]
	if !ok {
		t.Fatalf("missing kernel _Z3fooPi, got %v", tables)
	}
	if len(kt.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(kt.Instructions))
	}
	inst := kt.Instructions[0]
	if inst.Mnemonic != "IMAD" || inst.SourceLine != 10 || inst.PCOffset != "0000" {
		t.Errorf("unexpected instruction: %+v", inst)
	}
}

func TestScanDisassemblyTooShortHeaderYieldsNoKernel(t *testing.T) {
	// A header line too short to hold both fixed-width fields extracts an
	// empty kernel name; since the empty name is never flushed, the
	// instructions that follow it are silently dropped.
	src := ".section\t.text.X\n" +
		" line 1\n" +
		"        /*0000*/                   IMAD R1, R2, R3 ;\n"
	tables := ScanDisassembly(strings.NewReader(src))
	if len(tables) != 0 {
		t.Fatalf("got %d kernels, want 0: %v", len(tables), tables)
	}
}

func TestScanDisassemblyMultipleKernelsFlushOnBoundary(t *testing.T) {
	src := header("kernelA") + "\n" +
		" line 1\n" +
		"        /*0000*/                   IMAD R1, R2, R3 ;\n" +
		header("kernelB") + "\n" +
		" line 2\n" +
		"        /*0010*/                   ADD R4, R5, R6 ;\n"

	tables := ScanDisassembly(strings.NewReader(src))
	if len(tables) != 2 {
		t.Fatalf("got %d kernels, want 2: %v", len(tables), tables)
	}
	if len(tables["kernelA"].Instructions) != 1 {
		t.Errorf("kernelA has %d instructions, want 1", len(tables["kernelA"].Instructions))
	}
	if len(tables["kernelB"].Instructions) != 1 {
		t.Errorf("kernelB has %d instructions, want 1", len(tables["kernelB"].Instructions))
	}
	// sourceLine must reset across the kernel boundary, not carry over
	if tables["kernelB"].Instructions[0].SourceLine != 2 {
		t.Errorf("kernelB sourceLine = %d, want 2 (must not inherit kernelA's)",
			tables["kernelB"].Instructions[0].SourceLine)
	}
}

func TestScanDisassemblyLabelCompletion(t *testing.T) {
	src := header("kernelA") + "\n" +
		" line 5\n" +
		".L_x_1:\n" +
		"        /*0020*/                   BRA .L_x_1 ;\n"

	tables := ScanDisassembly(strings.NewReader(src))
	kt := tables["kernelA"]
	label, ok := kt.Labels[".L_x_1"]
	if !ok {
		t.Fatalf("expected label .L_x_1, got %v", kt.Labels)
	}
	if label.SourceLine != 5 || label.PCOffset != "0020" {
		t.Errorf("unexpected label: %+v", label)
	}
}

func TestScanDisassemblySkipsNonInstructionLines(t *testing.T) {
	src := header("kernelA") + "\n" +
		" line 1\n" +
		"this is neither a header nor an instruction\n" +
		"        /*0000*/                   IMAD R1, R2, R3 ;\n"

	tables := ScanDisassembly(strings.NewReader(src))
	if len(tables["kernelA"].Instructions) != 1 {
		t.Errorf("expected exactly 1 instruction, got %d", len(tables["kernelA"].Instructions))
	}
}

func TestScanDisassemblyLiveRegAnnotation(t *testing.T) {
	src := header("kernelA") + "\n" +
		" line 1\n" +
		"        /*0000*/                   IMAD R5, R3, 0x1, R7 ; // | 12 | 2 | 1 |\n"

	tables := ScanDisassembly(strings.NewReader(src))
	inst := tables["kernelA"].Instructions[0]
	if inst.LiveRegs == nil {
		t.Fatal("expected a live-register annotation")
	}
	if inst.LiveRegs.General != 12 || inst.LiveRegs.Predicate != 2 || inst.LiveRegs.UniformGeneral != 1 {
		t.Errorf("unexpected live-reg triple: %+v", inst.LiveRegs)
	}
}

func TestScanDisassemblyPredicatedInstruction(t *testing.T) {
	src := header("kernelA") + "\n" +
		" line 1\n" +
		"        /*0000*/              @P0  BRA .L_x_1 ;\n"

	tables := ScanDisassembly(strings.NewReader(src))
	inst := tables["kernelA"].Instructions[0]
	if inst.Predicate != "@P0" {
		t.Errorf("Predicate = %q, want @P0", inst.Predicate)
	}
	if inst.Mnemonic != "BRA" {
		t.Errorf("Mnemonic = %q, want BRA", inst.Mnemonic)
	}
}

func TestScanDisassemblyEmptyStreamYieldsNoKernels(t *testing.T) {
	tables := ScanDisassembly(strings.NewReader(""))
	if len(tables) != 0 {
		t.Errorf("got %d kernels from an empty stream, want 0", len(tables))
	}
}
