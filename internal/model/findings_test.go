package model

import "testing"

func TestFindingBaseAccessors(t *testing.T) {
	base := NewFindingBase("kernelA", 12, "0020", SeverityWarning)

	var findings []Finding
	findings = append(findings,
		&DatatypeConversionFinding{FindingBase: base, Category: "I2F"},
		&AtomicFinding{FindingBase: base, Category: "global"},
		&SpillFinding{FindingBase: base, Register: "R5", Operation: "STORE"},
		&DivergenceFinding{FindingBase: base, TargetLabel: ".L_x_1"},
		&RestrictFinding{FindingBase: base, Register: "R3"},
		&SharedCandidateFinding{FindingBase: base, Register: "R2"},
		&TextureCandidateFinding{FindingBase: base, Register: "R4"},
		&VectorizeFinding{FindingBase: base, BaseRegister: "R6"},
	)

	for _, f := range findings {
		got := f.Base()
		if got.Kernel != "kernelA" || got.SourceLine != 12 || got.PCOffset != "0020" {
			t.Errorf("%T.Base() = %+v, want kernel=kernelA line=12 pc=0020", f, got)
		}
	}
}

func TestDeadlockFindingIsNotAFinding(t *testing.T) {
	// DeadlockFinding carries only a per-kernel verdict; it intentionally
	// does not embed FindingBase or implement Finding since it has no
	// source-line/pc-offset/stalls of its own.
	df := DeadlockFinding{Deadlock: true}
	if !df.Deadlock {
		t.Fatal("expected Deadlock to be true")
	}
}
