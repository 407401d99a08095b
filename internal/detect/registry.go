// Package detect runs the independent per-kernel detector passes (§4.7)
// over lexed instruction tables and produces typed findings.
package detect

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/lexer"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// containsAny reports whether s contains any of subs as a substring.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Name is the CLI/registry key for one analysis kind (§6.4). These match the
// per-analysis JSON file stems, e.g. "register-spilling" -> register-spilling.json.
const (
	NameDatatypeConversion = "datatype-conversion"
	NameDeadlock           = "deadlock"
	NameGlobalAtomics      = "global-atomics"
	NameRegisterSpilling   = "register-spilling"
	NameWarpDivergence     = "warp-divergence"
	NameUseRestrict        = "use-restrict"
	NameUseShared          = "use-shared"
	NameUseTexture         = "use-texture"
	NameVectorization      = "vectorization"
)

// DisasmDetector analyzes one kernel's disassembly table, independent of
// every other kernel and every other detector (§5).
type DisasmDetector func(model.KernelTables) []model.Finding

// IRDetector analyzes one kernel's IR table.
type IRDetector func(*lexer.IRKernel) []model.Finding

// DisasmRegistry maps an analysis name to its disassembly-table detector.
// Grounded on the teacher's tool registry (a flat name->function map
// consumed by both the CLI and the orchestrator).
var DisasmRegistry = map[string]DisasmDetector{
	NameDatatypeConversion: adaptDatatypeConversion,
	NameRegisterSpilling:   adaptSpill,
	NameWarpDivergence:     adaptDivergence,
	NameUseRestrict:        adaptRestrict,
	NameUseShared:          adaptShared,
	NameUseTexture:         adaptTexture,
	NameVectorization:      adaptVectorize,
}

// IRRegistry maps an analysis name to its IR-table detector.
var IRRegistry = map[string]IRDetector{
	NameGlobalAtomics: adaptAtomicsIR,
}

// DeadlockDetector is kept outside DisasmRegistry: its finding doesn't embed
// FindingBase (no occurrences/stalls/metrics — just a per-kernel verdict,
// §6.3) so it can't satisfy model.Finding.
var DeadlockDetector = Deadlock

func adaptDatatypeConversion(kt model.KernelTables) []model.Finding {
	in := DatatypeConversion(kt)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func adaptSpill(kt model.KernelTables) []model.Finding {
	in := Spill(kt)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func adaptDivergence(kt model.KernelTables) []model.Finding {
	in := Divergence(kt)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func adaptRestrict(kt model.KernelTables) []model.Finding {
	in := Restrict(kt)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func adaptShared(kt model.KernelTables) []model.Finding {
	in := SharedCandidate(kt)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func adaptTexture(kt model.KernelTables) []model.Finding {
	in := TextureCandidate(kt)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func adaptVectorize(kt model.KernelTables) []model.Finding {
	in := Vectorize(kt)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}

func adaptAtomicsIR(k *lexer.IRKernel) []model.Finding {
	in := AtomicsIR(k)
	out := make([]model.Finding, len(in))
	for i := range in {
		out[i] = &in[i]
	}
	return out
}
