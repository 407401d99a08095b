package detect

import (
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/lexer"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// AtomicsIR counts atom.global.add and atom.shared.add occurrences in an IR
// kernel and flags whether each falls inside a loop body (§4.7.3).
func AtomicsIR(k *lexer.IRKernel) []model.AtomicFinding {
	if k == nil || k.Kernel == "" {
		return nil
	}
	events := IRLoopEvents(k)
	regions := loopRegions(events)

	var out []model.AtomicFinding
	for i, r := range k.Records {
		var category string
		switch r.Kind {
		case lexer.IRAtomicGlobal:
			category = "global"
		case lexer.IRAtomicShared:
			category = "shared"
		default:
			continue
		}
		out = append(out, model.AtomicFinding{
			// IR has no pc-offset concept; "0000" is the documented sentinel
			// (see DESIGN.md) satisfying the universal pc_offset invariant.
			FindingBase: model.NewFindingBase(k.Kernel, r.UserLine, "0000", model.SeverityInfo),
			Category:    category,
			InsideLoop:  IRAtomicInsideLoop(events, i, regions),
			IRLine:      r.RawLine,
		})
	}
	return out
}
