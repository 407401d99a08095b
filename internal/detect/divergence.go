package detect

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// Divergence runs the warp-divergence detector (§4.7.5): a conditional
// branch whose target label resolves to a different source line than the
// branch itself is flagged as a possible divergence point.
func Divergence(kt model.KernelTables) []model.DivergenceFinding {
	if kt.Kernel == "" {
		return nil
	}
	var out []model.DivergenceFinding
	for _, inst := range kt.Instructions {
		if !strings.Contains(inst.Mnemonic, "BRA") {
			continue
		}
		target := branchTargetName(inst.Operands)
		if target == "" {
			continue
		}
		label, ok := kt.Labels[target]
		if !ok {
			continue
		}
		if label.SourceLine == inst.SourceLine {
			continue
		}
		out = append(out, model.DivergenceFinding{
			FindingBase: model.NewFindingBase(kt.Kernel, inst.SourceLine, inst.PCOffset, model.SeverityWarning),
			TargetLabel: target,
			TargetLine:  label.SourceLine,
			TargetPC:    label.PCOffset,
		})
	}
	return out
}
