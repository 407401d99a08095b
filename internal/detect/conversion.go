package detect

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// conversionCategories lists the mnemonic substrings checked, in priority
// order, for the tie-break rule in §4.7.1 (categories are disjoint in
// practice, so the order never actually matters, but it's specified).
var conversionCategories = []string{"I2F", "F2I", "F2F"}

// DatatypeConversion flags every instruction whose mnemonic names a
// datatype-conversion opcode (§4.7.1).
func DatatypeConversion(kt model.KernelTables) []model.DatatypeConversionFinding {
	if kt.Kernel == "" {
		return nil
	}
	var out []model.DatatypeConversionFinding
	for _, inst := range kt.Instructions {
		for _, cat := range conversionCategories {
			if strings.Contains(inst.Mnemonic, cat) {
				out = append(out, model.DatatypeConversionFinding{
					FindingBase: model.NewFindingBase(kt.Kernel, inst.SourceLine, inst.PCOffset, model.SeverityInfo),
					Category:    cat,
				})
				break
			}
		}
	}
	return out
}
