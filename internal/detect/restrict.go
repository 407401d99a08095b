package detect

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// restrictWriteMnemonics are substrings meaning "this instruction writes its
// destination register" for the purposes of disqualifying a restrict
// candidate (§4.7.6).
var restrictWriteMnemonics = []string{"MAD", "ADD", "MUL", "FMA", "ATOMS", "ATOMG", "MUFU", "RED."}

// Restrict runs the read-only/restrict-candidate detector (§4.7.6): a
// register first written by LDG. is a candidate if it's never subsequently
// written by an arithmetic/atomic/reduction/MUFU instruction.
func Restrict(kt model.KernelTables) []model.RestrictFinding {
	if kt.Kernel == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []model.RestrictFinding

	for i, inst := range kt.Instructions {
		if !strings.HasPrefix(inst.Mnemonic, "LDG.") {
			continue
		}
		reg := writtenRegister(inst.Operands)
		if reg == "" || seen[reg] {
			continue
		}
		seen[reg] = true

		disqualified := false
		for _, later := range kt.Instructions[i+1:] {
			if writtenRegister(later.Operands) != reg {
				continue
			}
			for _, m := range restrictWriteMnemonics {
				if strings.Contains(later.Mnemonic, m) {
					disqualified = true
					break
				}
			}
			if disqualified {
				break
			}
		}
		if disqualified {
			continue
		}

		alreadyReadOnly := strings.Contains(inst.Mnemonic, ".CI") || strings.Contains(inst.Mnemonic, ".CONSTANT")
		sev := model.SeverityWarning
		if alreadyReadOnly {
			sev = model.SeverityInfo
		}
		out = append(out, model.RestrictFinding{
			FindingBase:     model.NewFindingBase(kt.Kernel, inst.SourceLine, inst.PCOffset, sev),
			Register:        reg,
			AlreadyReadOnly: alreadyReadOnly,
		})
	}
	return out
}
