package detect

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

type sharedRegState struct {
	loads             int
	uses              int
	alreadyUsesShared bool
	asyncCopy         bool
	gapInstructions   int
	lastLDGIndex      int
	insideLoop        bool
}

// SharedCandidate runs the shared-memory-candidate detector (§4.7.7): a
// register loaded via LDG and read more times than it's loaded, while the
// load sits inside a loop body, is flagged as a shared-memory candidate.
func SharedCandidate(kt model.KernelTables) []model.SharedCandidateFinding {
	if kt.Kernel == "" {
		return nil
	}
	regions := DisasmLoopRegions(kt)
	events := DisasmLoopEvents(kt)

	states := make(map[string]*sharedRegState)
	order := make([]string, 0)
	firstLine := make(map[string]int)
	firstPC := make(map[string]string)

	for i, inst := range kt.Instructions {
		switch {
		case strings.HasPrefix(inst.Mnemonic, "LDG"):
			reg := writtenRegister(inst.Operands)
			if reg == "" {
				continue
			}
			st, ok := states[reg]
			if !ok {
				st = &sharedRegState{}
				states[reg] = st
				order = append(order, reg)
				firstLine[reg] = inst.SourceLine
				firstPC[reg] = inst.PCOffset
			}
			st.loads++
			st.lastLDGIndex = i
			if strings.Contains(inst.Mnemonic, "LDGSTS") {
				st.asyncCopy = true
			}
			if label := labelSpanOf(events, i); label != "" && regions[label] {
				st.insideLoop = true
			}

		case strings.Contains(inst.Mnemonic, "STS"):
			for reg, st := range states {
				if st.loads == 0 || st.alreadyUsesShared {
					continue
				}
				if !containsRegister(inst.Operands, reg) {
					continue
				}
				st.alreadyUsesShared = true
				gapPC := inst.PCOffsetInt() - kt.Instructions[st.lastLDGIndex].PCOffsetInt()
				st.gapInstructions = gapPC / 16
			}

		default:
			if isArithmetic(inst.Mnemonic) {
				for reg, st := range states {
					if containsRegister(inst.Operands, reg) {
						st.uses++
					}
				}
			}
		}
	}

	var out []model.SharedCandidateFinding
	for _, reg := range order {
		st := states[reg]
		if !(st.loads > 0 && st.uses > 1 && st.uses > st.loads && st.insideLoop) {
			continue
		}
		out = append(out, model.SharedCandidateFinding{
			FindingBase:       model.NewFindingBase(kt.Kernel, firstLine[reg], firstPC[reg], model.SeverityInfo),
			Register:          reg,
			Loads:             st.loads,
			Uses:              st.uses,
			AlreadyUsesShared: st.alreadyUsesShared,
			AsyncCopy:         st.asyncCopy,
			GapInstructions:   st.gapInstructions,
		})
	}
	return out
}
