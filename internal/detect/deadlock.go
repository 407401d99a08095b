package detect

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// deadlockState is the four-state recognizer of §4.7.2.
type deadlockState int

const (
	stateIdle deadlockState = iota
	stateInCAS
	statePredicatedBranchSeen
	stateDeadlock
)

// Deadlock runs the atomic-CAS/predicated-branch/SYNC state machine over a
// kernel's instruction stream and reports whether it ever reached the
// deadlock state (§4.7.2). State resets at each kernel (callers invoke this
// once per kernel's KernelTables, which already starts fresh per header).
func Deadlock(kt model.KernelTables) model.DeadlockFinding {
	if kt.Kernel == "" {
		return model.DeadlockFinding{}
	}
	state := stateIdle
	for _, inst := range kt.Instructions {
		switch state {
		case stateIdle:
			if strings.Contains(inst.Mnemonic, "ATOM.E.CAS") {
				state = stateInCAS
			}
		case stateInCAS:
			if strings.Contains(inst.Predicate, "@P") && strings.Contains(inst.Mnemonic, "BRA") {
				state = statePredicatedBranchSeen
			}
			if strings.Contains(inst.Mnemonic, "ATOM.E.EXCH") {
				state = stateIdle
			}
		case statePredicatedBranchSeen:
			if strings.Contains(inst.Mnemonic, "SYNC") {
				state = stateDeadlock
			}
			if strings.Contains(inst.Mnemonic, "ATOM.E.EXCH") {
				state = stateIdle
			}
		}
		if state == stateDeadlock {
			break
		}
	}
	return model.DeadlockFinding{Deadlock: state == stateDeadlock}
}
