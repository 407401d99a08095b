package detect

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/lexer"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// loopEvent is either a label definition or a branch to a label, in stream
// order. index is the event's position in the original record/instruction
// sequence, used to detect "backward or sideways" branches without relying
// on source-line numbers, which can repeat across unrelated regions.
type loopEvent struct {
	isLabel bool
	name    string // label name (isLabel) or branch target (!isLabel)
	line    int
	index   int
}

// loopRegions implements the unified loop-body rule (§4.7.3, Open Question
// c): a label begins a loop region when some later branch targets it while
// it was already defined (a back-edge) and the label's first line differs
// from the branch's own line. Returns the set of loop-region label names.
func loopRegions(events []loopEvent) map[string]bool {
	labelIndex := make(map[string]int)
	labelLine := make(map[string]int)
	for _, e := range events {
		if e.isLabel {
			labelIndex[e.name] = e.index
			labelLine[e.name] = e.line
		}
	}

	regions := make(map[string]bool)
	for _, e := range events {
		if e.isLabel {
			continue
		}
		defIdx, ok := labelIndex[e.name]
		if !ok {
			continue
		}
		if defIdx <= e.index && labelLine[e.name] != e.line {
			regions[e.name] = true
		}
	}
	return regions
}

// labelSpanOf returns the name of the label whose definition most recently
// precedes (or is at) index, or "" if none — the label whose "region" index
// falls in. A label's span runs from its definition up to the next label's
// definition.
func labelSpanOf(events []loopEvent, index int) string {
	best := ""
	bestIdx := -1
	for _, e := range events {
		if !e.isLabel {
			continue
		}
		if e.index <= index && e.index > bestIdx {
			bestIdx = e.index
			best = e.name
		}
	}
	return best
}

// IRLoopEvents builds the loop-event stream for an IR kernel's label
// definitions and branch records (§4.7.3).
func IRLoopEvents(k *lexer.IRKernel) []loopEvent {
	var events []loopEvent
	for i, r := range k.Records {
		switch r.Kind {
		case lexer.IRLabel:
			events = append(events, loopEvent{isLabel: true, name: r.Label, line: r.UserLine, index: i})
		case lexer.IRBranch:
			events = append(events, loopEvent{isLabel: false, name: r.Label, line: r.UserLine, index: i})
		}
	}
	return events
}

// IRAtomicInsideLoop reports whether the atomic record at recIdx (its
// position in k.Records) falls within a loop-region label's span. events is
// the kernel's already-computed loop-event stream (IRLoopEvents); callers
// scanning every record in a kernel build it once up front and pass the same
// slice to every call, rather than rebuilding it per record.
func IRAtomicInsideLoop(events []loopEvent, recIdx int, regions map[string]bool) bool {
	label := labelSpanOf(events, recIdx)
	return label != "" && regions[label]
}

// branchTargetName extracts the backtick-delimited label from a disassembly
// BRA instruction's operand text, e.g. "`(.L_x_3) ;" -> ".L_x_3".
var branchTargetName = func(operands string) string {
	start := strings.Index(operands, "`(")
	if start < 0 {
		return ""
	}
	rest := operands[start+2:]
	end := strings.Index(rest, ")")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// DisasmLoopEvents builds the loop-event stream for a disassembly kernel's
// labels and BRA instructions (used to unify §4.7.7's loop test with the
// §4.7.3 rule, per Open Question c).
func DisasmLoopEvents(kt model.KernelTables) []loopEvent {
	var events []loopEvent
	labelAtPC := make(map[string]string)
	for name, lbl := range kt.Labels {
		labelAtPC[lbl.PCOffset] = name
	}
	for i, inst := range kt.Instructions {
		if name, ok := labelAtPC[inst.PCOffset]; ok {
			events = append(events, loopEvent{isLabel: true, name: name, line: kt.Labels[name].SourceLine, index: i})
		}
		if strings.Contains(inst.Mnemonic, "BRA") {
			target := branchTargetName(inst.Operands)
			if target != "" {
				events = append(events, loopEvent{isLabel: false, name: target, line: inst.SourceLine, index: i})
			}
		}
	}
	return events
}

// DisasmLoopRegions returns the set of loop-region label names for a
// disassembly kernel (§4.7.7, Open Question c).
func DisasmLoopRegions(kt model.KernelTables) map[string]bool {
	return loopRegions(DisasmLoopEvents(kt))
}

// DisasmInsideLoop reports whether the instruction at instIdx falls within
// a loop-region label's span.
func DisasmInsideLoop(kt model.KernelTables, instIdx int, regions map[string]bool) bool {
	events := DisasmLoopEvents(kt)
	label := labelSpanOf(events, instIdx)
	return label != "" && regions[label]
}
