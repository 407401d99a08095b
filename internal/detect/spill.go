package detect

import (
	"regexp"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// arithmeticMnemonics is the substring list used to detect an instruction
// that computes a value into a register (§4.7.4).
var arithmeticMnemonics = []string{"MAD", "ADD", "MUL", "FMA", "MUFU", "RRO"}

// baseRegisterRe extracts the base register from "[Base+0xNN]"/"[Base+-0xNN]"
// addressing-mode operand syntax.
var baseRegisterRe = regexp.MustCompile(`\[\s*(R\w+)\s*\+\s*-?0x[0-9a-fA-F]+\s*\]`)

// regOperandRe matches any bare register token (e.g. R5, R10) in operand text.
var regOperandRe = regexp.MustCompile(`\bR\w+\b`)

type lastCompute struct {
	mnemonic string
	line     int
	pcOffset string
	frozen   bool // true once a spill has been seen for this register
}

// Spill runs the register-spill detector (§4.7.4): STL/LDL instructions are
// spill points; the most recent pre-spill arithmetic write to the spilled
// register is captured as a snapshot (not a live pointer — see DESIGN.md).
func Spill(kt model.KernelTables) []model.SpillFinding {
	if kt.Kernel == "" {
		return nil
	}
	lastByReg := make(map[string]*lastCompute)
	var out []model.SpillFinding

	for _, inst := range kt.Instructions {
		if isArithmetic(inst.Mnemonic) {
			if reg := writtenRegister(inst.Operands); reg != "" {
				lc, ok := lastByReg[reg]
				if !ok {
					lc = &lastCompute{}
					lastByReg[reg] = lc
				}
				if !lc.frozen {
					lc.mnemonic = inst.Mnemonic
					lc.line = inst.SourceLine
					lc.pcOffset = inst.PCOffset
				}
			}
			continue
		}

		var opKind string
		switch {
		case strings.Contains(inst.Mnemonic, "STL"):
			opKind = "STORE"
		case strings.Contains(inst.Mnemonic, "LDL"):
			opKind = "LOAD"
		default:
			continue
		}

		reg := spillBaseRegister(inst.Operands, opKind)
		if reg == "" {
			continue
		}
		lc, ok := lastByReg[reg]
		if !ok {
			lc = &lastCompute{}
			lastByReg[reg] = lc
		}
		var ref *model.ComputeRef
		if lc.mnemonic != "" {
			ref = &model.ComputeRef{Instruction: lc.mnemonic, Line: lc.line, PCOffset: lc.pcOffset}
		}
		lc.frozen = true

		out = append(out, model.SpillFinding{
			FindingBase:                model.NewFindingBase(kt.Kernel, inst.SourceLine, inst.PCOffset, model.SeverityWarning),
			Register:                   reg,
			Operation:                  opKind,
			PreviousComputeInstruction: ref,
		})
	}
	return out
}

func isArithmetic(mnemonic string) bool {
	for _, m := range arithmeticMnemonics {
		if strings.Contains(mnemonic, m) {
			return true
		}
	}
	return false
}

// writtenRegister returns the first register operand, which for these
// mnemonics in SASS syntax is always the destination.
func writtenRegister(operands string) string {
	m := regOperandRe.FindString(operands)
	return m
}

// operandRegisters returns every register token in operand text, in order,
// duplicates included. Register names are compared literally; tolerance is
// not performed, so callers must use this (or containsRegister) instead of
// strings.Contains, which would also match "R1" inside "R10"/"R11".
func operandRegisters(operands string) []string {
	return regOperandRe.FindAllString(operands, -1)
}

// containsRegister reports whether reg appears as an exact token in operand
// text, not merely as a substring of a longer register name.
func containsRegister(operands, reg string) bool {
	for _, tok := range operandRegisters(operands) {
		if tok == reg {
			return true
		}
	}
	return false
}

// spillBaseRegister extracts the base register for a STL/LDL instruction's
// operand text: the `[Base+offset]` addressing base if present, otherwise
// the last register operand for STL (the value being stored) or the first
// (written) register for LDL.
func spillBaseRegister(operands, opKind string) string {
	if m := baseRegisterRe.FindStringSubmatch(operands); m != nil {
		return m[1]
	}
	regs := regOperandRe.FindAllString(operands, -1)
	if len(regs) == 0 {
		return ""
	}
	if opKind == "STORE" {
		return regs[len(regs)-1]
	}
	return regs[0]
}
