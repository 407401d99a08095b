package detect

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// unrollOffsetRe extracts the base register and its unroll offset from
// `[Base+0xNN]` addressing syntax.
var unrollOffsetRe = regexp.MustCompile(`\[\s*(R\w+)(?:\s*\+\s*(0x[0-9a-fA-F]+))?\s*\]`)

type textureLoadRecord struct {
	written    string
	base       string
	offset     int
	line       int
	pcOffset   string
	usedAfter  bool
}

// spatialOffsetDeltas is the set of successive-offset deltas that indicate
// spatial locality matching a 32/64/128-bit load width (§4.7.8).
var spatialOffsetDeltas = map[int64]bool{4: true, 8: true, 16: true}

// TextureCandidate runs the texture-memory-candidate detector (§4.7.8). If
// any TEX./TLD/TXQ instruction appears anywhere in the kernel, texture
// memory is already in use and no recommendations are emitted for it.
func TextureCandidate(kt model.KernelTables) []model.TextureCandidateFinding {
	if kt.Kernel == "" {
		return nil
	}
	for _, inst := range kt.Instructions {
		if containsAny(inst.Mnemonic, "TEX.", "TLD", "TXQ") {
			return nil
		}
	}

	var records []*textureLoadRecord
	byBase := make(map[string][]*textureLoadRecord)

	for i, inst := range kt.Instructions {
		if !strings.HasPrefix(inst.Mnemonic, "LDG") {
			continue
		}
		if strings.Contains(inst.Mnemonic, ".CI") || strings.Contains(inst.Mnemonic, ".CONSTANT") {
			continue
		}
		reg := writtenRegister(inst.Operands)
		if reg == "" {
			continue
		}
		m := unrollOffsetRe.FindStringSubmatch(inst.Operands)
		if m == nil {
			continue
		}
		base := m[1]
		offset, _ := strconv.ParseInt(strings.TrimPrefix(m[2], "0x"), 16, 64)

		rec := &textureLoadRecord{written: reg, base: base, offset: int(offset), line: inst.SourceLine, pcOffset: inst.PCOffset}
		records = append(records, rec)
		byBase[base] = append(byBase[base], rec)

		// USED/NOT_USED per §4.7.6's write set, except read-modify-write of
		// the same register by plain MUL/ADD preserves NOT_USED.
		for _, later := range kt.Instructions[i+1:] {
			w := writtenRegister(later.Operands)
			if w != reg {
				continue
			}
			isMulAdd := strings.Contains(later.Mnemonic, "MUL") || strings.Contains(later.Mnemonic, "ADD")
			if isMulAdd && isReadModifyWrite(later.Operands, reg) {
				continue // read-modify-write: treated as read-only for this heuristic
			}
			for _, wm := range restrictWriteMnemonics {
				if strings.Contains(later.Mnemonic, wm) {
					rec.usedAfter = true
					break
				}
			}
			if rec.usedAfter {
				break
			}
		}
	}

	var out []model.TextureCandidateFinding
	for _, rec := range records {
		if rec.usedAfter {
			continue // USED != NOT_USED: no finding
		}
		group := byBase[rec.base]
		if len(group) < 2 {
			continue
		}
		offsets := make([]int, 0, len(group))
		seen := make(map[int]bool)
		for _, g := range group {
			if !seen[g.offset] {
				seen[g.offset] = true
				offsets = append(offsets, g.offset)
			}
		}
		sort.Ints(offsets)
		spatial := len(offsets) >= 2
		for i := 1; i < len(offsets) && spatial; i++ {
			delta := int64(offsets[i] - offsets[i-1])
			if !spatialOffsetDeltas[delta] {
				spatial = false
			}
		}
		if !spatial {
			continue
		}
		out = append(out, model.TextureCandidateFinding{
			FindingBase:     model.NewFindingBase(kt.Kernel, rec.line, rec.pcOffset, model.SeverityInfo),
			Register:        rec.written,
			BaseRegister:    rec.base,
			SpatialLocality: spatial,
		})
	}
	return out
}

// isReadModifyWrite reports whether reg is genuinely read as a source
// operand of a MUL/ADD-family rewrite of itself (e.g. "R8, R8, R10"), as
// opposed to a write that merely shares the mnemonic substring while reading
// different registers (e.g. "R8, R3, R10"). The first register token is the
// destination and is excluded from the comparison.
func isReadModifyWrite(operands, reg string) bool {
	regs := operandRegisters(operands)
	if len(regs) < 2 {
		return false
	}
	for _, src := range regs[1:] {
		if src == reg {
			return true
		}
	}
	return false
}
