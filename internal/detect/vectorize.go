package detect

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

type vectorizeGroupKey struct {
	line int
	base string
}

type vectorizeGroup struct {
	key      vectorizeGroupKey
	width    string
	offsets  map[int]bool
	firstPC  string
}

// Vectorize runs the vectorization-candidate detector (§4.7.9): several
// 32-bit LDG.* loads against the same base register, on the same source
// line, at consecutive offsets — a single wider load could replace them.
func Vectorize(kt model.KernelTables) []model.VectorizeFinding {
	if kt.Kernel == "" {
		return nil
	}
	groups := make(map[vectorizeGroupKey]*vectorizeGroup)
	var order []vectorizeGroupKey

	for _, inst := range kt.Instructions {
		if !strings.HasPrefix(inst.Mnemonic, "LDG") {
			continue
		}
		m := unrollOffsetRe.FindStringSubmatch(inst.Operands)
		if m == nil {
			continue
		}
		base := m[1]
		offset, _ := strconv.ParseInt(strings.TrimPrefix(m[2], "0x"), 16, 64)

		width := "VEC_32"
		switch {
		case strings.Contains(inst.Mnemonic, ".128"):
			width = "VEC_128"
		case strings.Contains(inst.Mnemonic, ".64"):
			width = "VEC_64"
		}

		key := vectorizeGroupKey{line: inst.SourceLine, base: base}
		g, ok := groups[key]
		if !ok {
			g = &vectorizeGroup{key: key, width: width, offsets: make(map[int]bool), firstPC: inst.PCOffset}
			groups[key] = g
			order = append(order, key)
		}
		g.offsets[int(offset)] = true
	}

	var out []model.VectorizeFinding
	for _, key := range order {
		g := groups[key]
		if g.width != "VEC_32" {
			continue
		}
		nonZero := 0
		for off := range g.offsets {
			if off != 0 {
				nonZero++
			}
		}
		if nonZero == 0 {
			continue
		}
		out = append(out, model.VectorizeFinding{
			FindingBase:            model.NewFindingBase(kt.Kernel, key.line, g.firstPC, model.SeverityInfo),
			BaseRegister:           key.base,
			AdjacentMemoryAccesses: nonZero,
			RegisterLoadType:       g.width,
		})
	}
	// deterministic order for output stability (§5): source-line then pc-offset
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceLine != out[j].SourceLine {
			return out[i].SourceLine < out[j].SourceLine
		}
		return out[i].PCOffset < out[j].PCOffset
	})
	return out
}
