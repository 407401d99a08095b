// Package liveregs builds the per-(kernel, pc-offset) live-register
// pressure index from the disassembly's inline annotations (§4.6).
package liveregs

import "github.com/dmitriimaksimovdevelop/kernelscope/internal/model"

// Index maps a kernel's instruction table onto its live-register pressure
// records, keyed by pc-offset (§4.6). Instructions lacking a live-register
// annotation contribute no entry. delta is computed in kernel (file) order,
// independent of pc-offset numeric ordering.
func Index(tables map[string]model.KernelTables) map[string]map[string]model.LiveRegRecord {
	out := make(map[string]map[string]model.LiveRegRecord)

	for kernel, kt := range tables {
		if kernel == "" {
			continue
		}
		perOffset := make(map[string]model.LiveRegRecord)
		prevSum := 0
		first := true
		for _, inst := range kt.Instructions {
			if inst.LiveRegs == nil {
				continue
			}
			sum := inst.LiveRegs.Sum()
			delta := sum
			if !first {
				delta = sum - prevSum
			}
			perOffset[inst.PCOffset] = model.LiveRegRecord{
				General:        inst.LiveRegs.General,
				Predicate:      inst.LiveRegs.Predicate,
				UniformGeneral: inst.LiveRegs.UniformGeneral,
				Delta:          delta,
			}
			prevSum = sum
			first = false
		}
		if len(perOffset) > 0 {
			out[kernel] = perOffset
		}
	}

	return out
}
