package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// KernelSummary is one kernel's rolled-up results across every analysis kind,
// the input to GenerateAIPrompt. AnalysisCounts maps analysis name (the
// detect.Name* constants) to its occurrence count for this kernel.
type KernelSummary struct {
	Kernel         string
	Deadlock       bool
	AnalysisCounts map[string]int
	Stalls         map[string]float64 // canonical tag -> percent, kernel-level rollup
}

// GenerateAIPrompt turns a kernel's analysis summary into an LLM-ready
// natural-language prompt (a supplemented, off-by-default feature — the
// detectors themselves only ever emit structured findings).
func GenerateAIPrompt(s KernelSummary) *model.AIContext {
	ctx := &model.AIContext{
		Methodology:   "Static/dynamic SASS+PTX kernel profiling, correlated against PC-sampled warp stalls and Nsight Compute counters",
		KnownPatterns: knownKernelAntiPatterns(),
	}

	var sb strings.Builder
	sb.WriteString("You are a CUDA kernel performance expert. ")
	sb.WriteString("Analyze the following per-kernel bottleneck report and provide:\n")
	sb.WriteString("1. Root cause analysis for each flagged category\n")
	sb.WriteString("2. Concrete code changes (register allocation, memory space, vectorization width)\n")
	sb.WriteString("3. Expected impact ranked by occurrence count and stall percentage\n")
	sb.WriteString("4. Whether the deadlock flag (if set) needs urgent attention\n\n")

	sb.WriteString(fmt.Sprintf("Kernel: %s\n", s.Kernel))
	if s.Deadlock {
		sb.WriteString("DEADLOCK FLAG: possible atomic-CAS/predicated-branch/SYNC deadlock detected.\n")
	}

	if len(s.AnalysisCounts) > 0 {
		names := make([]string, 0, len(s.AnalysisCounts))
		for name := range s.AnalysisCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("\nFindings by category:\n")
		for _, name := range names {
			sb.WriteString(fmt.Sprintf("  %s: %d occurrence(s)\n", name, s.AnalysisCounts[name]))
		}
	}

	if len(s.Stalls) > 0 {
		tags := make([]string, 0, len(s.Stalls))
		for tag := range s.Stalls {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool { return s.Stalls[tags[i]] > s.Stalls[tags[j]] })
		sb.WriteString("\nWarp stall breakdown (by canonical reason):\n")
		for _, tag := range tags {
			sb.WriteString(fmt.Sprintf("  %s: %.1f%%\n", tag, s.Stalls[tag]))
		}
	}

	sb.WriteString("\nCite specific SASS/PTX instructions where the fix applies.\n")

	ctx.Prompt = sb.String()
	return ctx
}

// knownKernelAntiPatterns lists common GPU-kernel performance anti-patterns,
// the kernel-analysis analog of the teacher's systems-level pattern catalog.
func knownKernelAntiPatterns() []string {
	return []string{
		"K1: Register spilling to local memory (STL/LDL) collapsing occupancy",
		"K2: Warp divergence on a branch whose target crosses a loop boundary",
		"K3: Global atomics serialized inside a loop instead of staged through shared memory",
		"K4: Uncoalesced global loads missing __restrict__/read-only-cache annotation",
		"K5: Strided LDG loads that should be batched as a single wide (.64/.128) load",
		"K6: Repeated global loads of the same address that should be staged in shared memory",
		"K7: Spatial-locality texture candidate never routed through the texture unit",
		"K8: Atomic-CAS retry loop with a predicated branch guarding the exchange (possible deadlock)",
		"K9: Unnecessary I2F/F2I/F2F conversions on a hot path",
	}
}
