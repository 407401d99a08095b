// Package diff compares two runs of the same kernel analysis and highlights
// which kernels gained or lost occurrences, and which stall percentages
// shifted — e.g. before/after a kernel rewrite.
package diff

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// Change is one detected difference between two runs of the same analysis.
type Change struct {
	Kernel   string  `json:"kernel"`
	Kind     string  `json:"kind"` // "appeared", "disappeared", "stall_shift"
	Detail   string  `json:"detail,omitempty"`
	OldValue float64 `json:"old_value,omitempty"`
	NewValue float64 `json:"new_value,omitempty"`
	DeltaPct float64 `json:"delta_pct,omitempty"`
}

// Report is the comparison between two runs of one analysis kind.
type Report struct {
	Analysis    string   `json:"analysis"`
	Changes     []Change `json:"changes"`
	Appeared    int      `json:"appeared"`
	Disappeared int      `json:"disappeared"`
	StallShifts int      `json:"stall_shifts"`
}

// LoadAnalysisReport reads and parses one analysis kind's JSON output
// (§6.3), as written by internal/output.WriteAnalysisReport.
func LoadAnalysisReport(path string) (model.AnalysisReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var report model.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return report, nil
}

// Compare diffs two runs of the same analysis kind: which kernels gained or
// lost occurrences, and which kernel-level stall percentages shifted beyond
// thresholdPct.
func Compare(analysis string, baseline, current model.AnalysisReport, thresholdPct float64) *Report {
	report := &Report{Analysis: analysis}

	kernels := make(map[string]bool)
	for k := range baseline {
		kernels[k] = true
	}
	for k := range current {
		kernels[k] = true
	}
	names := make([]string, 0, len(kernels))
	for k := range kernels {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, kernel := range names {
		oldKR := baseline[kernel]
		newKR := current[kernel]
		oldCount, newCount := len(oldKR.Occurrences), len(newKR.Occurrences)

		switch {
		case newCount > oldCount:
			report.Changes = append(report.Changes, Change{
				Kernel: kernel, Kind: "appeared",
				Detail:   fmt.Sprintf("occurrence count %d -> %d", oldCount, newCount),
				OldValue: float64(oldCount), NewValue: float64(newCount),
			})
			report.Appeared++
		case newCount < oldCount:
			report.Changes = append(report.Changes, Change{
				Kernel: kernel, Kind: "disappeared",
				Detail:   fmt.Sprintf("occurrence count %d -> %d", oldCount, newCount),
				OldValue: float64(oldCount), NewValue: float64(newCount),
			})
			report.Disappeared++
		}

		shifts := stallShifts(kernel, oldKR.Stalls, newKR.Stalls, thresholdPct)
		report.Changes = append(report.Changes, shifts...)
		report.StallShifts += len(shifts)
	}

	return report
}

func stallShifts(kernel string, oldStalls, newStalls map[string]float64, thresholdPct float64) []Change {
	tags := make(map[string]bool, len(oldStalls)+len(newStalls))
	for t := range oldStalls {
		tags[t] = true
	}
	for t := range newStalls {
		tags[t] = true
	}
	names := make([]string, 0, len(tags))
	for t := range tags {
		names = append(names, t)
	}
	sort.Strings(names)

	var out []Change
	for _, tag := range names {
		oldPct, newPct := oldStalls[tag], newStalls[tag]
		delta := newPct - oldPct
		if math.Abs(delta) < thresholdPct {
			continue
		}
		out = append(out, Change{
			Kernel: kernel, Kind: "stall_shift",
			Detail: tag, OldValue: oldPct, NewValue: newPct, DeltaPct: delta,
		})
	}
	return out
}

// Format renders a Report as a human-readable summary, in the teacher's
// diff-summary style.
func Format(r *Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s diff ===\n", r.Analysis))
	sb.WriteString(fmt.Sprintf("Appeared: %d, Disappeared: %d, Stall shifts: %d\n\n",
		r.Appeared, r.Disappeared, r.StallShifts))

	for _, c := range r.Changes {
		switch c.Kind {
		case "appeared":
			sb.WriteString(fmt.Sprintf("  + %s: %s\n", c.Kernel, c.Detail))
		case "disappeared":
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", c.Kernel, c.Detail))
		case "stall_shift":
			sb.WriteString(fmt.Sprintf("  ~ %s/%s: %.1f%% -> %.1f%% (%+.1f%%)\n",
				c.Kernel, c.Detail, c.OldValue, c.NewValue, c.DeltaPct))
		}
	}
	return sb.String()
}
