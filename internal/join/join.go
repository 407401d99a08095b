// Package join attaches stall percentages, live-register pressure, and
// metric/memory-flow data onto findings after detection runs (§4.8).
package join

import (
	"reflect"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/detect"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/metrics"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/stall"
)

// Precision controls how a finding is matched against stall samples. Most
// detectors join at line granularity; the five detectors that reason about
// one specific register (spill, texture, shared, vectorize, restrict) join
// at the exact pc-offset instead (§4.8) — there is no "sass text" field on
// model.StallSample to register-match against, so an exact pc-offset match
// is the instruction-precise equivalent: a pc-offset identifies exactly one
// instruction, which is strictly narrower than a line that may hold several.
type Precision int

const (
	LinePrecision Precision = iota
	InstructionPrecision
)

// precisionByDetector records which of the nine analyses join at
// instruction precision; everything absent here defaults to LinePrecision.
var precisionByDetector = map[string]Precision{
	detect.NameRegisterSpilling: InstructionPrecision,
	detect.NameUseTexture:       InstructionPrecision,
	detect.NameUseShared:        InstructionPrecision,
	detect.NameVectorization:    InstructionPrecision,
	detect.NameUseRestrict:      InstructionPrecision,
}

// Kernel bundles the per-kernel join inputs produced by the loaders.
type Kernel struct {
	Stalls   []model.StallSample
	LiveRegs map[string]model.LiveRegRecord // keyed by pc-offset
	Metrics  *model.MetricRecord
}

// Apply attaches stalls, pressure, and metrics onto every finding produced
// for one kernel by one detector (§4.8). Any input the caller doesn't have
// (no stall samples, no live-register data, no metrics record) is passed as
// nil/empty and simply contributes no sub-object, per §7's "missing
// kernel-level correlation" rule.
func Apply(detectorName string, findings []model.Finding, k Kernel) {
	precision := precisionByDetector[detectorName]
	plan := metricPlanByDetector[detectorName]

	for _, f := range findings {
		base := f.Base()
		applyStalls(base, precision, k.Stalls)
		applyPressure(base, k.LiveRegs)
		applyMetrics(base, k.Metrics, plan.fields, plan.flowKind)
	}
}

func applyStalls(base *model.FindingBase, precision Precision, samples []model.StallSample) {
	if len(samples) == 0 {
		return
	}
	var matched []model.StallSample
	for _, s := range samples {
		if precision == InstructionPrecision {
			if s.PCOffset == base.PCOffset {
				matched = append(matched, s)
			}
			continue
		}
		if s.SourceLine == base.SourceLine {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return
	}

	counts := make(map[string]int)
	total := 0
	for _, s := range matched {
		for _, p := range s.Raw {
			tag := stall.Normalize(p.Name)
			counts[tag] += p.Count
			total += p.Count
		}
	}
	if total == 0 {
		return
	}
	pct := make(map[string]float64, len(counts))
	for tag, c := range counts {
		pct[tag] = 100 * float64(c) / float64(total)
	}
	base.Stalls = pct
}

func applyPressure(base *model.FindingBase, liveRegs map[string]model.LiveRegRecord) {
	if liveRegs == nil {
		return
	}
	rec, ok := liveRegs[base.PCOffset]
	if !ok {
		return
	}
	increase := rec.Delta
	if increase < 0 {
		increase = 0
	}
	base.Pressure = &model.Pressure{
		UsedRegisterCount:        rec.Sum(),
		RegisterPressureIncrease: increase,
	}
}

func applyMetrics(base *model.FindingBase, rec *model.MetricRecord, fields []string, flowKind string) {
	if rec == nil {
		return
	}
	out := make(map[string]float64)
	if len(fields) > 0 {
		v := reflect.ValueOf(*rec)
		for _, name := range fields {
			fv := v.FieldByName(name)
			if fv.IsValid() {
				out[name] = fv.Float()
			}
		}
	}
	for k, v := range flowFields(*rec, flowKind) {
		out[k] = v
	}
	if len(out) > 0 {
		base.Metrics = out
	}
}

// flowFields computes the Memory-Flow Derivation (§4.9) relevant to one
// detector and flattens it into the same flat metrics map, prefixed by its
// derivation name so it doesn't collide with a raw counter field.
func flowFields(rec model.MetricRecord, kind string) map[string]float64 {
	switch kind {
	case "load":
		return flatten("load_flow.", metrics.LoadDataFlow(rec))
	case "atomic":
		return flatten("atomic_flow.", metrics.AtomicDataFlow(rec))
	case "texture":
		return flatten("texture_flow.", metrics.TextureDataFlow(rec))
	case "shared":
		out := flatten("shared_flow.", metrics.SharedDataFlow(rec))
		for k, v := range flatten("bank_conflict.", metrics.BankConflict(rec)) {
			out[k] = v
		}
		return out
	case "vectorize":
		out := flatten("load_flow.", metrics.LoadDataFlow(rec))
		for k, v := range flatten("coalescing.", metrics.CoalescingExcess(rec)) {
			out[k] = v
		}
		return out
	default:
		return nil
	}
}

// flatten turns a Memory-Flow Derivation struct into a flat map keyed by its
// json tag (or field name), prefixed by the derivation's own name.
func flatten(prefix string, v interface{}) map[string]float64 {
	out := make(map[string]float64)
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			name = strings.Split(tag, ",")[0]
		}
		switch rv.Field(i).Kind() {
		case reflect.Float64:
			out[prefix+name] = rv.Field(i).Float()
		case reflect.Int:
			out[prefix+name] = float64(rv.Field(i).Int())
		}
	}
	return out
}

// metricPlan names, for one analysis, the raw MetricRecord fields to attach
// directly (§6.2's warp-issue/occupancy/branch baseline) and which
// Memory-Flow Derivation (§4.9) to flatten alongside them.
type metricPlan struct {
	fields   []string
	flowKind string
}

// metricPlanByDetector maps each analysis to its metricPlan. A detector
// absent here attaches no metrics sub-object.
var metricPlanByDetector = map[string]metricPlan{}

func init() {
	baseline := []string{
		"SmspWarpIssueStalledBarrierPerWarpActive",
		"SmspWarpIssueStalledMembarPerWarpActive",
		"SmspWarpIssueStalledShortScoreboardPerWarpActive",
		"SmspWarpIssueStalledWaitPerWarpActive",
		"SmspWarpIssueStalledImcMissPerWarpActive",
		"SmspWarpIssueStalledLongScoreboardPerWarpActive",
		"SmspWarpIssueStalledLgThrottlePerWarpActive",
		"SmspWarpIssueStalledMioThrottlePerWarpActive",
		"SmspWarpIssueStalledTexThrottlePerWarpActive",
		"SmWarpsActive",
		"SmspWarpsActive",
	}
	divergence := append(append([]string{}, baseline...), "SmSassBranchTargets", "SmSassBranchTargetsThreadsDivergent")

	metricPlanByDetector[detect.NameDatatypeConversion] = metricPlan{fields: baseline}
	metricPlanByDetector[detect.NameRegisterSpilling] = metricPlan{fields: baseline, flowKind: "load"}
	metricPlanByDetector[detect.NameWarpDivergence] = metricPlan{fields: divergence}
	metricPlanByDetector[detect.NameUseRestrict] = metricPlan{fields: baseline, flowKind: "load"}
	metricPlanByDetector[detect.NameUseShared] = metricPlan{fields: baseline, flowKind: "shared"}
	metricPlanByDetector[detect.NameUseTexture] = metricPlan{fields: baseline, flowKind: "texture"}
	metricPlanByDetector[detect.NameVectorization] = metricPlan{fields: baseline, flowKind: "vectorize"}
	metricPlanByDetector[detect.NameGlobalAtomics] = metricPlan{fields: baseline, flowKind: "atomic"}
}

// KernelRollup aggregates across every stall sample for a kernel (unlike
// Apply, which works per finding) and flattens the whole metric record — the
// kernel-level "stalls"/"metrics" sub-objects shown in §6.3's schema example,
// which sit beside "occurrences" rather than inside each one.
func KernelRollup(samples []model.StallSample, rec *model.MetricRecord) (stalls, metricsOut map[string]float64) {
	if len(samples) > 0 {
		counts := make(map[string]int)
		total := 0
		for _, s := range samples {
			for _, p := range s.Raw {
				counts[stall.Normalize(p.Name)] += p.Count
				total += p.Count
			}
		}
		if total > 0 {
			stalls = make(map[string]float64, len(counts))
			for tag, c := range counts {
				stalls[tag] = 100 * float64(c) / float64(total)
			}
		}
	}
	if rec != nil {
		metricsOut = metrics.Flatten(*rec)
	}
	return stalls, metricsOut
}
