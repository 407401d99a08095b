package join

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/detect"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

func newConversionFinding(line int, pc string) *model.DatatypeConversionFinding {
	return &model.DatatypeConversionFinding{
		FindingBase: model.NewFindingBase("kernelA", line, pc, model.SeverityInfo),
		Category:    "I2F",
	}
}

func newSpillFinding(line int, pc string) *model.SpillFinding {
	return &model.SpillFinding{
		FindingBase: model.NewFindingBase("kernelA", line, pc, model.SeverityWarning),
	}
}

func TestApplyLinePrecisionMatchesBySourceLine(t *testing.T) {
	f := newConversionFinding(18, "00a0")
	samples := []model.StallSample{
		{Kernel: "kernelA", SourceLine: 18, PCOffset: "ffff", Raw: []model.RawStallPair{{Name: "stalled_wait", Count: 10}}},
		{Kernel: "kernelA", SourceLine: 99, PCOffset: "00a0", Raw: []model.RawStallPair{{Name: "stalled_wait", Count: 99}}},
	}
	Apply(detect.NameDatatypeConversion, []model.Finding{f}, Kernel{Stalls: samples})
	if f.Stalls["stalled_wait"] != 100 {
		t.Errorf("Stalls = %+v, want the line-18 sample only (100%% stalled_wait)", f.Stalls)
	}
}

func TestApplyInstructionPrecisionMatchesByPCOffsetNotLine(t *testing.T) {
	f := newSpillFinding(18, "00a0")
	samples := []model.StallSample{
		{Kernel: "kernelA", SourceLine: 18, PCOffset: "ffff", Raw: []model.RawStallPair{{Name: "stalled_wait", Count: 10}}},
		{Kernel: "kernelA", SourceLine: 99, PCOffset: "00a0", Raw: []model.RawStallPair{{Name: "stalled_wait", Count: 99}}},
	}
	Apply(detect.NameRegisterSpilling, []model.Finding{f}, Kernel{Stalls: samples})
	if f.Stalls["stalled_wait"] != 100 {
		t.Errorf("Stalls = %+v, want the pc-offset 00a0 sample only, even though its line (99) differs", f.Stalls)
	}
}

func TestApplyScenario6StallPercentages(t *testing.T) {
	// literal worked example: one sample at line 18 with
	// [(mio_throttle, 3), (mio_throttle_not_issued, 1), (wait, 4)] collapses
	// to stalled_mio_throttle: 50.0, stalled_wait: 50.0
	f := newConversionFinding(18, "0000")
	samples := []model.StallSample{
		{
			Kernel:     "kernelA",
			SourceLine: 18,
			Raw: []model.RawStallPair{
				{Name: "smsp__warp_issue_stalled_mio_throttle_per_warp_active", Count: 3},
				{Name: "smsp__warp_issue_stalled_mio_throttle_not_issued_per_warp_active", Count: 1},
				{Name: "smsp__warp_issue_stalled_wait_per_warp_active", Count: 4},
			},
		},
	}
	Apply(detect.NameDatatypeConversion, []model.Finding{f}, Kernel{Stalls: samples})
	if f.Stalls["stalled_mio_throttle"] != 50 {
		t.Errorf("stalled_mio_throttle = %v, want 50", f.Stalls["stalled_mio_throttle"])
	}
	if f.Stalls["stalled_wait"] != 50 {
		t.Errorf("stalled_wait = %v, want 50", f.Stalls["stalled_wait"])
	}
}

func TestApplyNoMatchingSamplesLeavesStallsNil(t *testing.T) {
	f := newConversionFinding(18, "0000")
	samples := []model.StallSample{{Kernel: "kernelA", SourceLine: 99, Raw: []model.RawStallPair{{Name: "stalled_wait", Count: 1}}}}
	Apply(detect.NameDatatypeConversion, []model.Finding{f}, Kernel{Stalls: samples})
	if f.Stalls != nil {
		t.Errorf("expected nil Stalls with no matching sample, got %+v", f.Stalls)
	}
}

func TestApplyPressureSetsIncreaseFloorsAtZero(t *testing.T) {
	f := newConversionFinding(18, "00a0")
	liveRegs := map[string]model.LiveRegRecord{
		"00a0": {General: 10, Predicate: 1, UniformGeneral: 0, Delta: -5},
	}
	Apply(detect.NameDatatypeConversion, []model.Finding{f}, Kernel{LiveRegs: liveRegs})
	if f.Pressure == nil {
		t.Fatal("expected Pressure to be set")
	}
	if f.Pressure.UsedRegisterCount != 11 {
		t.Errorf("UsedRegisterCount = %d, want 11", f.Pressure.UsedRegisterCount)
	}
	if f.Pressure.RegisterPressureIncrease != 0 {
		t.Errorf("RegisterPressureIncrease = %d, want 0 (negative delta floors at zero)", f.Pressure.RegisterPressureIncrease)
	}
}

func TestApplyPressureMissingPCOffsetLeavesNil(t *testing.T) {
	f := newConversionFinding(18, "00a0")
	Apply(detect.NameDatatypeConversion, []model.Finding{f}, Kernel{LiveRegs: map[string]model.LiveRegRecord{"ffff": {Delta: 2}}})
	if f.Pressure != nil {
		t.Errorf("expected nil Pressure for an unmatched pc-offset, got %+v", f.Pressure)
	}
}

func TestApplyMetricsAttachesBaselineFields(t *testing.T) {
	f := newConversionFinding(18, "0000")
	rec := &model.MetricRecord{SmspWarpIssueStalledWaitPerWarpActive: 42}
	Apply(detect.NameDatatypeConversion, []model.Finding{f}, Kernel{Metrics: rec})
	if f.Metrics["SmspWarpIssueStalledWaitPerWarpActive"] != 42 {
		t.Errorf("Metrics = %+v, want SmspWarpIssueStalledWaitPerWarpActive: 42", f.Metrics)
	}
}

func TestApplyMetricsAttachesLoadFlowForRegisterSpilling(t *testing.T) {
	f := newSpillFinding(18, "0000")
	rec := &model.MetricRecord{L1texTSectorsPipeLsuMemGlobalOpLd: 10}
	Apply(detect.NameRegisterSpilling, []model.Finding{f}, Kernel{Metrics: rec})
	if _, ok := f.Metrics["load_flow.global_to_l1_bytes"]; !ok {
		t.Errorf("expected a load_flow.* key for the register-spilling detector, got %+v", f.Metrics)
	}
}

func TestApplyMetricsNilRecordLeavesNil(t *testing.T) {
	f := newConversionFinding(18, "0000")
	Apply(detect.NameDatatypeConversion, []model.Finding{f}, Kernel{})
	if f.Metrics != nil {
		t.Errorf("expected nil Metrics with no metric record, got %+v", f.Metrics)
	}
}

func TestKernelRollupAggregatesAcrossAllSamplesScenario6(t *testing.T) {
	samples := []model.StallSample{
		{Kernel: "kernelA", SourceLine: 18, Raw: []model.RawStallPair{
			{Name: "smsp__warp_issue_stalled_mio_throttle_per_warp_active", Count: 3},
			{Name: "smsp__warp_issue_stalled_mio_throttle_not_issued_per_warp_active", Count: 1},
			{Name: "smsp__warp_issue_stalled_wait_per_warp_active", Count: 4},
		}},
	}
	stalls, _ := KernelRollup(samples, nil)
	if stalls["stalled_mio_throttle"] != 50 || stalls["stalled_wait"] != 50 {
		t.Errorf("rollup stalls = %+v, want 50/50 split", stalls)
	}
}

func TestKernelRollupAggregatesMultipleSamplesTogether(t *testing.T) {
	samples := []model.StallSample{
		{Kernel: "kernelA", SourceLine: 10, Raw: []model.RawStallPair{{Name: "stalled_wait", Count: 1}}},
		{Kernel: "kernelA", SourceLine: 20, Raw: []model.RawStallPair{{Name: "stalled_wait", Count: 3}}},
	}
	stalls, _ := KernelRollup(samples, nil)
	if stalls["stalled_wait"] != 100 {
		t.Errorf("stalled_wait = %v, want 100 (both samples aggregated into one kernel-level total)", stalls["stalled_wait"])
	}
}

func TestKernelRollupNoSamplesLeavesStallsNil(t *testing.T) {
	stalls, _ := KernelRollup(nil, nil)
	if stalls != nil {
		t.Errorf("expected nil stalls with no samples, got %+v", stalls)
	}
}

func TestKernelRollupFlattensFullMetricRecord(t *testing.T) {
	rec := &model.MetricRecord{SmSassInstExecutedOpGlobalLd: 7}
	_, metricsOut := KernelRollup(nil, rec)
	if metricsOut["sm__sass_inst_executed_op_global_ld.sum"] != 7 {
		t.Errorf("rollup metrics = %+v, want the raw metric name key with value 7", metricsOut)
	}
}

func TestKernelRollupNilRecordLeavesMetricsNil(t *testing.T) {
	_, metricsOut := KernelRollup(nil, nil)
	if metricsOut != nil {
		t.Errorf("expected nil metrics with no record, got %+v", metricsOut)
	}
}
