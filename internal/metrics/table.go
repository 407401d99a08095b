// Package metrics loads the Nsight Compute per-kernel hardware-counter
// report and derives the Memory-Flow quantities from it (§4.4, §4.9).
package metrics

import (
	"bufio"
	"encoding/csv"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// fieldByMetricName maps the raw Nsight Compute "Metric Name" column value
// onto the MetricRecord field it populates (§6.2). Field order mirrors the
// struct declaration order so the two stay easy to cross-check.
var fieldByMetricName = map[string]string{
	"smsp__warps_active.sum":                                                "SmspWarpsActive",
	"smsp__warp_issue_stalled_barrier_per_warp_active.pct":                   "SmspWarpIssueStalledBarrierPerWarpActive",
	"smsp__warp_issue_stalled_membar_per_warp_active.pct":                    "SmspWarpIssueStalledMembarPerWarpActive",
	"smsp__warp_issue_stalled_short_scoreboard_per_warp_active.pct":          "SmspWarpIssueStalledShortScoreboardPerWarpActive",
	"smsp__warp_issue_stalled_wait_per_warp_active.pct":                      "SmspWarpIssueStalledWaitPerWarpActive",
	"smsp__thread_inst_executed_per_inst_executed.ratio":                     "SmspThreadInstExecutedPerInstExecuted",
	"sm__sass_branch_targets.avg":                                            "SmSassBranchTargets",
	"sm__sass_branch_targets_threads_divergent.avg":                          "SmSassBranchTargetsThreadsDivergent",
	"smsp__warp_issue_stalled_imc_miss_per_warp_active.pct":                  "SmspWarpIssueStalledImcMissPerWarpActive",
	"smsp__warp_issue_stalled_long_scoreboard_per_warp_active.pct":           "SmspWarpIssueStalledLongScoreboardPerWarpActive",
	"sm__warps_active.avg.pct_of_peak_sustained_active":                      "SmWarpsActive",
	"smsp__warp_issue_stalled_lg_throttle_per_warp_active.pct":               "SmspWarpIssueStalledLgThrottlePerWarpActive",
	"smsp__warp_issue_stalled_mio_throttle_per_warp_active.pct":              "SmspWarpIssueStalledMioThrottlePerWarpActive",
	"smsp__warp_issue_stalled_tex_throttle_per_warp_active.pct":              "SmspWarpIssueStalledTexThrottlePerWarpActive",
	"sm__sass_inst_executed_op_global_red.sum":                               "SmSassInstExecutedOpGlobalRed",
	"sm__sass_inst_executed_op_shared_atom.sum":                              "SmSassInstExecutedOpSharedAtom",
	"l1tex__data_pipe_lsu_wavefronts_mem_shared_op_ld.sum":                    "L1texDataPipeLsuWavefrontsMemSharedOpLd",
	"sm__sass_inst_executed_op_shared_ld.sum":                                "SmSassInstExecutedOpSharedLd",
	"l1tex__data_pipe_lsu_wavefronts_mem_shared_op_st.sum":                    "L1texDataPipeLsuWavefrontsMemSharedOpSt",
	"sm__sass_inst_executed_op_shared_st.sum":                                "SmSassInstExecutedOpSharedSt",
	"smsp__sass_average_data_bytes_per_wavefront_mem_shared.pct":              "SmspSassAverageDataBytesPerWavefrontMemShared",
	"smsp__inst_executed_op_local_ld.sum":                                    "SmspInstExecutedOpLocalLd",
	"smsp__inst_executed_op_local_st.sum":                                    "SmspInstExecutedOpLocalSt",
	"lts__t_sectors_op_atom.sum":                                             "LtsTSectorsOpAtom",
	"lts__t_sectors_op_read.sum":                                             "LtsTSectorsOpRead",
	"lts__t_sectors_op_red.sum":                                              "LtsTSectorsOpRed",
	"lts__t_sectors_op_write.sum":                                            "LtsTSectorsOpWrite",
	"l1tex__t_sector_hit_rate.pct":                                           "L1texTSectorHitRate",
	"sm__sass_inst_executed_op_global_ld.sum":                                "SmSassInstExecutedOpGlobalLd",
	"l1tex__t_sectors_pipe_lsu_mem_global_op_ld.sum":                          "L1texTSectorsPipeLsuMemGlobalOpLd",
	"l1tex__t_sector_pipe_lsu_mem_global_op_ld_hit_rate.pct":                  "L1texTSectorPipeLsuMemGlobalOpLdHitRate",
	"lts__t_sector_op_read_hit_rate.pct":                                     "LtsTSectorOpReadHitRate",
	"l1tex__t_sectors_pipe_lsu_mem_local_op_ld.sum":                          "L1texTSectorsPipeLsuMemLocalOpLd",
	"l1tex__t_sector_pipe_lsu_mem_local_op_ld_hit_rate.pct":                  "L1texTSectorPipeLsuMemLocalOpLdHitRate",
	"l1tex__t_sectors_pipe_lsu_mem_global_op_red.sum":                        "L1texTSectorsPipeLsuMemGlobalOpRed",
	"l1tex__t_sectors_pipe_lsu_mem_global_op_atom.sum":                       "L1texTSectorsPipeLsuMemGlobalOpAtom",
	"l1tex__t_sector_pipe_lsu_mem_global_op_red_hit_rate.pct":                "L1texTSectorPipeLsuMemGlobalOpRedHitRate",
	"l1tex__t_sector_pipe_lsu_mem_global_op_atom_hit_rate.pct":               "L1texTSectorPipeLsuMemGlobalOpAtomHitRate",
	"lts__t_sector_op_red_hit_rate.pct":                                      "LtsTSectorOpRedHitRate",
	"lts__t_sector_op_atom_hit_rate.pct":                                     "LtsTSectorOpAtomHitRate",
	"sm__sass_data_bytes_mem_shared_op_atom.sum":                             "SmSassDataBytesMemSharedOpAtom",
	"l1tex__m_xbar2l1tex_read_sectors_mem_lg_op_ld.sum.pct_of_peak_sustained_elapsed": "L1texM_Xbar2l1texReadSectorsMemLgOpLdBandwidth",
	"l1tex__average_t_sectors_per_request_pipe_lsu_mem_global_op_ld.ratio":   "L1texAverageTSectorsPerRequestPipeLsuMemGlobalOpLd",
	"smsp__inst_executed_op_global_ld.sum":                                   "SmspInstExecutedOpGlobalLd",
	"memory_l2_theoretical_sectors_global":                                   "MemoryL2TheoreticalSectorsGlobal",
	"memory_l2_theoretical_sectors_global_ideal":                             "MemoryL2TheoreticalSectorsGlobalIdeal",
	"memory_l1_wavefronts_shared":                                            "MemoryL1WavefrontsShared",
	"memory_l1_wavefronts_shared_ideal":                                      "MemoryL1WavefrontsSharedIdeal",
	"sm__sass_inst_executed_op_texture.sum":                                  "SmSassInstExecutedOpTexture",
	"l1tex__t_sectors_pipe_tex_mem_texture.sum":                              "L1texTSectorsPipeTexMemTexture",
	"l1tex__t_sector_pipe_tex_mem_texture_op_tex_hit_rate.pct":               "L1texTSectorPipeTexMemTextureOpTexHitRate",
	"smsp__sass_average_data_bytes_per_wavefront_mem_shared_op_ld.pct":       "SmspSassAverageDataBytesPerWavefrontMemSharedOpLd",
}

// LoadTable parses the metrics report into a per-kernel MetricRecord map
// (§4.4). The report is a 3-row-preamble CSV whose "Metric Name"/"Metric
// Value" columns are located by header name, and whose values use German
// locale formatting (`.` thousands separator, `,` decimal point).
//
// Per the decision recorded for this loader (SPEC_FULL.md), the header row
// is read with encoding/csv and LazyQuotes; each data row is parsed with
// encoding/csv's strict quoting first, and a row that fails that parse falls
// back to naive comma-splitting so a single malformed line is still read.
func LoadTable(r io.Reader) map[string]model.MetricRecord {
	out := make(map[string]model.MetricRecord)

	content, err := io.ReadAll(r)
	if err != nil {
		return out
	}
	lines := strings.SplitN(string(content), "\n", 4)
	if len(lines) < 4 {
		return out
	}
	header := lines[2]
	body := lines[3]

	cr := csv.NewReader(strings.NewReader(header))
	cr.LazyQuotes = true
	headerRow, err := cr.Read()
	nameCol, valCol := -1, -1
	if err == nil {
		for i, h := range headerRow {
			switch strings.TrimSpace(h) {
			case "Metric Name":
				nameCol = i
			case "Metric Value":
				valCol = i
			}
		}
	}
	if nameCol < 0 || valCol < 0 {
		nameCol, valCol = 9, 11 // documented column positions, fallback
	}

	kernelCol := -1
	for i, h := range headerRow {
		if strings.TrimSpace(h) == "Kernel Name" {
			kernelCol = i
		}
	}

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, ok := parseMetricRow(line)
		if !ok || kernelCol < 0 || kernelCol >= len(fields) || nameCol >= len(fields) || valCol >= len(fields) {
			continue
		}
		kernel := strings.TrimSpace(fields[kernelCol])
		metricName := strings.TrimSpace(fields[nameCol])
		value, ok := parseGermanFloat(fields[valCol])
		if kernel == "" || !ok {
			continue
		}
		fieldName, known := fieldByMetricName[metricName]
		if !known {
			continue
		}
		rec := out[kernel]
		setField(&rec, fieldName, value)
		out[kernel] = rec
	}
	return out
}

// parseMetricRow tries encoding/csv (strict quoting) first and falls back to
// a naive comma split, so that one row with unbalanced quotes doesn't drop the file.
func parseMetricRow(line string) ([]string, bool) {
	cr := csv.NewReader(strings.NewReader(line))
	fields, err := cr.Read()
	if err == nil {
		return fields, true
	}
	return strings.Split(line, ","), true
}

// parseGermanFloat converts a German-locale numeric string ("1.234,56") to
// a float64: strip the `"` quote wrapper and `.` thousands separators, then
// swap the `,` decimal point for `.`.
func parseGermanFloat(s string) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func setField(rec *model.MetricRecord, name string, value float64) {
	v := reflect.ValueOf(rec).Elem().FieldByName(name)
	if v.IsValid() && v.CanSet() {
		v.SetFloat(value)
	}
}

// metricNameByField is fieldByMetricName inverted, built once, so the
// emitter can round-trip a MetricRecord back to the raw metric-name keys
// §6.3's output schema names ("<metric_name>": <value>).
var metricNameByField = invertFieldMap()

func invertFieldMap() map[string]string {
	out := make(map[string]string, len(fieldByMetricName))
	for metricName, field := range fieldByMetricName {
		out[field] = metricName
	}
	return out
}

// Flatten dumps every mapped field of a MetricRecord, zero values included,
// keyed by its raw Nsight Compute metric name (§6.3's kernel-level "metrics"
// sub-object).
func Flatten(rec model.MetricRecord) map[string]float64 {
	out := make(map[string]float64, len(metricNameByField))
	v := reflect.ValueOf(rec)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, ok := metricNameByField[t.Field(i).Name]
		if !ok {
			continue
		}
		out[name] = v.Field(i).Float()
	}
	return out
}
