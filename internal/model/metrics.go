package model

// MetricRecord holds the catalog of named per-kernel hardware-counter
// values (§6.2). All fields are doubles; missing fields default to zero.
// Field names are CamelCase renderings of the Nsight Compute metric names;
// the loader maps a CSV metric-name column onto a struct field through the
// fieldByMetricName table in internal/metrics.
type MetricRecord struct {
	SmspWarpsActive                                           float64
	SmspWarpIssueStalledBarrierPerWarpActive                  float64
	SmspWarpIssueStalledMembarPerWarpActive                   float64
	SmspWarpIssueStalledShortScoreboardPerWarpActive          float64
	SmspWarpIssueStalledWaitPerWarpActive                     float64
	SmspThreadInstExecutedPerInstExecuted                     float64
	SmSassBranchTargets                                       float64
	SmSassBranchTargetsThreadsDivergent                       float64
	SmspWarpIssueStalledImcMissPerWarpActive                  float64
	SmspWarpIssueStalledLongScoreboardPerWarpActive           float64
	SmWarpsActive                                             float64
	SmspWarpIssueStalledLgThrottlePerWarpActive               float64
	SmspWarpIssueStalledMioThrottlePerWarpActive              float64
	SmspWarpIssueStalledTexThrottlePerWarpActive              float64
	SmSassInstExecutedOpGlobalRed                             float64
	SmSassInstExecutedOpSharedAtom                            float64
	L1texDataPipeLsuWavefrontsMemSharedOpLd                   float64
	SmSassInstExecutedOpSharedLd                              float64
	L1texDataPipeLsuWavefrontsMemSharedOpSt                   float64
	SmSassInstExecutedOpSharedSt                               float64
	SmspSassAverageDataBytesPerWavefrontMemShared             float64
	SmspInstExecutedOpLocalLd                                 float64
	SmspInstExecutedOpLocalSt                                 float64
	LtsTSectorsOpAtom                                         float64
	LtsTSectorsOpRead                                         float64
	LtsTSectorsOpRed                                          float64
	LtsTSectorsOpWrite                                        float64
	L1texTSectorHitRate                                       float64
	SmSassInstExecutedOpGlobalLd                              float64
	L1texTSectorsPipeLsuMemGlobalOpLd                         float64
	L1texTSectorPipeLsuMemGlobalOpLdHitRate                   float64
	LtsTSectorOpReadHitRate                                   float64
	L1texTSectorsPipeLsuMemLocalOpLd                          float64
	L1texTSectorPipeLsuMemLocalOpLdHitRate                    float64
	L1texTSectorsPipeLsuMemGlobalOpRed                        float64
	L1texTSectorsPipeLsuMemGlobalOpAtom                       float64
	L1texTSectorPipeLsuMemGlobalOpRedHitRate                  float64
	L1texTSectorPipeLsuMemGlobalOpAtomHitRate                 float64
	LtsTSectorOpRedHitRate                                    float64
	LtsTSectorOpAtomHitRate                                   float64
	SmSassDataBytesMemSharedOpAtom                             float64
	L1texM_Xbar2l1texReadSectorsMemLgOpLdBandwidth            float64
	L1texAverageTSectorsPerRequestPipeLsuMemGlobalOpLd        float64
	SmspInstExecutedOpGlobalLd                                float64
	MemoryL2TheoreticalSectorsGlobal                          float64
	MemoryL2TheoreticalSectorsGlobalIdeal                     float64
	MemoryL1WavefrontsShared                                  float64
	MemoryL1WavefrontsSharedIdeal                             float64
	SmSassInstExecutedOpTexture                               float64
	L1texTSectorsPipeTexMemTexture                            float64
	L1texTSectorPipeTexMemTextureOpTexHitRate                 float64
	SmspSassAverageDataBytesPerWavefrontMemSharedOpLd         float64
}

// StallSample is one PC-sampling row, preserved with its raw (issued /
// not-issued) stall-reason pairs for downstream normalization (§3, §4.5).
type StallSample struct {
	Kernel     string
	PCOffset   string
	SourceLine int
	Raw        []RawStallPair
}

// RawStallPair is a single (stall-reason, count) entry as it appeared in
// the PC-sampling report, before normalization.
type RawStallPair struct {
	Name  string
	Count int
}

// LiveRegRecord is the per-(kernel, pc-offset) live-register pressure
// snapshot (§3, §4.6).
type LiveRegRecord struct {
	General        int
	Predicate      int
	UniformGeneral int
	Delta          int // (gen+pred+ugen) - same sum at the prior instruction; 0 baseline for the first
}

func (r LiveRegRecord) Sum() int {
	return r.General + r.Predicate + r.UniformGeneral
}
