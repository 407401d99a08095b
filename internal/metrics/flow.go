package metrics

import (
	"math"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// LoadDataFlow derives the load-path Memory-Flow quantities from a kernel's
// metric record (§4.9): global/local memory through L1, L1 through L2, L2
// through DRAM, each annotated with the corresponding cache-miss percentage.
func LoadDataFlow(m model.MetricRecord) model.LoadFlow {
	globalToL1 := 32 * m.L1texTSectorsPipeLsuMemGlobalOpLd
	requestsL1L2Global := globalToL1 * (1 - m.L1texTSectorPipeLsuMemGlobalOpLdHitRate/100)

	localToL1 := 32 * m.L1texTSectorsPipeLsuMemLocalOpLd
	requestsL1L2Local := localToL1 * (1 - m.L1texTSectorPipeLsuMemLocalOpLdHitRate/100)

	requestsL2DRAM := (requestsL1L2Global + requestsL1L2Local) * (1 - m.LtsTSectorOpReadHitRate/100)

	return model.LoadFlow{
		NumLoads:              m.SmSassInstExecutedOpGlobalLd,
		GlobalToL1Bytes:       globalToL1,
		GlobalToL1CacheMissPc: 100 - m.L1texTSectorPipeLsuMemGlobalOpLdHitRate,
		GlobalL1ToL2Bytes:     requestsL1L2Global,
		LocalToL1Bytes:        localToL1,
		LocalToL1CacheMissPc:  100 - m.L1texTSectorPipeLsuMemLocalOpLdHitRate,
		LocalL1ToL2Bytes:      requestsL1L2Local,
		L1ToL2CacheMissPc:     100 - m.LtsTSectorOpReadHitRate,
		L2ToDRAMBytes:         requestsL2DRAM,
	}
}

// AtomicDataFlow derives the atomic-path Memory-Flow quantities (§4.9):
// global reduction/atomic requests through L1/L2/DRAM, plus direct
// kernel-to-shared-memory atomic traffic.
func AtomicDataFlow(m model.MetricRecord) model.AtomicFlow {
	redAtomRequests := m.L1texTSectorsPipeLsuMemGlobalOpRed + m.L1texTSectorsPipeLsuMemGlobalOpAtom
	l1RedAtomHitRate := m.L1texTSectorPipeLsuMemGlobalOpRedHitRate + m.L1texTSectorPipeLsuMemGlobalOpAtomHitRate
	requestsL1L2GlobalRed := (32 * redAtomRequests) * (1 - l1RedAtomHitRate/100)

	ltsRedAtomHitRate := m.LtsTSectorOpRedHitRate + m.LtsTSectorOpAtomHitRate
	requestsL2DRAMRed := requestsL1L2GlobalRed * (1 - ltsRedAtomHitRate/100)

	return model.AtomicFlow{
		GlobalToL1CacheMissPc:  100 - l1RedAtomHitRate,
		L1ToL2CacheMissPc:      100 - ltsRedAtomHitRate,
		L1ToL2Bytes:            requestsL1L2GlobalRed,
		L2ToDRAMBytes:          requestsL2DRAMRed,
		GlobalToL1RedAtomBytes: 32 * redAtomRequests,
		KernelToSharedBytes:    m.SmSassDataBytesMemSharedOpAtom,
	}
}

// TextureDataFlow derives the texture-path Memory-Flow quantities (§4.9).
func TextureDataFlow(m model.MetricRecord) model.TextureFlow {
	requestsL1L2Texture := (32 * m.L1texTSectorsPipeTexMemTexture) * (1 - m.L1texTSectorPipeTexMemTextureOpTexHitRate/100)
	requestsL2DRAM := requestsL1L2Texture * (1 - m.LtsTSectorOpReadHitRate/100)

	return model.TextureFlow{
		KernelToTexInstr:   m.SmSassInstExecutedOpTexture,
		TexToL1Bytes:       32 * m.L1texTSectorsPipeTexMemTexture,
		TexToL1CacheMissPc: 100 - m.L1texTSectorPipeTexMemTextureOpTexHitRate,
		L1ToL2CacheMissPc:  100 - m.LtsTSectorOpReadHitRate,
		L1ToL2Bytes:        requestsL1L2Texture,
		L2ToDRAMBytes:      requestsL2DRAM,
	}
}

// SharedDataFlow derives the shared-memory load-path Memory-Flow quantity
// (§4.9): simply the count of shared-memory load instructions executed.
func SharedDataFlow(m model.MetricRecord) model.SharedFlow {
	return model.SharedFlow{SharedMemLoadOperations: m.SmSassInstExecutedOpSharedLd}
}

// BankConflict derives shared-memory bank-conflict degree (§4.9): the
// number of wavefronts per shared-memory load request, floored. A result of
// 1 means no conflict; a result of 0 is the sentinel for "no shared-memory
// load requests were made" rather than a 0-way conflict.
func BankConflict(m model.MetricRecord) model.BankConflict {
	bc := model.BankConflict{
		SharedMemLoadEfficiencyPc: m.SmspSassAverageDataBytesPerWavefrontMemSharedOpLd,
		SharedMemDataRequests:     m.SmSassInstExecutedOpSharedLd,
	}
	if m.SmSassInstExecutedOpSharedLd == 0 {
		bc.Degree = 0
		return bc
	}
	perRequest := math.Floor(m.L1texDataPipeLsuWavefrontsMemSharedOpLd / m.SmSassInstExecutedOpSharedLd)
	if perRequest == 1 {
		bc.Degree = 1
	} else {
		bc.Degree = int(perRequest)
	}
	return bc
}

// CoalescingExcess derives the global- and shared-memory coalescing excess
// (§4.9, supplemented from the original's bypass_L1/coalescing_efficiency
// advisories): the extra L2 sectors requested for global memory beyond the
// ideal, and the extra L1 wavefronts requested for shared memory beyond the
// ideal, both converted to bytes at 32 bytes/sector.
func CoalescingExcess(m model.MetricRecord) model.CoalescingExcess {
	var coalEff float64
	if m.L1texTSectorsPipeLsuMemGlobalOpLd != 0 {
		coalEff = m.SmspInstExecutedOpGlobalLd / m.L1texTSectorsPipeLsuMemGlobalOpLd
	}

	excessGlobal := m.MemoryL2TheoreticalSectorsGlobal - m.MemoryL2TheoreticalSectorsGlobalIdeal
	if excessGlobal < 0 {
		excessGlobal = 0
	}
	excessShared := m.MemoryL1WavefrontsShared - m.MemoryL1WavefrontsSharedIdeal
	if excessShared < 0 {
		excessShared = 0
	}

	return model.CoalescingExcess{
		GlobalCoalescingEfficiency: coalEff * 100,
		ExcessGlobalBytes:          32 * excessGlobal,
		ExcessSharedBytes:          32 * excessShared,
	}
}
