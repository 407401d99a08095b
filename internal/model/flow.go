package model

// LoadFlow is the result of the load-path Memory-Flow Derivation (§4.9).
type LoadFlow struct {
	NumLoads              float64 `json:"num_loads"`
	GlobalToL1Bytes       float64 `json:"global_to_l1_bytes"`
	GlobalToL1CacheMissPc float64 `json:"global_to_l1_cache_miss_perc"`
	GlobalL1ToL2Bytes     float64 `json:"global_l1_to_l2_bytes"`
	LocalToL1Bytes        float64 `json:"local_to_l1_bytes"`
	LocalToL1CacheMissPc  float64 `json:"local_to_l1_cache_miss_perc"`
	LocalL1ToL2Bytes      float64 `json:"local_l1_to_l2_bytes"`
	L1ToL2CacheMissPc     float64 `json:"l1_to_l2_cache_miss_perc"`
	L2ToDRAMBytes         float64 `json:"l2_to_dram_bytes"`
}

// AtomicFlow is the result of the atomic-path Memory-Flow Derivation (§4.9).
type AtomicFlow struct {
	GlobalToL1CacheMissPc   float64 `json:"global_to_l1_cache_miss_perc"`
	L1ToL2CacheMissPc       float64 `json:"l1_to_l2_cache_miss_perc"`
	L1ToL2Bytes             float64 `json:"l1_to_l2_bytes"`
	L2ToDRAMBytes           float64 `json:"l2_to_dram_bytes"`
	GlobalToL1RedAtomBytes  float64 `json:"global_to_l1_red_atom_bytes"`
	KernelToSharedBytes     float64 `json:"kernel_to_shared_bytes"`
}

// TextureFlow is the result of the texture-path Memory-Flow Derivation (§4.9).
type TextureFlow struct {
	KernelToTexInstr    float64 `json:"kernel_to_tex_instr"`
	TexToL1Bytes        float64 `json:"tex_to_l1_bytes"`
	TexToL1CacheMissPc  float64 `json:"tex_to_l1_cache_miss_perc"`
	L1ToL2CacheMissPc   float64 `json:"l1_to_l2_cache_miss_perc"`
	L1ToL2Bytes         float64 `json:"l1_to_l2_bytes"`
	L2ToDRAMBytes       float64 `json:"l2_to_dram_bytes"`
}

// SharedFlow is the result of the shared-path Memory-Flow Derivation (§4.9).
type SharedFlow struct {
	SharedMemLoadOperations float64 `json:"shared_mem_load_operations"`
}

// BankConflict is the result of the bank-conflict Memory-Flow Derivation (§4.9).
// Degree == 1 means no conflict; 0 means no shared requests were made; n>1
// means an n-way conflict.
type BankConflict struct {
	SharedMemLoadEfficiencyPc float64 `json:"shared_mem_load_efficiency_perc"`
	SharedMemDataRequests     float64 `json:"shared_mem_data_requests"`
	Degree                    int     `json:"bank_conflict"`
}

// CoalescingExcess is a supplemented derivation (see SPEC_FULL.md) folding in
// the original's bypass_L1/coalescing_efficiency advisories.
type CoalescingExcess struct {
	GlobalCoalescingEfficiency float64 `json:"global_coalescing_efficiency"`
	ExcessGlobalBytes          float64 `json:"coalescing_excess_global_bytes"`
	ExcessSharedBytes          float64 `json:"coalescing_excess_shared_bytes"`
}
