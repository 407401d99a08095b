package model

import "time"

// KernelReport is the per-kernel object emitted by the Report Emitter for
// every analysis kind except deadlock detection (§6.3).
type KernelReport struct {
	Occurrences []interface{}      `json:"occurrences"`
	Stalls      map[string]float64 `json:"stalls,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// AnalysisReport is the full `map[kernel]KernelReport` document for one
// analysis kind (the deadlock analysis uses DeadlockReport instead).
type AnalysisReport map[string]KernelReport

// DeadlockReport is the `map[kernel]{"deadlock": bool}` document (§6.3).
type DeadlockReport map[string]DeadlockFinding

// StageTiming records wall-clock duration for one pipeline stage, used by
// the observer package's self-overhead accounting.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// RunMetadata is attached to a combined `report` run (all analysis kinds in
// one invocation) describing the run itself, independent of any one kernel.
type RunMetadata struct {
	Tool          string        `json:"tool"`
	SchemaVersion string        `json:"schema_version"`
	Timestamp     string        `json:"timestamp"`
	KernelCount   int           `json:"kernel_count"`
	Stages        []StageTiming `json:"stages,omitempty"`
}

// AIContext is the supplemented natural-language summary handed to an LLM
// for deeper investigation of one kernel's findings (SPEC_FULL.md's
// ai-prompt feature, off by default). The detectors themselves never emit
// descriptive prose; this is an optional, separate rendering of their
// already-structured output.
type AIContext struct {
	Methodology   string   `json:"methodology"`
	KnownPatterns []string `json:"known_patterns"`
	Prompt        string   `json:"prompt"`
}
