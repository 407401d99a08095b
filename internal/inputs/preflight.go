// Package inputs checks whether the artifact files an analysis run needs
// are present and readable before the run starts, generalizing teacher's
// BCC-tool-availability detection to file-based input roles.
package inputs

import (
	"fmt"
	"os"
	"sort"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/detect"
)

// Kind names one of the four input artifact roles (§6.1/§6.4). The
// live-register table is not listed separately: it is parsed from the same
// disassembly file the Disassembly role already covers.
type Kind string

const (
	Disassembly   Kind = "disassembly"
	IR            Kind = "ir"
	StallReport   Kind = "stall_report"
	MetricsReport Kind = "metrics_report"
)

// Paths names the file path for each artifact role present in a run; a
// role absent from the map is simply not supplied.
type Paths map[Kind]string

// Status is one artifact's availability verdict.
type Status struct {
	Kind    Kind
	Present bool
	Reason  string // why Present is false, or why a present file still can't be read
}

// Availability is what one analysis kind can do given the artifacts that
// checked out readable.
type Availability int

const (
	// Unavailable means the detector has nothing to read at all.
	Unavailable Availability = iota
	// DetectorOnly means the detector runs but findings carry no
	// stalls/pressure/metrics join (§4.8's optional-input rule).
	DetectorOnly
	// FullyJoined means every correlation source the detector can use is
	// present.
	FullyJoined
)

func (a Availability) String() string {
	switch a {
	case FullyJoined:
		return "fully-joined"
	case DetectorOnly:
		return "detector-only"
	default:
		return "unavailable"
	}
}

// AnalysisStatus is one analysis kind's preflight verdict.
type AnalysisStatus struct {
	Analysis     string
	Availability Availability
	Reason       string
}

// Report is the full preflight result: per-artifact readability plus a
// per-analysis verdict derived from it.
type Report struct {
	Artifacts map[Kind]Status
	Analyses  []AnalysisStatus
}

// Check probes every artifact named in paths and derives, for every
// registered analysis kind, whether it can run fully-joined, detector-only,
// or not at all — the non-fatal up-front analog of spec.md §7's
// input-unreadable handling, surfaced once instead of once per file.
func Check(paths Paths) Report {
	artifacts := make(map[Kind]Status, 4)
	for _, kind := range []Kind{Disassembly, IR, StallReport, MetricsReport} {
		artifacts[kind] = probe(kind, paths[kind])
	}

	report := Report{Artifacts: artifacts}

	registryNames := make([]string, 0, len(detect.DisasmRegistry)+len(detect.IRRegistry))
	for name := range detect.DisasmRegistry {
		registryNames = append(registryNames, name)
	}
	for name := range detect.IRRegistry {
		registryNames = append(registryNames, name)
	}
	sort.Strings(registryNames)

	names := append([]string{detect.NameDeadlock}, registryNames...)

	for _, name := range names {
		report.Analyses = append(report.Analyses, analysisStatus(name, artifacts))
	}
	return report
}

func analysisStatus(analysis string, artifacts map[Kind]Status) AnalysisStatus {
	var primary Kind = Disassembly
	if _, ok := detect.IRRegistry[analysis]; ok {
		primary = IR
	}

	if !artifacts[primary].Present {
		return AnalysisStatus{
			Analysis:     analysis,
			Availability: Unavailable,
			Reason:       fmt.Sprintf("%s input unavailable: %s", primary, artifacts[primary].Reason),
		}
	}

	if analysis == detect.NameDeadlock {
		// The deadlock verdict has no FindingBase to join stalls/metrics
		// onto, so it is always fully self-contained once its input reads.
		return AnalysisStatus{Analysis: analysis, Availability: FullyJoined}
	}

	if !artifacts[StallReport].Present || !artifacts[MetricsReport].Present {
		return AnalysisStatus{
			Analysis:     analysis,
			Availability: DetectorOnly,
			Reason:       "missing stall report and/or metrics report: findings will carry no stalls/pressure/metrics join",
		}
	}

	return AnalysisStatus{Analysis: analysis, Availability: FullyJoined}
}

func probe(kind Kind, path string) Status {
	if path == "" {
		return Status{Kind: kind, Present: false, Reason: "not supplied"}
	}
	f, err := os.Open(path)
	if err != nil {
		return Status{Kind: kind, Present: false, Reason: err.Error()}
	}
	f.Close()
	return Status{Kind: kind, Present: true}
}
