package stall

import (
	"strings"
	"testing"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

func sampleReportLine(kernel string) string {
	return "functionName: " + kernel + ", pcOffset: 160, lineNumber: 18, stallReasonCount: 2, " +
		"smsp__warp_issue_stalled_mio_throttle_per_warp_active: 3, smsp__warp_issue_stalled_wait_per_warp_active: 4"
}

func TestLoadRowsSkipsTwoLinePreamble(t *testing.T) {
	src := "preamble line 1\npreamble line 2\n" + sampleReportLine("kernelA") + "\n"
	rows := LoadRows(strings.NewReader(src))
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].kernel != "kernelA" || rows[0].pcOffset != "00a0" || rows[0].line != 18 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
	if len(rows[0].pairs) != 2 {
		t.Fatalf("got %d pairs, want 2: %+v", len(rows[0].pairs), rows[0].pairs)
	}
}

func TestLoadRowsSkipsBlankLines(t *testing.T) {
	src := "p1\np2\n\n" + sampleReportLine("kernelA") + "\n\n"
	rows := LoadRows(strings.NewReader(src))
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestParseRowEmptyKernelNameSkipped(t *testing.T) {
	line := "functionName: , pcOffset: 160, lineNumber: 18, stallReasonCount: 0"
	if _, ok := parseRow(line); ok {
		t.Error("expected an empty-name kernel row to be skipped, not errored")
	}
}

func TestParseRowMissingRequiredFieldSkipped(t *testing.T) {
	line := "functionName: kernelA, lineNumber: 18, stallReasonCount: 0" // no pcOffset
	if _, ok := parseRow(line); ok {
		t.Error("expected a row with no pcOffset to be skipped")
	}
}

func TestParseRowMalformedStallCountSkipped(t *testing.T) {
	line := "functionName: kernelA, pcOffset: 160, stallReasonCount: not-a-number"
	if _, ok := parseRow(line); ok {
		t.Error("expected a malformed stallReasonCount to be skipped")
	}
}

func TestSplitToken(t *testing.T) {
	key, val, ok := splitToken("functionName: kernelA")
	if !ok || key != "functionName" || val != "kernelA" {
		t.Errorf("splitToken = (%q, %q, %v), want (functionName, kernelA, true)", key, val, ok)
	}
	if _, _, ok := splitToken("no colon here"); ok {
		t.Error("expected ok=false for a token with no colon")
	}
}

func TestJoinByOffsetMatchesByExactPCOffset(t *testing.T) {
	rows := []row{
		{kernel: "kernelA", pcOffset: "00a0", line: 99, pairs: []model.RawStallPair{{Name: "stalled_wait", Count: 4}}},
	}
	tables := map[string]model.KernelTables{
		"kernelA": {
			Kernel: "kernelA",
			Instructions: []model.Instruction{
				{PCOffset: "00a0", SourceLine: 18},
			},
		},
	}
	samples := JoinByOffset(rows, tables)
	got := samples["kernelA"]
	if len(got) != 1 {
		t.Fatalf("got %d samples, want 1", len(got))
	}
	if got[0].SourceLine != 18 {
		t.Errorf("SourceLine = %d, want 18 (taken from the matching instruction, not the row's own line)", got[0].SourceLine)
	}
}

func TestJoinByOffsetFallsBackToRowLine(t *testing.T) {
	rows := []row{
		{kernel: "kernelA", pcOffset: "ffff", line: 99, pairs: nil},
	}
	tables := map[string]model.KernelTables{
		"kernelA": {Kernel: "kernelA", Instructions: []model.Instruction{{PCOffset: "0000", SourceLine: 1}}},
	}
	samples := JoinByOffset(rows, tables)
	if samples["kernelA"][0].SourceLine != 99 {
		t.Errorf("SourceLine = %d, want 99 (fallback to the row's own line)", samples["kernelA"][0].SourceLine)
	}
}

func TestJoinByOffsetUnknownKernelSkipped(t *testing.T) {
	rows := []row{{kernel: "unknownKernel", pcOffset: "0000"}}
	samples := JoinByOffset(rows, map[string]model.KernelTables{})
	if len(samples) != 0 {
		t.Errorf("expected no samples for an unknown kernel, got %v", samples)
	}
}
