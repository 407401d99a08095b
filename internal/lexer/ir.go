package lexer

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// IRKind tags each record emitted by ScanIR for a kernel: a label
// definition, a branch, or a global or shared atomic occurrence.
type IRKind int

const (
	IRLabel IRKind = iota
	IRBranch
	IRAtomicGlobal
	IRAtomicShared
)

type IRRecord struct {
	Kind       IRKind
	Label      string // IRLabel: the label name; IRBranch: the branch target
	UserLine   int    // source-line from the nearest preceding "inlined_at" .loc
	RawLine    int    // running count of non-directive, non-label IR lines
}

// IRKernel is the per-kernel output of ScanIR: the ordered record stream plus,
// for each label, the UserLine of the first record after its definition.
type IRKernel struct {
	Kernel       string
	Records      []IRRecord
	LabelAtLine  map[string]int // label name -> UserLine of the first record after its definition
}

const (
	irHeaderPrefixLen = 16
	irHeaderSuffixLen = 1
)

// ScanIR scans an IR (PTX-like) stream into per-kernel label/branch/atomic
// record streams (§4.3). The lexer tracks two independent counters: the
// user source-line (updated only by ".loc ... inlined_at N M P" directives)
// and the raw IR-line (incremented once per non-directive, non-label line).
func ScanIR(r io.Reader) map[string]*IRKernel {
	out := make(map[string]*IRKernel)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var kernel string
	var kk *IRKernel
	userLine := 0
	rawLine := 0
	pendingLabel := ""

	flush := func() {
		if kernel != "" {
			out[kernel] = kk
		}
	}

	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		if strings.Contains(line, ".visible .entry ") {
			flush()
			kernel = extractIRKernelName(line)
			kk = &IRKernel{Kernel: kernel, LabelAtLine: make(map[string]int)}
			userLine = 0
			rawLine = 0
			pendingLabel = ""
			continue
		}
		if kernel == "" {
			continue
		}

		isDirective := strings.Contains(line, ".loc") || strings.Contains(line, ".visible") || strings.Contains(line, ".file")
		isLabelLine := strings.HasPrefix(trimmed, "$L__")
		if !isDirective && !isLabelLine {
			rawLine++
		}

		if strings.Contains(line, ".loc") && strings.Contains(line, "inlined_at") {
			if n, ok := parseInlinedAtLine(line); ok {
				userLine = n
			}
		}

		if isLabelLine {
			name := strings.TrimSuffix(trimmed, ":")
			kk.Records = append(kk.Records, IRRecord{Kind: IRLabel, Label: name, UserLine: userLine, RawLine: rawLine})
			pendingLabel = name
			continue
		}
		if pendingLabel != "" {
			kk.LabelAtLine[pendingLabel] = userLine
			pendingLabel = ""
		}

		if strings.Contains(line, "bra $L__") {
			target := extractBranchTarget(line)
			if target != "" {
				kk.Records = append(kk.Records, IRRecord{Kind: IRBranch, Label: target, UserLine: userLine, RawLine: rawLine})
			}
			continue
		}

		if strings.Contains(line, "atom.global.add") {
			kk.Records = append(kk.Records, IRRecord{Kind: IRAtomicGlobal, UserLine: userLine, RawLine: rawLine})
			continue
		}
		if strings.Contains(line, "atom.shared.add") {
			kk.Records = append(kk.Records, IRRecord{Kind: IRAtomicShared, UserLine: userLine, RawLine: rawLine})
			continue
		}
	}
	flush()

	return out
}

// extractIRKernelName strips the fixed 16-character ".visible .entry "
// prefix and the single trailing brace character, per the exact rule
// specified for the IR header line.
func extractIRKernelName(line string) string {
	if len(line) < irHeaderPrefixLen+irHeaderSuffixLen {
		return ""
	}
	return line[irHeaderPrefixLen : len(line)-irHeaderSuffixLen]
}

// parseInlinedAtLine extracts the user source-line from a
// ".loc N M P, ..., inlined_at A B C" directive: split on ",", take the
// last segment, then the fourth whitespace-separated token within it. A line
// whose last segment does not start with "inlined_at" yields ok=false.
func parseInlinedAtLine(line string) (int, bool) {
	segments := strings.Split(line, ",")
	last := strings.TrimSpace(segments[len(segments)-1])
	fields := strings.Fields(last)
	if len(fields) < 4 || fields[0] != "inlined_at" {
		return 0, false
	}
	n, err := strconv.Atoi(fields[3])
	if err != nil {
		return 0, false
	}
	return n, true
}

// extractBranchTarget pulls the "$L__..." token out of a
// "@%pN bra $L__BB2_11;" line: the last whitespace-separated field with any
// of " ;" stripped.
func extractBranchTarget(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	last = strings.TrimRight(last, ";")
	last = strings.TrimSpace(last)
	return last
}
