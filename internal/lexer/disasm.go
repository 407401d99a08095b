// Package lexer scans the disassembly and IR text streams into per-kernel
// instruction tables (§4.2, §4.3).
package lexer

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// pcOffsetRe matches the /*<hex>*/ program-counter marker on an instruction line.
var pcOffsetRe = regexp.MustCompile(`/\*([0-9a-fA-F]+)\*/`)

// liveRegRe matches the "// | g | p | u |" live-register annotation trailing
// an instruction line. Any of the three fields may be blank (treated as 0).
var liveRegRe = regexp.MustCompile(`//\s*\|\s*(\d*)\s*\|\s*(\d*)\s*\|\s*(\d*)\s*\|`)

// labelRe matches a ".L_x_<k>:" label definition line.
var labelRe = regexp.MustCompile(`^\.L_x_\w+:`)

// sectionHeaderToken is the literal substring that opens a kernel in the
// disassembly stream. It is a tab, not a space, between ".section" and
// ".text." — confirmed against the original parser sources.
const sectionHeaderToken = ".section\t.text."

const (
	headerPrefixLen = 16
	headerSuffixLen = 15
)

// ScanDisassembly scans a disassembly stream into per-kernel instruction
// tables (§4.2). Malformed lines are skipped silently; label completion
// happens when the next instruction line is read. An unreadable stream
// produces an empty result set.
func ScanDisassembly(r io.Reader) map[string]model.KernelTables {
	tables := make(map[string]model.KernelTables)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var kernel string
	var kt model.KernelTables
	sourceLine := 0
	pendingLabel := ""

	flush := func() {
		if kernel != "" {
			tables[kernel] = kt
		}
	}

	for sc.Scan() {
		line := sc.Text()

		if idx := strings.Index(line, sectionHeaderToken); idx >= 0 {
			flush()
			kernel = extractKernelName(line)
			kt = model.KernelTables{Kernel: kernel, Labels: make(map[string]model.Label)}
			sourceLine = 0
			pendingLabel = ""
			continue
		}
		if kernel == "" {
			continue // no kernel header seen yet
		}

		if idx := strings.Index(line, " line "); idx >= 0 {
			if n, ok := parseTrailingInt(line[idx+len(" line "):]); ok {
				sourceLine = n
			}
			continue
		}

		if m := labelRe.FindString(strings.TrimSpace(line)); m != "" {
			pendingLabel = strings.TrimSuffix(m, ":")
			continue
		}

		pcMatch := pcOffsetRe.FindStringSubmatch(line)
		if pcMatch == nil {
			continue // not an instruction line; skip silently
		}
		pcOffset := model.NormalizePCOffset(pcMatch[1])

		rest := line[strings.Index(line, pcMatch[0])+len(pcMatch[0]):]
		predicate, mnemonic, operands := splitMnemonic(rest)
		if mnemonic == "" {
			continue
		}

		var pressure *model.LiveRegTriple
		if lm := liveRegRe.FindStringSubmatch(line); lm != nil {
			pressure = &model.LiveRegTriple{
				General:        atoiOrZero(lm[1]),
				Predicate:      atoiOrZero(lm[2]),
				UniformGeneral: atoiOrZero(lm[3]),
			}
		}

		kt.Instructions = append(kt.Instructions, model.Instruction{
			PCOffset:   pcOffset,
			SourceLine: sourceLine,
			Mnemonic:   mnemonic,
			Operands:   operands,
			Predicate:  predicate,
			Raw:        strings.TrimSpace(rest),
			LiveRegs:   pressure,
		})

		if pendingLabel != "" {
			kt.Labels[pendingLabel] = model.Label{
				Name:       pendingLabel,
				SourceLine: sourceLine,
				PCOffset:   pcOffset,
			}
			pendingLabel = ""
		}
	}
	flush()

	return tables
}

// extractKernelName applies the exact prefix/suffix strip rule specified for
// the kernel header line: the 16 characters before the name and the 15
// characters after it are discarded, whatever they contain. Lines too short
// to hold both fixed-width fields yield an empty name and are skipped by the
// caller's header-reset logic on the next boundary.
func extractKernelName(line string) string {
	if len(line) < headerPrefixLen+headerSuffixLen {
		return ""
	}
	return line[headerPrefixLen : len(line)-headerSuffixLen]
}

// parseTrailingInt parses the integer that begins s, ignoring anything after
// the digits (mirrors strtol-style "parse as far as you can" semantics).
func parseTrailingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// splitMnemonic separates an optional leading predicate ("@P0", "@!P1") from
// the mnemonic (leading non-space opcode token) and the remaining operand
// text, stopping at the trailing ";" or a live-register comment if present.
func splitMnemonic(s string) (predicate, mnemonic, operands string) {
	s = strings.TrimSpace(s)
	if semi := strings.Index(s, ";"); semi >= 0 {
		s = s[:semi]
	} else if c := strings.Index(s, "//"); c >= 0 {
		s = s[:c]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", ""
	}
	fields := strings.Fields(s)
	idx := 0
	if strings.HasPrefix(fields[0], "@") {
		predicate = fields[0]
		idx = 1
	}
	if idx >= len(fields) {
		return predicate, "", ""
	}
	mnemonic = fields[idx]
	rest := strings.Join(fields[idx+1:], " ")
	return predicate, mnemonic, rest
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
