package stall

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// row is one parsed PC-sampling line before it is joined against the
// disassembly's instruction table.
type row struct {
	kernel   string
	pcOffset string
	line     int
	pairs    []model.RawStallPair
}

// LoadRows parses the PC-sampling report (§4.5, §6.1): one row per sample,
// comma-separated `key: value` tokens, first two rows preamble. stallReasonCount
// bounds how many of the trailing tokens are (name, count) pairs.
//
// Malformed rows are skipped silently; an unreadable stream produces an
// empty result (the caller logs the diagnostic).
func LoadRows(r io.Reader) []row {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var rows []row
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo <= 2 {
			continue // preamble
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parsed, ok := parseRow(line)
		if ok {
			rows = append(rows, parsed)
		}
	}
	return rows
}

func parseRow(line string) (row, bool) {
	tokens := strings.Split(line, ",")
	var r row
	r.pcOffset = "" // required
	haveKernel, havePC := false, false
	stallReasonCount := -1
	i := 0
	for ; i < len(tokens); i++ {
		key, val, ok := splitToken(tokens[i])
		if !ok {
			continue
		}
		switch key {
		case "functionName":
			r.kernel = val
			haveKernel = true
		case "pcOffset":
			n, err := strconv.Atoi(val)
			if err != nil {
				return row{}, false
			}
			r.pcOffset = model.NormalizePCOffset(strconv.FormatInt(int64(n), 16))
			havePC = true
		case "lineNumber":
			n, err := strconv.Atoi(val)
			if err == nil {
				r.line = n
			}
		case "stallReasonCount":
			n, err := strconv.Atoi(val)
			if err != nil {
				return row{}, false
			}
			stallReasonCount = n
			i++ // the remaining tokens (up to stallReasonCount) are name:count pairs
			for c := 0; c < stallReasonCount && i < len(tokens); c++ {
				k2, v2, ok2 := splitToken(tokens[i])
				if ok2 {
					if cnt, err := strconv.Atoi(v2); err == nil {
						r.pairs = append(r.pairs, model.RawStallPair{Name: k2, Count: cnt})
					}
				}
				i++
			}
			i--
		}
	}
	if !haveKernel || !havePC || stallReasonCount < 0 {
		return row{}, false
	}
	if r.kernel == "" {
		return row{}, false // empty-name kernel sentinel: skip, don't error (§9 Open Question a)
	}
	return r, true
}

// splitToken parses one "key: value" (or "key:value") token.
func splitToken(tok string) (key, val string, ok bool) {
	idx := strings.Index(tok, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(tok[:idx])
	val = strings.TrimSpace(tok[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, val, true
}

// JoinByOffset joins parsed PC-sampling rows against each kernel's
// instruction table, producing model.StallSample entries annotated with the
// matching instruction's source line (§4.5).
func JoinByOffset(rows []row, tables map[string]model.KernelTables) map[string][]model.StallSample {
	out := make(map[string][]model.StallSample)
	for _, r := range rows {
		kt, ok := tables[r.kernel]
		if !ok {
			continue
		}
		line := r.line
		for _, inst := range kt.Instructions {
			if inst.PCOffset == r.pcOffset {
				line = inst.SourceLine
				break
			}
		}
		out[r.kernel] = append(out[r.kernel], model.StallSample{
			Kernel:     r.kernel,
			PCOffset:   r.pcOffset,
			SourceLine: line,
			Raw:        r.pairs,
		})
	}
	return out
}

// LoadAndJoin is the convenience entry point combining LoadRows and JoinByOffset.
func LoadAndJoin(r io.Reader, tables map[string]model.KernelTables) map[string][]model.StallSample {
	return JoinByOffset(LoadRows(r), tables)
}
