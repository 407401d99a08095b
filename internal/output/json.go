package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/model"
)

// WriteAnalysisReport writes one `<analysis>.json` file (§6.3, §4.10): a
// `map[kernel]KernelReport` document, indented and with HTML-escaping off
// (URLs/angle-bracket operands in finding text shouldn't be mangled).
func WriteAnalysisReport(outDir, analysis string, report model.AnalysisReport) error {
	return writeJSON(filepath.Join(outDir, analysis+".json"), report)
}

// WriteDeadlockReport writes `deadlock_detection.json`'s distinct
// `{"deadlock": bool}`-per-kernel shape (§6.3).
func WriteDeadlockReport(outDir string, report model.DeadlockReport) error {
	return writeJSON(filepath.Join(outDir, "deadlock_detection.json"), report)
}

// WriteJSON writes an arbitrary JSON-able payload to outDir/filename —
// used by the CLI for the run-metadata, preflight, and diff documents that
// don't have their own dedicated Write* function.
func WriteJSON(outDir, filename string, v interface{}) error {
	return writeJSON(filepath.Join(outDir, filename), v)
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
