package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitriimaksimovdevelop/kernelscope/internal/detect"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/diff"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/inputs"
	"github.com/dmitriimaksimovdevelop/kernelscope/internal/orchestrator"
	"github.com/mark3labs/mcp-go/mcp"
)

// handleAnalyzeKernels runs one or every detector over the artifacts named
// by the request and returns the resulting JSON report.
func handleAnalyzeKernels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	paths := inputs.Paths{
		inputs.Disassembly:   stringArg(args, "disassembly_path", ""),
		inputs.IR:            stringArg(args, "ir_path", ""),
		inputs.StallReport:   stringArg(args, "stall_report_path", ""),
		inputs.MetricsReport: stringArg(args, "metrics_report_path", ""),
	}
	analysis := stringArg(args, "analysis", "all")

	kernels, err := inputs.LoadKernels(paths)
	if err != nil {
		return errResult(fmt.Sprintf("load inputs: %v", err)), nil
	}

	orch := orchestrator.New(nil)

	var payload interface{}
	switch {
	case analysis == "" || analysis == "all":
		payload = orch.Run(kernels)
	case analysis == detect.NameDeadlock:
		payload = orch.RunDeadlock(kernels)
	default:
		if !isRegisteredAnalysis(analysis) {
			return errResult(fmt.Sprintf("unknown analysis %q", analysis)), nil
		}
		payload = orch.RunOne(kernels, analysis)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errResult(fmt.Sprintf("json marshal failed: %v", err)), nil
	}
	return newTextResult(string(data)), nil
}

// handleDiffReports compares two JSON reports from the same analysis kind.
func handleDiffReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)

	analysis := stringArg(args, "analysis", "")
	baselinePath := stringArg(args, "baseline_path", "")
	currentPath := stringArg(args, "current_path", "")
	threshold := numberArg(args, "threshold_pct", 5)

	if analysis == "" || baselinePath == "" || currentPath == "" {
		return errResult("analysis, baseline_path, and current_path are required"), nil
	}

	baseline, err := diff.LoadAnalysisReport(baselinePath)
	if err != nil {
		return errResult(fmt.Sprintf("load baseline: %v", err)), nil
	}
	current, err := diff.LoadAnalysisReport(currentPath)
	if err != nil {
		return errResult(fmt.Sprintf("load current: %v", err)), nil
	}

	report := diff.Compare(analysis, baseline, current, threshold)
	return newTextResult(diff.Format(report)), nil
}

func isRegisteredAnalysis(name string) bool {
	if _, ok := detect.DisasmRegistry[name]; ok {
		return true
	}
	_, ok := detect.IRRegistry[name]
	return ok
}

// getArgs safely extracts the arguments map from a CallToolRequest.
// Returns an empty map if Arguments is nil or not a map.
func getArgs(request mcp.CallToolRequest) map[string]interface{} {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// stringArg extracts a string argument with a default value.
func stringArg(args map[string]interface{}, key, defaultVal string) string {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	s, ok := val.(string)
	if !ok || s == "" {
		return defaultVal
	}
	return s
}

// numberArg extracts a float64 argument with a default value.
func numberArg(args map[string]interface{}, key string, defaultVal float64) float64 {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal
	}
	f, ok := val.(float64)
	if !ok {
		return defaultVal
	}
	return f
}

// newTextResult creates a successful MCP tool result with text content.
func newTextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

// errResult creates an MCP tool error result (IsError=true).
// This is returned as a tool-level error, not a transport-level JSON-RPC error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: msg,
			},
		},
	}
}
