// Package mcp exposes kernelscope's analysis and diff operations as MCP
// tools, so an AI coding agent can invoke them during an optimization
// session without shelling out to the CLI.
package mcp

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server instance.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with registered tools.
func NewServer(version string) *Server {
	s := server.NewMCPServer("kernelscope", version, server.WithLogging())
	registerTools(s)
	return &Server{mcpServer: s}
}

// Start runs the server in stdio mode (blocking).
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools adds all supported tools to the server.
func registerTools(s *server.MCPServer) {
	analyzeTool := mcp.NewTool("analyze_kernels",
		mcp.WithDescription("Run kernel bottleneck detectors over a set of profiling artifacts and return the per-analysis JSON report. Kernel name demangling and artifact capture are out of scope — pass file paths already produced by nvdisasm/nvcc/ncu."),
		mcp.WithString("disassembly_path",
			mcp.Description("Path to the SASS disassembly text file"),
		),
		mcp.WithString("ir_path",
			mcp.Description("Path to the PTX-like IR text file"),
		),
		mcp.WithString("stall_report_path",
			mcp.Description("Path to the PC-sampling stall report"),
		),
		mcp.WithString("metrics_report_path",
			mcp.Description("Path to the Nsight Compute metrics CSV"),
		),
		mcp.WithString("analysis",
			mcp.Description("Analysis kind to run, or 'all' for every registered analysis plus deadlock"),
			mcp.DefaultString("all"),
		),
	)
	s.AddTool(analyzeTool, handleAnalyzeKernels)

	diffTool := mcp.NewTool("diff_reports",
		mcp.WithDescription("Compare two JSON reports from the same analysis kind (e.g. before/after a kernel rewrite) and report which kernels gained/lost occurrences or shifted stall percentage."),
		mcp.WithString("analysis",
			mcp.Required(),
			mcp.Description("Analysis kind the two reports belong to"),
		),
		mcp.WithString("baseline_path",
			mcp.Required(),
			mcp.Description("Path to the baseline run's JSON report"),
		),
		mcp.WithString("current_path",
			mcp.Required(),
			mcp.Description("Path to the current run's JSON report"),
		),
		mcp.WithNumber("threshold_pct",
			mcp.Description("Minimum stall-percentage-point shift worth reporting"),
			mcp.DefaultNumber(5),
		),
	)
	s.AddTool(diffTool, handleDiffReports)
}
