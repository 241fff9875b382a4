package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMergeMCPServer creates an MCP server with the merge tools registered.
func NewMergeMCPServer(svc *MergeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rbs-merge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_signatures",
		Description: "Merge a template RBS document into a destination document. Destination customizations win by default; freeze/unfreeze protected regions always survive verbatim. Returns the merged text and a decision summary.",
	}, svc.MergeSignatures)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "inspect_signatures",
		Description: "Parse one RBS document and list its declarations (kind, name, line span, members) and protected regions.",
	}, svc.InspectSignatures)

	return server
}

// RunMergeMCPServerStdio runs the MCP server on stdio transport, blocking
// until stdin is closed or the context is cancelled.
func RunMergeMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
