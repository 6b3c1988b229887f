package docpipe

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/paperlens/kit"
)

// RegisterMCP registers extraction tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerExtractTool(srv)
	p.registerFormatsTool(srv)
}

type extractReq struct {
	Path      string `json:"path"`
	WithPages bool   `json:"with_pages"`
}

func (p *Pipeline) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "paper_extract",
		Description: "Extract the clean text of an exam paper (pdf, docx, odt, md, txt, html) with running headers, footers and watermarks removed.",
		InputSchema: kit.InputSchema(map[string]any{
			"path":       map[string]any{"type": "string", "description": "File path of the paper"},
			"with_pages": map[string]any{"type": "boolean", "description": "Include raw per-page text"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*extractReq)
		doc, err := p.Extract(ctx, r.Path)
		if err != nil {
			return nil, err
		}
		if !r.WithPages {
			doc.Pages = nil
		}
		return doc, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r extractReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func (p *Pipeline) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "paper_formats",
		Description: "List the document formats papers can be extracted from.",
		InputSchema: kit.InputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{"formats": SupportedFormats()}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
