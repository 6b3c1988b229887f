package analyzer

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/paperlens/kit"
	"github.com/hazyhaar/paperlens/question"
	"github.com/hazyhaar/paperlens/report"
)

// RegisterMCP registers the analysis tools on an MCP server, together
// with the extraction tools of the underlying pipeline.
func (a *Analyzer) RegisterMCP(srv *mcp.Server) {
	a.pipe.RegisterMCP(srv)
	a.registerAnalyzeTool(srv)
	a.registerQuestionsTool(srv)
}

type analyzeResp struct {
	Report   string           `json:"report"`
	Analysis *report.Analysis `json:"analysis"`
}

func (a *Analyzer) registerAnalyzeTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "paper_analyze",
		Description: "Analyze one or more exam papers: extract their questions, cluster similar ones across papers and report the most frequent questions, topics, difficulty and question types.",
		InputSchema: kit.InputSchema(map[string]any{
			"paths":                map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "File paths of the papers"},
			"similarity_threshold": map[string]any{"type": "number", "description": "Cosine similarity for two questions to share a cluster, in (0, 1]"},
			"top_n":                map[string]any{"type": "integer", "description": "Number of clusters to chart and summarize"},
		}, []string{"paths"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		res, err := a.Run(ctx, *req.(*Request))
		if err != nil {
			return nil, err
		}
		return &analyzeResp{Report: report.Format(res), Analysis: res}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r Request
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode, kit.Logging(a.logger, "paper_analyze"))
}

type questionsReq struct {
	Path string `json:"path"`
}

type questionsResp struct {
	Path      string            `json:"path"`
	Questions []question.Record `json:"questions"`
	Listing   string            `json:"listing"`
}

func (a *Analyzer) registerQuestionsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "paper_questions",
		Description: "Extract the numbered sub-questions of one exam paper, with their marks.",
		InputSchema: kit.InputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path of the paper"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*questionsReq)
		recs, doc, err := a.Questions(ctx, r.Path)
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []question.Record{}
		}
		return &questionsResp{Path: doc.Path, Questions: recs, Listing: question.Format(recs)}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r questionsReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode, kit.Logging(a.logger, "paper_questions"))
}
