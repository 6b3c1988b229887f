package docpipe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "docpipe-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	pipe := New(Config{})
	srv := mcp.NewServer(testMCPImpl, nil)
	pipe.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text, result.IsError
}

func TestMCP_Formats(t *testing.T) {
	session := mcpSession(t)

	text, isErr := mcpCallTool(t, session, "paper_formats", map[string]any{})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var resp struct {
		Formats []string `json:"formats"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Formats) != 6 {
		t.Errorf("expected 6 formats, got %d: %v", len(resp.Formats), resp.Formats)
	}
}

func TestMCP_Extract(t *testing.T) {
	session := mcpSession(t)

	path := filepath.Join(t.TempDir(), "paper.txt")
	os.WriteFile(path, []byte("Header\nQ1) a) Define X. [5]\fHeader\nb) Explain Y. [10]"), 0644)

	text, isErr := mcpCallTool(t, session, "paper_extract", map[string]any{"path": path})
	if isErr {
		t.Fatalf("tool error: %s", text)
	}
	var doc Document
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Format != FormatTXT {
		t.Errorf("Format = %q, want %q", doc.Format, FormatTXT)
	}
	if doc.CleanText != "Q1) a) Define X. [5]\nb) Explain Y. [10]" {
		t.Errorf("CleanText = %q", doc.CleanText)
	}
	if len(doc.Pages) != 0 {
		t.Errorf("pages should be omitted unless requested, got %d", len(doc.Pages))
	}

	text, _ = mcpCallTool(t, session, "paper_extract", map[string]any{"path": path, "with_pages": true})
	json.Unmarshal([]byte(text), &doc)
	if len(doc.Pages) != 2 {
		t.Errorf("with_pages: got %d pages, want 2", len(doc.Pages))
	}
}

func TestMCP_Extract_MissingFile(t *testing.T) {
	session := mcpSession(t)

	_, isErr := mcpCallTool(t, session, "paper_extract", map[string]any{"path": "/nonexistent/paper.pdf"})
	if !isErr {
		t.Fatal("expected tool error for missing file")
	}
}
