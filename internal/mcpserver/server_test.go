package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/laguz/internal/notes"
	"github.com/starford/laguz/internal/testutil"
)

const testOwner = "mcp-owner"

func testServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.TestDB(t)
	svc := notes.NewService(db, nil)
	return New(svc, testOwner)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call
	// the handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "delete_note":
		result, err = srv.deleteNote(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "list_latest":
		result, err = srv.listLatest(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Test",
		"content": "Hello",
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "created: Test") {
		t.Errorf("create result = %q", resultText(r))
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"title": "Test"})
	if text := resultText(r); text != "Hello" {
		t.Errorf("read result = %q", text)
	}
}

func TestCreateNote_UnresolvedLink(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "Dangling",
		"content": "[[Ghost]]",
	})
	if !r.IsError {
		t.Error("expected error for unresolved link")
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"title": "Nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestGetBacklinks(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{"title": "B"})
	_ = callTool(t, srv, "create_note", map[string]interface{}{
		"title":   "A",
		"content": "links to [[B]]",
	})

	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"title": "B"})
	if text := resultText(r); text != "A" {
		t.Errorf("backlinks = %q, want A", text)
	}
}

func TestDeleteNote(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{"title": "Gone"})

	r := callTool(t, srv, "delete_note", map[string]interface{}{"title": "Gone"})
	if text := resultText(r); text != "deleted: Gone" {
		t.Errorf("delete result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"title": "Gone"})
	if !r.IsError {
		t.Error("note still readable after delete")
	}
}

func TestListLatest(t *testing.T) {
	srv := testServer(t)
	_ = callTool(t, srv, "create_note", map[string]interface{}{"title": "One"})
	_ = callTool(t, srv, "create_note", map[string]interface{}{"title": "Two"})

	r := callTool(t, srv, "list_latest", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "One") || !strings.Contains(text, "Two") {
		t.Errorf("list = %q", text)
	}
}
