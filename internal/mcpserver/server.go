// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Laguz note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/notes"
)

// Server wraps the MCP server with Laguz tools. All tools operate on
// behalf of a single configured owner.
type Server struct {
	mcp     *server.MCPServer
	svc     *notes.Service
	ownerID string
}

// New creates a new MCP server with all Laguz tools registered.
func New(svc *notes.Service, ownerID string) *Server {
	s := &Server{svc: svc, ownerID: ownerID}

	s.mcp = server.NewMCPServer(
		"Laguz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by its exact title."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact note title")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. [[Title]] markers in the content "+
			"link to existing notes by exact title; a marker naming a missing "+
			"title makes the creation fail."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title, unique per owner")),
		mcp.WithString("content", mcp.Description("Note body, may contain [[Title]] markers")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by its exact title. Markers pointing "+
			"at it in other notes are replaced with plain text."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact note title")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("List the titles of all notes linking to the specified note."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact note title")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_latest",
		mcp.WithDescription("List recently updated notes, newest first."),
		mcp.WithString("kind", mcp.Description("Optional filter: note or diary")),
	), s.listLatest)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, s.ownerID, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.GetByTitle(ctx, s.ownerID, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
	}
	return mcp.NewToolResultText(n.Content), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := req.GetString("content", "")

	n, err := s.svc.Create(ctx, notes.CreateParams{
		OwnerID: s.ownerID,
		Title:   title,
		Content: content,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", n.Title, n.ID)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.GetByTitle(ctx, s.ownerID, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
	}
	deleted, err := s.svc.Delete(ctx, s.ownerID, n.ID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !deleted {
		return mcp.NewToolResultText(fmt.Sprintf("already gone: %s", title)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", title)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.GetByTitle(ctx, s.ownerID, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", title)), nil
	}
	bl, err := s.svc.Backlinks(ctx, s.ownerID, n.ID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	titles := make([]string, len(bl))
	for i, b := range bl {
		titles[i] = b.Title
	}
	return mcp.NewToolResultText(strings.Join(titles, "\n")), nil
}

func (s *Server) listLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := models.Kind(req.GetString("kind", ""))
	if kind != "" && !kind.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown kind: %s", kind)), nil
	}
	ns, err := s.svc.ListLatest(ctx, s.ownerID, kind, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, n := range ns {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", n.Title, n.Kind, n.UpdatedAt.Format("2006-01-02 15:04")))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
