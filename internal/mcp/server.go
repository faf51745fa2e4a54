// Package mcp exposes the renderer over the Model Context Protocol.
package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jcdickinson/rsdocmd/internal/config"
	"github.com/jcdickinson/rsdocmd/internal/db"
	"github.com/jcdickinson/rsdocmd/internal/service"
)

//go:embed instructions.md
var instructions string

const uriScheme = "rsdocmd://"

type Server struct {
	mcpServer *server.MCPServer
	svc       *service.Service
	db        *db.DB
}

// NewServer registers the tools and resources backed by svc. database may be
// nil, in which case list_renders reports an empty catalog.
func NewServer(svc *service.Service, database *db.DB, version string) *Server {
	s := &Server{svc: svc, db: database}

	mcpServer := server.NewMCPServer(
		"rsdocmd",
		version,
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("render_crate",
			mcp.WithDescription("Render a crate's rustdoc JSON from docs.rs into a Markdown document. Returns the resolved version, per-section item counts and the resource URI of the document. Version defaults to \"latest\"."),
			mcp.WithString("crate",
				mcp.Description("Crate name (e.g., \"serde\")"),
				mcp.Required(),
			),
			mcp.WithString("version",
				mcp.Description("Version (default: \"latest\")"),
			),
			mcp.WithBoolean("refresh",
				mcp.Description("Download and render again even if cached"),
			),
		),
		s.handleRenderCrate,
	)

	mcpServer.AddTool(
		mcp.NewTool("list_renders",
			mcp.WithDescription("List the crates that have already been rendered."),
		),
		s.handleListRenders,
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			uriScheme+"{crate}/{version}",
			"Rendered crate documentation",
			mcp.WithTemplateDescription("The whole rendered document for a crate. render_crate returns these URIs."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

type renderResponse struct {
	*service.Result
	URI string `json:"uri,omitempty"`
}

func (s *Server) handleRenderCrate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["crate"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: crate"), nil
	}
	version, _ := args["version"].(string)
	refresh, _ := args["refresh"].(bool)

	r, err := s.svc.Render(ctx, service.Request{Name: name, Version: version, Refresh: refresh})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render %s: %v", name, err)), nil
	}

	resultJSON, _ := json.MarshalIndent(renderResponse{Result: r, URI: ResourceURI(r.Name, r.Version)}, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleListRenders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	renders := []db.Render{}
	if s.db != nil {
		var err error
		renders, err = s.db.ListRenders(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing renders: %v", err)), nil
		}
	}
	resultJSON, _ := json.MarshalIndent(renders, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	name, version, err := ParseResourceURI(uri)
	if err != nil {
		return nil, err
	}

	r, err := s.svc.Render(ctx, service.Request{Name: name, Version: version})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType(r.Format),
			Text:     r.Document,
		},
	}, nil
}

// ResourceURI names the rendered document of a crate version.
func ResourceURI(name, version string) string {
	if version == "" {
		version = "latest"
	}
	return uriScheme + name + "/" + version
}

// ParseResourceURI splits rsdocmd://crate/version. A missing version means
// latest; a trailing #fragment is ignored.
func ParseResourceURI(uri string) (name, version string, err error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return "", "", fmt.Errorf("invalid resource URI: %s", uri)
	}
	rest, _, _ = strings.Cut(rest, "#")
	name, version, _ = strings.Cut(strings.Trim(rest, "/"), "/")
	if name == "" || strings.Contains(version, "/") {
		return "", "", fmt.Errorf("invalid resource URI: %s", uri)
	}
	if version == "" {
		version = "latest"
	}
	return name, version, nil
}

func mimeType(f config.Format) string {
	if f == config.FormatHTML {
		return "text/html"
	}
	return "text/markdown"
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}
