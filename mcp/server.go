// Package mcp exposes the fill pipeline as Model Context Protocol tools over
// stdio.
package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sagarc03/formfill"
)

// Service is the part of *formfill.Service the tools call.
type Service interface {
	Process(ctx context.Context, values formfill.FormValues) ([]byte, error)
	Fields(ctx context.Context) ([]formfill.Field, error)
}

// Server represents the MCP server instance
type Server struct {
	service   Service
	template  string
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. template names the filled
// template in returned resource URIs.
func NewServer(name, version, template string, service Service) (*Server, error) {
	if service == nil {
		return nil, errors.New("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		service:   service,
		template:  template,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	fillTool := mcp.NewTool(
		"fill_pdf",
		mcp.WithDescription("Validate field values against the form schema and fill the PDF template. "+
			"Returns the filled PDF as a base64 resource, or the list of invalid fields."),
		mcp.WithString("values",
			mcp.Required(),
			mcp.Description(`JSON object mapping field names to string values, e.g. {"name":"Alice","sex":"M"}`),
		),
	)
	s.mcpServer.AddTool(fillTool, s.handleFillPDF)

	fieldsTool := mcp.NewTool(
		"list_fields",
		mcp.WithDescription("List the fields of the PDF template with their kind and, for choice groups, the options"),
	)
	s.mcpServer.AddTool(fieldsTool, s.handleListFields)
}

// valuesArgument accepts the values either as a JSON string or, from clients
// that send structured arguments, as an object.
func valuesArgument(request mcp.CallToolRequest) (formfill.FormValues, error) {
	raw, ok := request.GetArguments()["values"]
	if !ok {
		return nil, errors.New(`required argument "values" not found`)
	}

	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case map[string]any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode values: %w", err)
		}
		data = encoded
	default:
		return nil, fmt.Errorf(`argument "values" must be a JSON object, got %T`, raw)
	}

	return formfill.DecodeFormValues(data)
}

func (s *Server) handleFillPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	values, err := valuesArgument(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.service.Process(ctx, values)
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	summary := fmt.Sprintf("Filled %s with %d value(s), %d bytes", s.template, countSet(values), len(doc))
	return mcp.NewToolResultResource(summary, mcp.BlobResourceContents{
		URI:      "formfill://filled/" + s.template,
		MIMEType: "application/pdf",
		Blob:     base64.StdEncoding.EncodeToString(doc),
	}), nil
}

func (s *Server) handleListFields(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := s.service.Fields(ctx)
	if err != nil {
		return mcp.NewToolResultError(describeError(err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d field(s) in %s\n", len(fields), s.template)
	for _, f := range fields {
		fmt.Fprintf(&sb, "- %s (%s)", f.Name, f.Kind)
		if len(f.Options) > 0 {
			fmt.Fprintf(&sb, " options: %s", strings.Join(f.Options, ", "))
		}
		if f.Value != "" {
			fmt.Fprintf(&sb, " current: %q", f.Value)
		}
		sb.WriteString("\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func describeError(err error) string {
	var verr *formfill.ValidationError
	if errors.As(err, &verr) {
		var sb strings.Builder
		sb.WriteString("Invalid values found:\n")
		for _, v := range verr.Violations {
			fmt.Fprintf(&sb, "- %s: %q is not one of [%s]\n", v.Field, v.Value, strings.Join(v.Allowed, ", "))
		}
		return sb.String()
	}

	switch formfill.PhaseOf(err) {
	case formfill.PhaseSchema:
		return "Error while downloading validation schema: " + err.Error()
	case formfill.PhaseTemplate:
		return "Error while downloading pdf template: " + err.Error()
	case formfill.PhaseFill:
		return "Error while filling pdf: " + err.Error()
	}
	return err.Error()
}

func countSet(values formfill.FormValues) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}

// Serve runs the server over the given streams until ctx is canceled or in
// is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := server.NewStdioServer(s.mcpServer).Listen(ctx, in, out); err != nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
