package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/formfill/config"
	"github.com/sagarc03/formfill/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server on stdio",
	Long: `Serve the fill pipeline as Model Context Protocol tools over stdin/stdout.

Tools:
  fill_pdf     validate a JSON object of field values and return the filled PDF
  list_fields  list the template's fields

Logs are written to stderr.`,
	Annotations: map[string]string{"stdout": "result"},
	RunE:        runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := mcp.NewServer("formfill", version, cfg.Template.PDF, service)
	if err != nil {
		return err
	}

	return server.Serve(ctx, os.Stdin, os.Stdout)
}
