package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/formfill"
	"github.com/sagarc03/formfill/config"
)

var fieldsCmd = &cobra.Command{
	Use:         "fields",
	Short:       "List the template's form fields",
	Long:        `Fetch the configured PDF template and print its named fields with their kind and options.`,
	Annotations: map[string]string{"stdout": "result"},
	RunE:        runFields,
}

func init() {
	fieldsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, _ []string) error {
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

	fields, err := service.Fields(ctx)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(fields)
	}

	formatFields(cmd.OutOrStdout(), fields)
	return nil
}

// formatFields prints fields as an aligned table.
func formatFields(w io.Writer, fields []formfill.Field) {
	if len(fields) == 0 {
		_, _ = fmt.Fprintln(w, "No form fields found")
		return
	}

	maxNameLen := 4 // "NAME"
	for i := range fields {
		if len(fields[i].Name) > maxNameLen {
			maxNameLen = len(fields[i].Name)
		}
	}
	if maxNameLen > 40 {
		maxNameLen = 40
	}

	_, _ = fmt.Fprintf(w, "%-*s  %-12s  %s\n", maxNameLen, "NAME", "KIND", "VALUE / OPTIONS")
	_, _ = fmt.Fprintf(w, "%s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 12), strings.Repeat("-", 15))

	for i := range fields {
		f := &fields[i]
		name := f.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		detail := f.Value
		if f.Kind == formfill.KindChoiceGroup {
			detail = strings.Join(f.Options, " | ")
			if f.Value != "" {
				detail += fmt.Sprintf(" (selected: %s)", f.Value)
			}
		}
		if f.Locked {
			detail += " [locked]"
		}

		_, _ = fmt.Fprintf(w, "%-*s  %-12s  %s\n", maxNameLen, name, f.Kind, detail)
	}

	_, _ = fmt.Fprintf(w, "\n%d field(s)\n", len(fields))
}
