package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/formfill"
	"github.com/sagarc03/formfill/config"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the template once",
	Long: `Validate a JSON object of field values and write the filled PDF.

Values are read from --values, or from stdin when --values is "-" or unset.
The PDF is written to --out, or to stdout when --out is "-".

Examples:
  formfill fill --values answers.json --out filled.pdf
  echo '{"name":"Alice"}' | formfill fill --out -  > filled.pdf`,
	Annotations: map[string]string{"stdout": "result"},
	RunE:        runFill,
}

func init() {
	fillCmd.Flags().String("values", "-", "JSON file with field values (- for stdin)")
	fillCmd.Flags().StringP("out", "o", "filled.pdf", "output path (- for stdout)")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	valuesPath, _ := cmd.Flags().GetString("values")
	outPath, _ := cmd.Flags().GetString("out")

	data, err := readInput(cmd.InOrStdin(), valuesPath)
	if err != nil {
		return fmt.Errorf("read values: %w", err)
	}

	values, err := formfill.DecodeFormValues(data)
	if err != nil {
		return err
	}

	service, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	pdf, err := service.Process(ctx, values)
	if err != nil {
		var verr *formfill.ValidationError
		if errors.As(err, &verr) {
			printViolations(cmd.ErrOrStderr(), verr.Violations)
		}
		return err
	}

	if outPath == "-" {
		_, err = cmd.OutOrStdout().Write(pdf)
		return err
	}

	if err := os.WriteFile(filepath.Clean(outPath), pdf, 0o600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", outPath, len(pdf))
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided values file
}

func printViolations(w io.Writer, violations []formfill.Violation) {
	_, _ = fmt.Fprintln(w, "Invalid values found:")
	for _, v := range violations {
		_, _ = fmt.Fprintf(w, "  %s: %q is not one of %q\n", v.Field, v.Value, v.Allowed)
	}
}
